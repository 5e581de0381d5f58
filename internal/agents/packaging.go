package agents

import (
	"context"

	"github.com/jonathan/jobhunt-assistant/internal/extraction"
	"github.com/jonathan/jobhunt-assistant/internal/llm"
)

// Packager selects and reframes project materials against the analysis
// stage's ideal candidate profile. At most five projects come back
// selected; the rest are listed as skipped with a reason.
type Packager struct {
	stage
}

func NewPackager(client llm.Client, sink extraction.DebugSink) *Packager {
	return &Packager{stage{
		name:   "packaging",
		params: PackagingParams,
		client: client,
		sink:   sink,
	}}
}

func (p *Packager) Package(ctx context.Context, jd string, analysis map[string]any, projects string) map[string]any {
	user := userPrompt("packaging-user", map[string]string{
		"JobDescription": jd,
		"Analysis":       renderJSON(analysis),
		"Projects":       orPlaceholder(projects),
	})
	return p.invoke(ctx, systemPrompt("packaging-system"), user, packagingDefaults())
}
