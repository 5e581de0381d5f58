package agents

import (
	"context"

	"github.com/jonathan/jobhunt-assistant/internal/extraction"
	"github.com/jonathan/jobhunt-assistant/internal/llm"
)

// Analyzer scores the candidate against the job description and derives
// the ideal candidate profile the later stages optimize toward.
type Analyzer struct {
	stage
}

func NewAnalyzer(client llm.Client, sink extraction.DebugSink) *Analyzer {
	return &Analyzer{stage{
		name:   "analysis",
		params: AnalysisParams,
		client: client,
		sink:   sink,
	}}
}

// Analyze returns the match assessment. overall_match_score is a 0.0-5.0
// weighted average over industry, experience, and skills dimensions.
func (a *Analyzer) Analyze(ctx context.Context, jd, resume, projects string) map[string]any {
	user := userPrompt("analysis-user", map[string]string{
		"JobDescription": jd,
		"Resume":         resume,
		"Projects":       orPlaceholder(projects),
	})
	return a.invoke(ctx, systemPrompt("analysis-system"), user, analysisDefaults())
}
