package agents

import (
	"context"

	"github.com/jonathan/jobhunt-assistant/internal/extraction"
	"github.com/jonathan/jobhunt-assistant/internal/llm"
)

// Optimizer proposes the concrete resume edits: experience replacements
// drawn from the packaged projects, per-bullet adjustments, kept-entry
// rewrites, and a skills section update. Its documented contract says
// the replacement count equals the packaged project count; the model may
// not honor that, so the workflow validates it rather than assuming.
type Optimizer struct {
	stage
}

func NewOptimizer(client llm.Client, sink extraction.DebugSink) *Optimizer {
	return &Optimizer{stage{
		name:   "optimization",
		params: OptimizationParams,
		client: client,
		sink:   sink,
	}}
}

func (o *Optimizer) Optimize(ctx context.Context, jd, resume string, analysis, packaged map[string]any) map[string]any {
	user := userPrompt("optimization-user", map[string]string{
		"JobDescription": jd,
		"Resume":         resume,
		"Analysis":       renderJSON(analysis),
		"Packaged":       renderJSON(packaged),
	})
	return o.invoke(ctx, systemPrompt("optimization-system"), user, optimizationDefaults())
}
