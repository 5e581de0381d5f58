package agents

import (
	"context"

	"github.com/jonathan/jobhunt-assistant/internal/extraction"
	"github.com/jonathan/jobhunt-assistant/internal/llm"
)

// Validator checks that the resume and optional project materials carry
// every component a job application needs.
type Validator struct {
	stage
}

func NewValidator(client llm.Client, sink extraction.DebugSink) *Validator {
	return &Validator{stage{
		name:   "validation",
		params: ValidationParams,
		client: client,
		sink:   sink,
	}}
}

// Validate reports structural completeness of the inputs. The result
// always carries is_valid plus per-section counts and issue lists.
func (v *Validator) Validate(ctx context.Context, resume, projects string) map[string]any {
	user := userPrompt("validation-user", map[string]string{
		"Resume":   resume,
		"Projects": orPlaceholder(projects),
	})
	return v.invoke(ctx, systemPrompt("validation-system"), user, validationDefaults())
}
