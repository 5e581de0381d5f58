package agents

import (
	"context"
	"errors"
	"regexp"

	"github.com/jonathan/jobhunt-assistant/internal/extraction"
	"github.com/jonathan/jobhunt-assistant/internal/llm"
)

// jsonObjectRe detects whether a response carries any JSON object at
// all. The interview stage has a known failure mode of answering in
// pure prose; in that case extraction is pointless and the stage falls
// straight back to its default structure.
var jsonObjectRe = regexp.MustCompile(`(?s)\{[^{}]*\}`)

// InterviewPrep generates the interview preparation package from the
// finalized resume and the adopted project classification.
type InterviewPrep struct {
	stage
}

func NewInterviewPrep(client llm.Client, sink extraction.DebugSink) *InterviewPrep {
	return &InterviewPrep{stage{
		name:   "interview",
		params: InterviewParams,
		client: client,
		sink:   sink,
	}}
}

func (p *InterviewPrep) Prepare(ctx context.Context, jd, finalResume string, analysis, classified map[string]any) map[string]any {
	user := userPrompt("interview-user", map[string]string{
		"JobDescription":     jd,
		"Resume":             finalResume,
		"Analysis":           renderJSON(analysis),
		"ClassifiedProjects": renderJSON(classified),
	})

	content, err := p.client.ChatCompletion(ctx, llm.Request{
		Model: p.params.Model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt("interview-system")},
			{Role: "user", Content: user},
		},
		Temperature: p.params.Temperature,
		MaxTokens:   p.params.MaxTokens,
		Timeout:     p.params.Timeout,
	})
	if err != nil {
		return fallback(interviewDefaults(), err)
	}

	if !jsonObjectRe.MatchString(content) {
		return fallback(interviewDefaults(), errors.New("response contains no JSON object"))
	}

	record, err := extraction.ExtractWithDebug(content, p.sink)
	if err != nil {
		return fallback(interviewDefaults(), err)
	}
	return extraction.ApplyDefaults(record, interviewDefaults())
}
