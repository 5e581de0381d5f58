// Package agents implements the five pipeline stage clients. Each stage
// renders its prompt pair, calls the LLM endpoint, and recovers a
// structured result from whatever text comes back. Stage invocations
// never return an error: every failure mode is absorbed into a fallback
// result carrying an "error" field and the stage's default structure, so
// the pipeline degrades instead of halting.
package agents

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonathan/jobhunt-assistant/internal/extraction"
	"github.com/jonathan/jobhunt-assistant/internal/llm"
	"github.com/jonathan/jobhunt-assistant/internal/prompts"
)

const promptFile = "agents.json"

// Params are the per-stage request knobs. Validation wants determinism
// and a short budget; the generative stages want length and latitude.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

var (
	ValidationParams   = Params{Model: "gpt-4o-mini", Temperature: 0.1, MaxTokens: 2000, Timeout: 60 * time.Second}
	AnalysisParams     = Params{Model: "supermind-agent-v1", Temperature: 0.3, MaxTokens: 6000, Timeout: 180 * time.Second}
	PackagingParams    = Params{Model: "supermind-agent-v1", Temperature: 0.3, MaxTokens: 6000, Timeout: 180 * time.Second}
	OptimizationParams = Params{Model: "supermind-agent-v1", Temperature: 0.3, MaxTokens: 4000, Timeout: 120 * time.Second}
	InterviewParams    = Params{Model: "supermind-agent-v1", Temperature: 0.3, MaxTokens: 6000, Timeout: 180 * time.Second}
)

// stage holds what every stage client shares: the transport, the raw
// response sink, and the request parameters.
type stage struct {
	name   string
	params Params
	client llm.Client
	sink   extraction.DebugSink
}

// invoke runs one completion round trip and always returns a defaulted
// result. Transport and upstream errors, as well as unrecoverable
// response text, all collapse into fallback(defaults, err).
func (s *stage) invoke(ctx context.Context, system, user string, defaults map[string]any) map[string]any {
	content, err := s.client.ChatCompletion(ctx, llm.Request{
		Model: s.params.Model,
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: s.params.Temperature,
		MaxTokens:   s.params.MaxTokens,
		Timeout:     s.params.Timeout,
	})
	if err != nil {
		return fallback(defaults, err)
	}

	record, err := extraction.ExtractWithDebug(content, s.sink)
	if err != nil {
		return fallback(defaults, err)
	}

	return extraction.ApplyDefaults(record, defaults)
}

// fallback is the stage result for a failed invocation: the stage's
// default structure plus an error string downstream code can surface.
func fallback(defaults map[string]any, err error) map[string]any {
	return extraction.ApplyDefaults(map[string]any{"error": err.Error()}, defaults)
}

// renderJSON serializes an upstream stage result for embedding in the
// next stage's user message.
func renderJSON(v map[string]any) string {
	if len(v) == 0 {
		return "{}"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// orPlaceholder substitutes a readable marker for absent optional input.
func orPlaceholder(text string) string {
	if text == "" {
		return "No project materials provided"
	}
	return text
}

func userPrompt(key string, data map[string]string) string {
	return prompts.Format(prompts.MustGet(promptFile, key), data)
}

func systemPrompt(key string) string {
	return prompts.MustGet(promptFile, key)
}
