// Package llm provides clients for chat-completion style LLM
// endpoints. The primary provider speaks the OpenAI-compatible
// /v1/chat/completions protocol; a Gemini provider is available behind
// the same interface.
package llm

import (
	"context"
	"time"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes a single completion call. Temperature, token
// budget, and timeout differ per pipeline stage: validation wants
// determinism and a short budget, generative analysis wants length
// and latitude.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // zero means the provider default
}

// Client is an abstraction over LLM providers.
type Client interface {
	// ChatCompletion sends a request and returns the raw text of the
	// first completion choice. The text carries no JSON guarantee.
	ChatCompletion(ctx context.Context, req Request) (string, error)
	// Close releases any resources held by the client.
	Close() error
}
