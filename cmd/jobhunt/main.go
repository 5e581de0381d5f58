// Package main provides the entry point for the job hunting assistant.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobhunt-assistant/internal/config"
	"github.com/jonathan/jobhunt-assistant/internal/extraction"
	"github.com/jonathan/jobhunt-assistant/internal/llm"
	"github.com/jonathan/jobhunt-assistant/internal/workflow"
)

var rootCmd = &cobra.Command{
	Use:   "jobhunt",
	Short: "Job hunting assistant",
	Long:  "Tailors a resume to a job description through a five-stage LLM pipeline, collects feedback on the proposed edits, and produces a final resume plus interview preparation material.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildAgents constructs the five stage clients from configuration.
// The returned closer releases the underlying provider connection.
func buildAgents(cfg *config.Config) (workflow.Agents, func(), error) {
	var client llm.Client
	var err error

	switch cfg.Provider {
	case "gemini":
		client, err = llm.NewGeminiClient(context.Background(), cfg.GeminiKey)
	default:
		client, err = llm.NewPortalClient(cfg.BaseURL, cfg.APIKey)
	}
	if err != nil {
		return workflow.Agents{}, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	sink := debugSink(cfg.DebugDir)
	ag := workflow.NewAgents(client, sink)

	return ag, func() { _ = client.Close() }, nil
}

// debugSink returns a sink that captures raw model responses into the
// configured directory, or nil when capture is disabled.
func debugSink(dir string) extraction.DebugSink {
	if dir == "" {
		return nil
	}
	return func(content string) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return
		}
		name := fmt.Sprintf("response_%d.txt", time.Now().UnixNano())
		_ = os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
	}
}
