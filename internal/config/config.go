// Package config provides environment-based configuration for the
// job-hunt assistant.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default endpoint for the portal provider.
const defaultBaseURL = "https://space.ai-builders.com/backend"

// apiKeyEnvNames are the environment variables consulted, in order,
// for the portal credential. Several deployments name it differently.
var apiKeyEnvNames = []string{
	"PORTAL_API_KEY",
	"AI_BUILDER_TOKEN",
	"AI_BUILDER_API_TOKEN",
	"SUPER_MIND_API_KEY",
	"OPENAI_API_KEY",
}

// Config holds process-wide settings. The credential is resolved once
// at startup and treated as read-only afterwards.
type Config struct {
	BaseURL     string // chat-completions endpoint base
	APIKey      string
	Provider    string // "portal" (default) or "gemini"
	GeminiKey   string
	DatabaseURL string // optional Postgres persistence
	DebugDir    string // optional directory for raw model response captures
	Port        int    // HTTP API port
}

// Load reads configuration from the environment, honoring a .env file
// in the working directory when present.
func Load() (*Config, error) {
	// A missing .env file is not an error; explicit environment wins.
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:     envOr("PORTAL_BASE_URL", defaultBaseURL),
		APIKey:      firstEnv(apiKeyEnvNames),
		Provider:    envOr("LLM_PROVIDER", "portal"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DebugDir:    os.Getenv("DEBUG_RESPONSE_DIR"),
		Port:        8080,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// Validate checks that the configuration can drive the pipeline. A
// missing credential is a fatal configuration error, surfaced before
// any network call is attempted.
func (c *Config) Validate() error {
	switch c.Provider {
	case "portal", "":
		if c.APIKey == "" {
			return fmt.Errorf("API key not set: export one of %v", apiKeyEnvNames)
		}
	case "gemini":
		if c.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY not set")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	return nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func firstEnv(names []string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
