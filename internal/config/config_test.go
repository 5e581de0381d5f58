package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range apiKeyEnvNames {
		t.Setenv(name, "")
	}
	t.Setenv("PORTAL_BASE_URL", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "portal", cfg.Provider)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_APIKeyFallbackChain(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "fallback-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fallback-key", cfg.APIKey)

	// A higher-priority name wins.
	t.Setenv("PORTAL_API_KEY", "primary-key")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "primary-key", cfg.APIKey)
}

func TestLoad_InvalidPort(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_MissingCredentialIsFatal(t *testing.T) {
	cfg := &Config{Provider: "portal", Port: 8080}
	assert.Error(t, cfg.Validate())

	cfg.APIKey = "key"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_GeminiProvider(t *testing.T) {
	cfg := &Config{Provider: "gemini", Port: 8080}
	assert.Error(t, cfg.Validate())

	cfg.GeminiKey = "gk"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := &Config{Provider: "mystery", APIKey: "key", Port: 8080}
	assert.Error(t, cfg.Validate())
}
