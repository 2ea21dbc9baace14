package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadMissingFileUsesDefaults checks first-run behavior with env secrets.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvTelegramToken, "test-token")
	t.Setenv(EnvSummaryAPIKey, "test-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Telegram.Token)
	assert.Equal(t, "test-key", cfg.Summary.APIKey)
	assert.Equal(t, "meta-llama/Llama-3.3-70B-Instruct", cfg.Summary.Model)
	assert.Equal(t, 512, cfg.Summary.MaxTokens)
	assert.InDelta(t, 0.1, cfg.Summary.Temperature, 1e-9)
	assert.InDelta(t, 0.9, cfg.Summary.TopP, 1e-9)
}

// TestLoadMergesFileOverDefaults checks YAML values replace defaults.
func TestLoadMergesFileOverDefaults(t *testing.T) {
	t.Setenv(EnvTelegramToken, "test-token")
	t.Setenv(EnvSummaryAPIKey, "test-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
whisper:
  binary_path: /opt/whisper/main
  model_path: /opt/whisper/ggml-small.bin
  language: ru
  threads: 8
summary:
  timeout: 15
ops:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/whisper/main", cfg.Whisper.BinaryPath)
	assert.Equal(t, "ru", cfg.Whisper.Language)
	assert.Equal(t, 8, cfg.Whisper.Threads)
	assert.Equal(t, 15, cfg.Summary.Timeout)
	assert.False(t, cfg.Ops.Enabled)
	// Untouched sections keep defaults.
	assert.Equal(t, "https://api.hyperbolic.xyz/v1/chat/completions", cfg.Summary.Endpoint)
	assert.Equal(t, 30, cfg.Telegram.PollTimeout)
}

// TestLoadEnvOverridesFileSecrets checks environment always wins.
func TestLoadEnvOverridesFileSecrets(t *testing.T) {
	t.Setenv(EnvTelegramToken, "env-token")
	t.Setenv(EnvSummaryAPIKey, "env-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
telegram:
  token: file-token
summary:
  api_key: file-key
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "env-key", cfg.Summary.APIKey)
}

// TestLoadMissingCredentialsFails checks validation of required secrets.
func TestLoadMissingCredentialsFails(t *testing.T) {
	t.Setenv(EnvTelegramToken, "")
	t.Setenv(EnvSummaryAPIKey, "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTelegramToken)
}

// TestLoadInvalidYAMLFails checks parse error handling.
func TestLoadInvalidYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not-yaml"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

// TestValidateRejectsBadValues covers per-section bounds.
func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"poll timeout too large", func(c *Config) { c.Telegram.PollTimeout = 120 }},
		{"zero whisper threads", func(c *Config) { c.Whisper.Threads = 0 }},
		{"negative max tokens", func(c *Config) { c.Summary.MaxTokens = -1 }},
		{"top_p above one", func(c *Config) { c.Summary.TopP = 1.5 }},
		{"zero summary timeout", func(c *Config) { c.Summary.Timeout = 0 }},
		{"empty temp dir", func(c *Config) { c.Pipeline.TempDir = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"ops enabled without address", func(c *Config) { c.Ops.Address = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Telegram.Token = "t"
			cfg.Summary.APIKey = "k"
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
