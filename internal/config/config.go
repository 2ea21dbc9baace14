// Package config loads service configuration from an optional YAML
// file merged over built-in defaults, with credentials taken from the
// environment so no secret ever lives in the repository.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables holding secrets. They always win over file values.
const (
	EnvTelegramToken = "TELEGRAM_BOT_TOKEN"
	EnvSummaryAPIKey = "SUMMARY_API_KEY"
)

// Config is the complete service configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Whisper  WhisperConfig  `yaml:"whisper"`
	Summary  SummaryConfig  `yaml:"summary"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Ops      OpsConfig      `yaml:"ops"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TelegramConfig configures the Bot API transport.
type TelegramConfig struct {
	// Token is resolved from TELEGRAM_BOT_TOKEN; a file value is
	// accepted for local development only.
	Token       string `yaml:"token"`
	APIBase     string `yaml:"api_base"`
	PollTimeout int    `yaml:"poll_timeout"` // seconds
}

// WhisperConfig configures the local speech-to-text engine.
type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	Threads    int    `yaml:"threads"`
}

// SummaryConfig configures the external text-generation API.
type SummaryConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	Timeout     int     `yaml:"timeout"` // seconds
	Prompt      string  `yaml:"prompt"`
}

// PipelineConfig configures job execution.
type PipelineConfig struct {
	TempDir           string `yaml:"temp_dir"`
	MaxTranscriptions int    `yaml:"max_transcriptions"`
}

// OpsConfig configures the operational HTTP endpoint.
type OpsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the baseline configuration used when no file exists.
func Default() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Telegram: TelegramConfig{
			APIBase:     "https://api.telegram.org",
			PollTimeout: 30,
		},
		Whisper: WhisperConfig{
			BinaryPath: "whisper.cpp",
			ModelPath:  filepath.Join(homeDir, ".konspektbot", "models"),
			Language:   "auto",
			Threads:    4,
		},
		Summary: SummaryConfig{
			Endpoint:    "https://api.hyperbolic.xyz/v1/chat/completions",
			Model:       "meta-llama/Llama-3.3-70B-Instruct",
			MaxTokens:   512,
			Temperature: 0.1,
			TopP:        0.9,
			Timeout:     60,
			Prompt:      "Create a concise, structured summary of the following text: ",
		},
		Pipeline: PipelineConfig{
			TempDir:           os.TempDir(),
			MaxTranscriptions: 2,
		},
		Ops: OpsConfig{
			Enabled: true,
			Address: "127.0.0.1:8090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration file, merges it over defaults, applies
// environment secrets, and validates the result. A missing file is not
// an error; the defaults plus environment are used as-is.
func Load(path string) (*Config, error) {
	cfg, err := LoadUnvalidated(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadUnvalidated loads configuration without validating it, so
// diagnostics can report on an incomplete setup instead of refusing to
// run.
func LoadUnvalidated(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides secret fields from the process environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvTelegramToken); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv(EnvSummaryAPIKey); v != "" {
		c.Summary.APIKey = v
	}
}

// Validate checks every section and reports the first violation.
func (c *Config) Validate() error {
	if err := c.Telegram.Validate(); err != nil {
		return fmt.Errorf("telegram config: %w", err)
	}
	if err := c.Whisper.Validate(); err != nil {
		return fmt.Errorf("whisper config: %w", err)
	}
	if err := c.Summary.Validate(); err != nil {
		return fmt.Errorf("summary config: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}
	if err := c.Ops.Validate(); err != nil {
		return fmt.Errorf("ops config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates transport configuration.
func (t *TelegramConfig) Validate() error {
	if t.Token == "" {
		return fmt.Errorf("token is required; set %s", EnvTelegramToken)
	}
	if t.APIBase == "" {
		return fmt.Errorf("api_base cannot be empty")
	}
	if t.PollTimeout < 1 || t.PollTimeout > 60 {
		return fmt.Errorf("poll_timeout must be between 1 and 60 seconds, got %d", t.PollTimeout)
	}
	return nil
}

// Validate validates speech-to-text configuration.
func (w *WhisperConfig) Validate() error {
	if w.BinaryPath == "" {
		return fmt.Errorf("binary_path cannot be empty")
	}
	if w.ModelPath == "" {
		return fmt.Errorf("model_path cannot be empty")
	}
	if w.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", w.Threads)
	}
	return nil
}

// Validate validates summarization API configuration.
func (s *SummaryConfig) Validate() error {
	if s.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	if s.APIKey == "" {
		return fmt.Errorf("api_key is required; set %s", EnvSummaryAPIKey)
	}
	if s.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if s.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive, got %d", s.MaxTokens)
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", s.Temperature)
	}
	if s.TopP <= 0 || s.TopP > 1 {
		return fmt.Errorf("top_p must be in (0, 1], got %g", s.TopP)
	}
	if s.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", s.Timeout)
	}
	return nil
}

// Validate validates pipeline configuration.
func (p *PipelineConfig) Validate() error {
	if p.TempDir == "" {
		return fmt.Errorf("temp_dir cannot be empty")
	}
	if p.MaxTranscriptions < 1 {
		return fmt.Errorf("max_transcriptions must be at least 1, got %d", p.MaxTranscriptions)
	}
	return nil
}

// Validate validates the ops endpoint configuration.
func (o *OpsConfig) Validate() error {
	if o.Enabled && o.Address == "" {
		return fmt.Errorf("address cannot be empty when ops endpoint is enabled")
	}
	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be 'text' or 'json', got %q", l.Format)
	}
	return nil
}

// PollTimeoutDuration returns the long-poll timeout as a time.Duration.
func (t *TelegramConfig) PollTimeoutDuration() time.Duration {
	return time.Duration(t.PollTimeout) * time.Second
}

// TimeoutDuration returns the summarization timeout as a time.Duration.
func (s *SummaryConfig) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}
