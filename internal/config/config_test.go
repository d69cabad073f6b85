package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != ModeStdio {
		t.Errorf("expected stdio mode default, got %s", cfg.Mode)
	}
	if cfg.LLMURL != "" {
		t.Errorf("expected empty LLM URL default, got %s", cfg.LLMURL)
	}
	if cfg.LLMAPI != APIStyleGenerate {
		t.Errorf("expected generate API style default, got %s", cfg.LLMAPI)
	}
	if cfg.MaxTokens != DefaultMaxTokens {
		t.Errorf("expected %d max tokens, got %d", DefaultMaxTokens, cfg.MaxTokens)
	}
	if cfg.BackendURL == "" {
		t.Error("expected a backend URL default")
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("expected %d max file size, got %d", DefaultMaxFileSize, cfg.MaxFileSize)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.OutputDir = t.TempDir()
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"bad mode", func(c *Config) { c.Mode = "daemon" }, true},
		{"bad api style", func(c *Config) { c.LLMAPI = "grpc" }, true},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }, true},
		{"zero max excerpt", func(c *Config) { c.MaxExcerpt = 0 }, true},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, true},
		{"zero max file size", func(c *Config) { c.MaxFileSize = 0 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"process mode without document", func(c *Config) { c.Mode = ModeProcess }, true},
		{"process mode with document", func(c *Config) {
			c.Mode = ModeProcess
			c.Document = "/tmp/doc.pdf"
		}, false},
		{"llm timeout is optional", func(c *Config) { c.LLMTimeout = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HasLLM() {
		t.Error("expected HasLLM false without an LLM URL")
	}
	cfg.LLMURL = "http://127.0.0.1:11434"
	if !cfg.HasLLM() {
		t.Error("expected HasLLM true with an LLM URL")
	}

	if cfg.IsDebug() {
		t.Error("expected IsDebug false at info level")
	}
	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("expected IsDebug true at debug level")
	}

	if !cfg.IsStdioMode() {
		t.Error("expected stdio mode by default")
	}
	cfg.Mode = ModeProcess
	if !cfg.IsProcessMode() {
		t.Error("expected process mode after mutation")
	}
	cfg.Mode = ModeServer
	if !cfg.IsServerMode() {
		t.Error("expected server mode after mutation")
	}
}

func TestConfigTimeoutDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLMTimeout != 15*time.Second {
		t.Errorf("expected 15s LLM timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.BackendTimeout != 30*time.Second {
		t.Errorf("expected 30s backend timeout, got %s", cfg.BackendTimeout)
	}
}
