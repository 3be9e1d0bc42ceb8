package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ReadTimeout != 60*time.Second {
		t.Errorf("Expected default read timeout to be 60s, got %s", cfg.ReadTimeout)
	}

	if cfg.TextTimeout != 0 {
		t.Errorf("Expected text timeout to be disabled by default, got %s", cfg.TextTimeout)
	}

	if cfg.FetchTimeout != 60*time.Second {
		t.Errorf("Expected default fetch timeout to be 60s, got %s", cfg.FetchTimeout)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("Expected default log level to be 'warn', got '%s'", cfg.LogLevel)
	}

	if cfg.Version != "1.0.0" {
		t.Errorf("Expected default version to be '1.0.0', got '%s'", cfg.Version)
	}

	if cfg.DegradeOnTimeout {
		t.Error("Expected degradation to be off by default")
	}

	if cfg.StrictValidation {
		t.Error("Expected relaxed validation by default")
	}
}

func TestConfigValidate(t *testing.T) {
	withURI := func(mutate func(*Config)) *Config {
		cfg := DefaultConfig()
		cfg.URI = "paper.pdf"
		if mutate != nil {
			mutate(cfg)
		}
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  withURI(nil),
			wantErr: false,
		},
		{
			name:    "missing URI",
			config:  DefaultConfig(),
			wantErr: true,
		},
		{
			name: "download without output dir",
			config: withURI(func(c *Config) {
				c.DownloadPDFs = true
			}),
			wantErr: true,
		},
		{
			name: "download with output dir",
			config: withURI(func(c *Config) {
				c.DownloadPDFs = true
				c.OutputDir = "/tmp/out"
			}),
			wantErr: false,
		},
		{
			name: "invalid log level",
			config: withURI(func(c *Config) {
				c.LogLevel = "verbose"
			}),
			wantErr: true,
		},
		{
			name: "log level off",
			config: withURI(func(c *Config) {
				c.LogLevel = "off"
			}),
			wantErr: false,
		},
		{
			name: "empty log level",
			config: withURI(func(c *Config) {
				c.LogLevel = ""
			}),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigIsDebug(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.IsDebug() {
		t.Error("Expected IsDebug() to be false for default config")
	}

	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("Expected IsDebug() to be true when log level is debug")
	}
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URI = "paper.pdf"

	s := cfg.String()
	if s == "" {
		t.Error("Expected String() to return a non-empty representation")
	}
}
