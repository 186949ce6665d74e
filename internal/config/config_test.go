package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validConfig returns a config that passes validation, for mutation in tests.
func validConfig() *Config {
	cfg := NewConfig()
	cfg.Source = "report.pdf"
	cfg.APIKey = "test-key"
	return cfg
}

// TestNewConfig tests that defaults are populated.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, cfg.Model)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, cfg.Concurrency)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.ImageQuality != DefaultImageQuality {
		t.Errorf("expected default quality %d, got %d", DefaultImageQuality, cfg.ImageQuality)
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config",
			modify:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "missing source",
			modify:  func(c *Config) { c.Source = "" },
			wantErr: ErrNoSource,
		},
		{
			name:    "missing api key",
			modify:  func(c *Config) { c.APIKey = "" },
			wantErr: ErrNoAPIKey,
		},
		{
			name:    "zero concurrency",
			modify:  func(c *Config) { c.Concurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "negative concurrency",
			modify:  func(c *Config) { c.Concurrency = -3 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "quality too low",
			modify:  func(c *Config) { c.ImageQuality = 0 },
			wantErr: ErrInvalidQuality,
		},
		{
			name:    "quality too high",
			modify:  func(c *Config) { c.ImageQuality = 101 },
			wantErr: ErrInvalidQuality,
		},
		{
			name:    "unknown provider",
			modify:  func(c *Config) { c.Provider = "anthropic" },
			wantErr: ErrUnknownProvider,
		},
		{
			name:    "gemini provider is valid",
			modify:  func(c *Config) { c.Provider = ProviderGemini },
			wantErr: nil,
		},
		{
			name: "conflicting report formats",
			modify: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestProfileMerge tests profile resolution and application.
func TestProfileMerge(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: ProfileConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			Concurrency: 4,
		},
		Profiles: map[string]ProfileConfig{
			"gemini": {
				Provider: ProviderGemini,
				Model:    "gemini-2.5-flash",
			},
			"serial": {
				MaintainFormat: true,
			},
		},
	}

	t.Run("named profile overrides defaults", func(t *testing.T) {
		t.Parallel()

		p := cf.GetProfile("gemini")
		if p.Provider != ProviderGemini {
			t.Errorf("expected gemini provider, got %q", p.Provider)
		}
		if p.Model != "gemini-2.5-flash" {
			t.Errorf("expected gemini model, got %q", p.Model)
		}
		// Concurrency inherited from defaults
		if p.Concurrency != 4 {
			t.Errorf("expected inherited concurrency 4, got %d", p.Concurrency)
		}
	})

	t.Run("unknown profile falls back to defaults", func(t *testing.T) {
		t.Parallel()

		p := cf.GetProfile("nonexistent")
		if p.Provider != ProviderOpenAI || p.Model != "gpt-4o-mini" {
			t.Errorf("expected defaults, got %+v", p)
		}
	})

	t.Run("apply copies non-zero fields", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Apply(cf.GetProfile("serial"))

		if !cfg.MaintainFormat {
			t.Error("expected maintain-format from profile")
		}
		// Zero-valued profile fields must not clobber existing settings
		if cfg.Model != DefaultModel {
			t.Errorf("expected model to stay %q, got %q", DefaultModel, cfg.Model)
		}
	})
}

// TestLoadConfigFile tests YAML profile file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads valid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `defaults:
  provider: openai
  model: gpt-4o-mini
profiles:
  router:
    baseURL: https://openrouter.ai/api/v1/chat/completions
    model: google/gemini-2.5-flash
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Defaults.Model != "gpt-4o-mini" {
			t.Errorf("unexpected default model: %q", cf.Defaults.Model)
		}
		if cf.Profiles["router"].BaseURL == "" {
			t.Error("expected router profile baseURL")
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("profiles: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}
