package config

// ProfileConfig holds a provider preset loaded from the .pagemd profile file.
// Profiles let users switch between completion backends (e.g., OpenAI,
// OpenRouter, Gemini) without retyping flags.
type ProfileConfig struct {
	// Provider is the completion backend for this profile.
	Provider string `yaml:"provider,omitempty"`

	// Model overrides the completion model identifier.
	Model string `yaml:"model,omitempty"`

	// BaseURL overrides the chat-completions endpoint (openai provider only).
	BaseURL string `yaml:"baseURL,omitempty"`

	// Concurrency overrides the independent-mode concurrency limit.
	// If zero, the global default is used.
	Concurrency int `yaml:"concurrency,omitempty"`

	// MaintainFormat enables format-maintenance mode for this profile.
	MaintainFormat bool `yaml:"maintainFormat,omitempty"`
}

// File represents the structure of the .pagemd profile file.
type File struct {
	// Profiles maps profile names to provider presets, selected with
	// the --profile flag.
	Profiles map[string]ProfileConfig `yaml:"profiles,omitempty"`

	// Defaults contains the preset applied to every run unless overridden
	// by a named profile or an explicit flag.
	Defaults ProfileConfig `yaml:"defaults,omitempty"`
}

// GetProfile returns the preset for the named profile merged over the file's
// defaults. An unknown name returns just the defaults.
func (cf *File) GetProfile(name string) ProfileConfig {
	result := cf.Defaults

	if p, ok := cf.Profiles[name]; ok {
		if p.Provider != "" {
			result.Provider = p.Provider
		}
		if p.Model != "" {
			result.Model = p.Model
		}
		if p.BaseURL != "" {
			result.BaseURL = p.BaseURL
		}
		if p.Concurrency != 0 {
			result.Concurrency = p.Concurrency
		}
		if p.MaintainFormat {
			result.MaintainFormat = true
		}
	}

	return result
}

// Apply copies the profile's non-zero fields onto the config.
// Explicit CLI flags are applied after profiles, so flags always win.
func (c *Config) Apply(p ProfileConfig) {
	if p.Provider != "" {
		c.Provider = p.Provider
	}
	if p.Model != "" {
		c.Model = p.Model
	}
	if p.BaseURL != "" {
		c.BaseURL = p.BaseURL
	}
	if p.Concurrency != 0 {
		c.Concurrency = p.Concurrency
	}
	if p.MaintainFormat {
		c.MaintainFormat = true
	}
}
