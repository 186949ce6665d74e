package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the defaults of comparable document transcription
// tooling where applicable.
const (
	// DefaultProvider selects the OpenAI-compatible chat-completions backend.
	// It covers OpenAI itself plus gateways such as OpenRouter that speak the
	// same wire format; Gemini users switch with --provider gemini.
	DefaultProvider = "openai"

	// DefaultModel is the completion model requested when none is configured.
	// gpt-4o-mini balances transcription quality against per-page cost for
	// typical documents.
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the chat-completions endpoint for the openai provider.
	// Override this to point at OpenRouter or a self-hosted gateway.
	DefaultBaseURL = "https://api.openai.com/v1/chat/completions"

	// DefaultConcurrency of 10 concurrent page transcriptions balances
	// throughput with endpoint rate limits. Format-maintenance mode ignores
	// this and always processes serially.
	DefaultConcurrency = 10

	// DefaultTimeout bounds the whole run. Vision completions routinely take
	// tens of seconds per page, so the ceiling is generous; on expiry the run
	// returns the pages completed so far rather than hanging.
	DefaultTimeout = 10 * time.Minute

	// DefaultImageQuality is the JPEG quality used when rasterizing pages.
	// 90 keeps text crisp for the vision model without oversized uploads.
	DefaultImageQuality = 90

	// AppName is the application name used for XDG directory paths.
	AppName = "pagemd"

	// ProviderOpenAI names the OpenAI-compatible HTTP backend.
	ProviderOpenAI = "openai"

	// ProviderGemini names the Gemini backend (google.golang.org/genai).
	ProviderGemini = "gemini"
)

// Config holds all configuration options for pagemd.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CompletionConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Source is the document to convert: a local file path or an http(s) URL.
	Source string

	// OutputDir is the directory the aggregated Markdown document is written
	// to. When empty, the document is not persisted and the run result is
	// only reported.
	OutputDir string

	// Provider selects the completion backend: ProviderOpenAI or
	// ProviderGemini.
	Provider string

	// Model is the completion model identifier passed to the backend.
	Model string

	// BaseURL is the chat-completions endpoint for the openai provider.
	// Ignored by the gemini provider.
	BaseURL string

	// APIKey is the credential for the completion endpoint.
	// Populated from flags or the environment; never logged.
	APIKey string

	// Concurrency is the maximum number of pages transcribed in parallel in
	// independent mode. Must be positive; format-maintenance mode ignores it.
	Concurrency int

	// MaintainFormat enables format-maintenance mode: each page's
	// transcription receives the previous page's output as context, which
	// forces strictly serial processing.
	MaintainFormat bool

	// Timeout is the wall-clock ceiling for the whole run. On expiry no new
	// pages are dispatched and the partial result is returned.
	Timeout time.Duration

	// ImageQuality is the JPEG quality (1-100) for page rasterization.
	ImageQuality int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON run-report output instead of the human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown run-report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the run report.
	// When set, the report is written there instead of stdout.
	ReportFile string

	// HistoryDir is the directory holding the SQLite run-history database.
	// Defaults to the XDG data directory.
	HistoryDir string

	// SaveHistory indicates whether completed runs are recorded in the
	// history database.
	SaveHistory bool

	// ConfigFilePath is the path to the profile file. If empty, the tool
	// searches for .pagemd in the current directory and then in the user's
	// home directory.
	ConfigFilePath string

	// Profile is the name of the provider profile to apply from the profile
	// file. Empty means use only the file's defaults.
	Profile string

	// Profiles holds provider presets loaded from the profile file.
	Profiles *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., concurrency, timeout).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Provider:     DefaultProvider,
		Model:        DefaultModel,
		BaseURL:      DefaultBaseURL,
		Concurrency:  DefaultConcurrency,
		Timeout:      DefaultTimeout,
		ImageQuality: DefaultImageQuality,
	}
}

// XDGDataDir returns the XDG data directory for pagemd.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/pagemd
// On macOS: ~/Library/Application Support/pagemd
// On Windows: %LOCALAPPDATA%\pagemd
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pagemd.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any page processing begins:
// configuration errors never start a run.
func (c *Config) Validate() error {
	if c.Source == "" {
		return ErrNoSource
	}

	if c.APIKey == "" {
		return ErrNoAPIKey
	}

	// A non-positive limit would mean no pages are ever dispatched.
	// We reject it here instead of clamping so the user's mistake is visible.
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.ImageQuality < 1 || c.ImageQuality > 100 {
		return ErrInvalidQuality
	}

	if c.Provider != ProviderOpenAI && c.Provider != ProviderGemini {
		return ErrUnknownProvider
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
