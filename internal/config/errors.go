package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSource is returned when no document reference is specified.
	ErrNoSource = errors.New("no source specified: provide a document path or URL")

	// ErrNoAPIKey is returned when no completion endpoint credential is
	// available from flags, the environment, or a .env file.
	ErrNoAPIKey = errors.New("no API key configured: set --api-key or the PAGEMD_API_KEY environment variable")

	// ErrInvalidConcurrency is returned when the concurrency limit is not
	// positive. A limit of zero would mean no pages are ever dispatched, so we
	// fail fast instead of silently clamping.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when the run timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidQuality is returned when the JPEG quality is outside 1-100.
	ErrInvalidQuality = errors.New("invalid image quality: must be between 1 and 100")

	// ErrUnknownProvider is returned when the provider name is not one of
	// the supported completion backends.
	ErrUnknownProvider = errors.New("unknown provider: must be \"openai\" or \"gemini\"")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one report format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
