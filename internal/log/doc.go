// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (API keys, tokens, secrets)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, X-Api-Key)
//   - Provider API keys detected by pattern matching
//   - Bearer tokens, JWTs, and session identifiers
//
// Transcription runs authenticate against hosted model providers, so request
// logging is one typo away from leaking an account credential. Even in
// verbose mode, sensitive values are masked to prevent accidental exposure
// of secrets in logs that may be shared or stored.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("request sent",
//	    "api_key", "sk-abc123",  // Will be sanitized to "***REDACTED***"
//	    "url", "https://api.openai.com/v1/chat/completions",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
