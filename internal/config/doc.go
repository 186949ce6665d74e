// Package config provides configuration structures and utilities for pagemd.
// It defines the main options for document conversion: completion backend
// selection, scheduling mode, concurrency, and report generation preferences.
package config
