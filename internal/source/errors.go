package source

import "errors"

// Sentinel errors for source setup failures.
// Both are fatal to a run: they occur before any page processing starts.
var (
	// ErrSourceUnavailable is returned when the document cannot be read or
	// downloaded (missing file, unreachable URL, non-2xx response).
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrConversionFailed is returned when the document opens but page
	// rasterization fails (corrupt file, unsupported format, empty document).
	ErrConversionFailed = errors.New("conversion failed")
)
