package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/pagemd/pagemd/internal/config"
	"github.com/pagemd/pagemd/internal/model"
)

// ErrCompletionFailed is returned for any backend failure: network errors,
// authentication, rate limits, or model-side errors. The pipeline isolates
// this per page; it never aborts the run.
var ErrCompletionFailed = errors.New("completion failed")

// Result is one page's transcription as returned by a backend.
type Result struct {
	// Text is the raw transcribed text before formatting.
	Text string

	// InputTokens is the prompt token count reported by the endpoint.
	InputTokens int64

	// OutputTokens is the completion token count reported by the endpoint.
	OutputTokens int64
}

// Client transcribes a single page image to text.
//
// Design decision: We use an interface rather than a concrete client because:
// 1. Tests supply a stub without network access
// 2. Multiple providers (OpenAI-compatible, Gemini) plug in behind one contract
// 3. The pipeline stays ignorant of wire formats
type Client interface {
	// Complete transcribes one page. When maintainFormat is true,
	// priorPageText carries the previous page's formatted output as
	// continuity context; otherwise it is ignored.
	Complete(ctx context.Context, page model.PageImage, priorPageText string, maintainFormat bool) (Result, error)
}

// NewClient creates the backend selected by the configuration.
// The configuration must already be validated.
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", config.ErrUnknownProvider, cfg.Provider)
	}
}
