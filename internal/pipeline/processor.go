package pipeline

import (
	"context"
	"log/slog"

	"github.com/pagemd/pagemd/internal/completion"
	"github.com/pagemd/pagemd/internal/format"
	"github.com/pagemd/pagemd/internal/model"
)

// Processor transcribes a single page: it invokes the completion client,
// formats the raw output to Markdown, and records token usage in the shared
// run state.
//
// Failure policy: any error from the completion client is caught here, logged,
// and converted into a skipped result. It never propagates, so a failing page
// cannot abort its siblings. This is the pipeline's core resilience contract.
type Processor struct {
	// client is the completion backend used for transcription.
	client completion.Client

	// maintainFormat enables cross-page continuity: on success the page's
	// formatted output replaces the shared prior-page text.
	maintainFormat bool

	// logger is used for structured logging during processing.
	logger *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithMaintainFormat enables format-maintenance mode for the processor.
func WithMaintainFormat(enabled bool) ProcessorOption {
	return func(p *Processor) {
		p.maintainFormat = enabled
	}
}

// WithProcessorLogger sets a custom logger for the processor.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a Processor using the given completion client.
func NewProcessor(client completion.Client, opts ...ProcessorOption) *Processor {
	p := &Processor{
		client: client,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Process transcribes one page and returns its result.
// On failure the returned result is tagged skipped; Process never returns an
// error because per-page failures must not cross the task boundary.
//
// In format-maintenance mode Process is the sole writer of the shared prior
// page text; the scheduler's strict serialization guarantees the next page
// observes this page's output.
func (p *Processor) Process(ctx context.Context, page model.PageImage, state *RunState) model.PageResult {
	prior := ""
	if p.maintainFormat {
		prior = state.PriorText()
	}

	res, err := p.client.Complete(ctx, page, prior, p.maintainFormat)
	if err != nil {
		p.logger.Warn("page skipped",
			"page", page.Page,
			"error", err,
		)
		return model.NewSkippedResult(page.Page, err)
	}

	text := format.Markdown(res.Text)

	if p.maintainFormat {
		state.SetPriorText(text)
	}
	state.AddUsage(res.InputTokens, res.OutputTokens)

	p.logger.Debug("page transcribed",
		"page", page.Page,
		"contentLength", len(text),
		"inputTokens", res.InputTokens,
		"outputTokens", res.OutputTokens,
	)

	return model.NewPageResult(page.Page, text, res.InputTokens, res.OutputTokens)
}
