package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pagemd/pagemd/internal/model"
)

// Scheduler runs the Processor over an ordered page sequence under one of
// two mutually exclusive policies:
//
//   - Format-maintenance mode: strictly serial. Page i+1 is dispatched only
//     after page i's Process call has returned (success or failure), because
//     each call consumes the previous call's output as context. The
//     concurrency limit is ignored.
//   - Independent mode: bounded parallelism. Pages are dispatched in index
//     order with at most `concurrency` Process calls in flight; each result
//     is written to its pre-allocated index slot, so final order never
//     depends on completion order.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled worker
// pool because it expresses the in-flight bound directly and handles context
// propagation. Results go into index-addressed slots under a mutex; the slice
// itself is never appended to concurrently.
type Scheduler struct {
	// processor handles individual pages.
	processor *Processor

	// concurrency is the maximum number of in-flight Process calls in
	// independent mode.
	concurrency int

	// maintainFormat selects the serial policy.
	maintainFormat bool

	// logger is used for scheduler-level logging.
	logger *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithConcurrency sets the maximum number of concurrent page transcriptions
// in independent mode. Config validation rejects non-positive limits before a
// run starts; as a defensive default the scheduler keeps its previous value
// (initially 1) when given a non-positive limit rather than accepting it.
func WithConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSerial enables format-maintenance mode, forcing strictly serial
// processing regardless of the concurrency limit.
func WithSerial(enabled bool) SchedulerOption {
	return func(s *Scheduler) {
		s.maintainFormat = enabled
	}
}

// WithSchedulerLogger sets a custom logger for the scheduler.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a Scheduler for the given processor.
func NewScheduler(processor *Processor, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		processor:   processor,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Run processes all pages and returns their results in page order, one entry
// per input page (skipped pages included; the aggregator filters them).
//
// An empty page sequence returns an empty slice without invoking the
// completion client. Individual page failures are absorbed by the processor
// and never surface here, so the only error Run returns is the context's,
// on cancellation or timeout. In that case the results collected so far are
// returned alongside the error so callers can aggregate partial output.
func (s *Scheduler) Run(ctx context.Context, pages []model.PageImage) ([]model.PageResult, error) {
	if len(pages) == 0 {
		return []model.PageResult{}, nil
	}

	state := NewRunState()
	start := time.Now()

	s.logger.Info("starting page processing",
		"pages", len(pages),
		"maintainFormat", s.maintainFormat,
		"concurrency", s.concurrency,
	)

	var results []model.PageResult
	var err error
	if s.maintainFormat {
		results, err = s.runSerial(ctx, pages, state)
	} else {
		results, err = s.runParallel(ctx, pages, state)
	}

	in, out := state.Usage()
	s.logger.Info("page processing complete",
		"pages", len(pages),
		"elapsed", time.Since(start),
		"inputTokens", in,
		"outputTokens", out,
	)

	return results, err
}

// runSerial processes pages one at a time in page order.
// Each page's Process call completes before the next is dispatched, so each
// call observes the previous page's output in the run state.
func (s *Scheduler) runSerial(ctx context.Context, pages []model.PageImage, state *RunState) ([]model.PageResult, error) {
	results := make([]model.PageResult, 0, len(pages))

	for _, page := range pages {
		// Check for cancellation between pages. The in-flight call handles
		// its own context; stopping here returns the partial results.
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		results = append(results, s.processor.Process(ctx, page, state))
	}

	return results, nil
}

// runParallel processes pages with at most s.concurrency calls in flight.
// Dispatch follows page index order; each result lands in its own slot.
func (s *Scheduler) runParallel(ctx context.Context, pages []model.PageImage, state *RunState) ([]model.PageResult, error) {
	// Pre-allocate one slot per page to keep results in page order.
	results := make([]model.PageResult, len(pages))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, page := range pages {
		g.Go(func() error {
			// Skip dispatch once the run is cancelled; slots of undispatched
			// pages are marked skipped below.
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			result := s.processor.Process(gctx, page, state)

			mu.Lock()
			results[i] = result
			mu.Unlock()

			return nil
		})
	}

	err := g.Wait()

	// Fill slots that were never dispatched (cancellation) so every input
	// page has exactly one tagged entry.
	for i := range results {
		if results[i].Page == 0 {
			results[i] = model.NewSkippedResult(pages[i].Page, err)
		}
	}

	return results, err
}
