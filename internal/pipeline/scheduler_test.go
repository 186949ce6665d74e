package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pagemd/pagemd/internal/completion"
	"github.com/pagemd/pagemd/internal/model"
)

// makePages builds n page images numbered 1..n.
func makePages(n int) []model.PageImage {
	pages := make([]model.PageImage, n)
	for i := range pages {
		pages[i] = model.PageImage{Page: i + 1}
	}
	return pages
}

// TestSchedulerNew tests the Scheduler constructor.
func TestSchedulerNew(t *testing.T) {
	t.Parallel()

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		s := NewScheduler(NewProcessor(&stubClient{}), WithConcurrency(5))
		if s.concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", s.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		s := NewScheduler(NewProcessor(&stubClient{}), WithConcurrency(0))
		if s.concurrency != 1 { // Should keep the defensive default
			t.Errorf("expected concurrency 1, got %d", s.concurrency)
		}
	})
}

// TestSchedulerEmptyPages verifies that an empty sequence short-circuits.
func TestSchedulerEmptyPages(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := &stubClient{
		completeFunc: func(_ context.Context, _ model.PageImage, _ string, _ bool) (completion.Result, error) {
			calls.Add(1)
			return completion.Result{}, nil
		},
	}

	s := NewScheduler(NewProcessor(client), WithConcurrency(4))
	results, err := s.Run(context.Background(), nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
	if calls.Load() != 0 {
		t.Errorf("completion client must not be invoked for empty input, got %d calls", calls.Load())
	}
}

// TestSchedulerIndependentMode tests bounded-parallel processing.
func TestSchedulerIndependentMode(t *testing.T) {
	t.Parallel()

	t.Run("preserves page order despite completion order", func(t *testing.T) {
		t.Parallel()

		// Earlier pages sleep longer, so completion order is the reverse
		// of dispatch order.
		client := &stubClient{
			completeFunc: func(_ context.Context, page model.PageImage, _ string, _ bool) (completion.Result, error) {
				time.Sleep(time.Duration(6-page.Page) * 10 * time.Millisecond)
				return completion.Result{Text: fmt.Sprintf("page %d", page.Page)}, nil
			},
		}

		s := NewScheduler(NewProcessor(client), WithConcurrency(5))
		results, err := s.Run(context.Background(), makePages(5))

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 5 {
			t.Fatalf("expected 5 results, got %d", len(results))
		}
		for i, r := range results {
			if r.Page != i+1 {
				t.Errorf("result[%d]: got page %d, expected %d", i, r.Page, i+1)
			}
			if want := fmt.Sprintf("page %d", i+1); r.Content != want {
				t.Errorf("result[%d]: got content %q, expected %q", i, r.Content, want)
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var maxConcurrent atomic.Int32
		var currentConcurrent atomic.Int32
		var mu sync.Mutex

		client := &stubClient{
			completeFunc: func(_ context.Context, _ model.PageImage, _ string, _ bool) (completion.Result, error) {
				current := currentConcurrent.Add(1)

				mu.Lock()
				if current > maxConcurrent.Load() {
					maxConcurrent.Store(current)
				}
				mu.Unlock()

				time.Sleep(30 * time.Millisecond)

				currentConcurrent.Add(-1)
				return completion.Result{Text: "x"}, nil
			},
		}

		s := NewScheduler(NewProcessor(client), WithConcurrency(3))
		if _, err := s.Run(context.Background(), makePages(12)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if maxConcurrent.Load() > 3 {
			t.Errorf("max concurrent was %d, expected <= 3", maxConcurrent.Load())
		}
	})

	t.Run("single failure skips one page only", func(t *testing.T) {
		t.Parallel()

		client := &stubClient{
			completeFunc: func(_ context.Context, page model.PageImage, _ string, _ bool) (completion.Result, error) {
				if page.Page == 2 {
					return completion.Result{}, errors.New("simulated completion failure")
				}
				return completion.Result{Text: fmt.Sprintf("page %d", page.Page), InputTokens: 10, OutputTokens: 5}, nil
			},
		}

		s := NewScheduler(NewProcessor(client), WithConcurrency(3))
		results, err := s.Run(context.Background(), makePages(3))

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Skipped || results[2].Skipped {
			t.Error("pages 1 and 3 must not be skipped")
		}
		if !results[1].Skipped {
			t.Error("page 2 must be skipped")
		}
	})

	t.Run("all failures still complete the run", func(t *testing.T) {
		t.Parallel()

		client := &stubClient{
			completeFunc: func(_ context.Context, _ model.PageImage, _ string, _ bool) (completion.Result, error) {
				return completion.Result{}, errors.New("always fails")
			},
		}

		s := NewScheduler(NewProcessor(client), WithConcurrency(2))
		results, err := s.Run(context.Background(), makePages(4))

		if err != nil {
			t.Fatalf("expected successful run with all pages skipped, got %v", err)
		}
		for i, r := range results {
			if !r.Skipped {
				t.Errorf("result[%d]: expected skipped", i)
			}
		}
	})

	t.Run("cancellation returns partial results", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		var started atomic.Int32
		client := &stubClient{
			completeFunc: func(ctx context.Context, page model.PageImage, _ string, _ bool) (completion.Result, error) {
				started.Add(1)
				select {
				case <-ctx.Done():
					return completion.Result{}, ctx.Err()
				case <-time.After(time.Second):
					return completion.Result{Text: "x"}, nil
				}
			},
		}

		s := NewScheduler(NewProcessor(client), WithConcurrency(2))

		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		results, err := s.Run(ctx, makePages(10))

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(results) != 10 {
			t.Errorf("expected one tagged slot per page, got %d", len(results))
		}
		if started.Load() >= 10 {
			t.Error("expected some pages to not start due to cancellation")
		}
	})
}

// TestSchedulerFormatMaintenanceMode tests serial processing with context.
func TestSchedulerFormatMaintenanceMode(t *testing.T) {
	t.Parallel()

	t.Run("threads prior page output and never overlaps", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var inFlight int
		var priors []string

		client := &stubClient{
			completeFunc: func(_ context.Context, page model.PageImage, prior string, _ bool) (completion.Result, error) {
				mu.Lock()
				inFlight++
				if inFlight > 1 {
					t.Error("format-maintenance calls must not overlap")
				}
				priors = append(priors, prior)
				mu.Unlock()

				time.Sleep(10 * time.Millisecond)

				mu.Lock()
				inFlight--
				mu.Unlock()

				return completion.Result{Text: fmt.Sprintf("page %d", page.Page)}, nil
			},
		}

		p := NewProcessor(client, WithMaintainFormat(true))
		// High concurrency must be ignored in this mode.
		s := NewScheduler(p, WithSerial(true), WithConcurrency(8))

		results, err := s.Run(context.Background(), makePages(3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}

		want := []string{"", "page 1", "page 2"}
		for i, prior := range priors {
			if prior != want[i] {
				t.Errorf("call %d: got prior %q, expected %q", i, prior, want[i])
			}
		}
	})

	t.Run("failed page passes its predecessor's context onward", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var priors []string

		client := &stubClient{
			completeFunc: func(_ context.Context, page model.PageImage, prior string, _ bool) (completion.Result, error) {
				mu.Lock()
				priors = append(priors, prior)
				mu.Unlock()

				if page.Page == 2 {
					return completion.Result{}, errors.New("page 2 fails")
				}
				return completion.Result{Text: fmt.Sprintf("page %d", page.Page)}, nil
			},
		}

		p := NewProcessor(client, WithMaintainFormat(true))
		s := NewScheduler(p, WithSerial(true))

		results, err := s.Run(context.Background(), makePages(3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !results[1].Skipped {
			t.Error("page 2 must be skipped")
		}

		// Page 3 sees page 1's output because page 2 produced nothing.
		want := []string{"", "page 1", "page 1"}
		for i, prior := range priors {
			if prior != want[i] {
				t.Errorf("call %d: got prior %q, expected %q", i, prior, want[i])
			}
		}
	})

	t.Run("cancellation stops dispatch between pages", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		var calls atomic.Int32
		client := &stubClient{
			completeFunc: func(_ context.Context, page model.PageImage, _ string, _ bool) (completion.Result, error) {
				calls.Add(1)
				if page.Page == 2 {
					cancel()
				}
				return completion.Result{Text: "x"}, nil
			},
		}

		p := NewProcessor(client, WithMaintainFormat(true))
		s := NewScheduler(p, WithSerial(true))

		results, err := s.Run(ctx, makePages(5))

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if calls.Load() != 2 {
			t.Errorf("expected dispatch to stop after page 2, got %d calls", calls.Load())
		}
		if len(results) != 2 {
			t.Errorf("expected 2 partial results, got %d", len(results))
		}
	})
}

// TestSchedulerTokenAccounting verifies token totals are not lost under
// concurrent writers.
func TestSchedulerTokenAccounting(t *testing.T) {
	t.Parallel()

	const pages = 50

	client := &stubClient{
		completeFunc: func(_ context.Context, page model.PageImage, _ string, _ bool) (completion.Result, error) {
			return completion.Result{
				Text:         "x",
				InputTokens:  int64(page.Page),
				OutputTokens: 2,
			}, nil
		},
	}

	s := NewScheduler(NewProcessor(client), WithConcurrency(8))
	results, err := s.Run(context.Background(), makePages(pages))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var in, out int64
	for _, r := range results {
		in += r.InputTokens
		out += r.OutputTokens
	}

	wantIn := int64(pages * (pages + 1) / 2)
	if in != wantIn {
		t.Errorf("input token sum: got %d, expected %d", in, wantIn)
	}
	if out != int64(pages*2) {
		t.Errorf("output token sum: got %d, expected %d", out, pages*2)
	}
}
