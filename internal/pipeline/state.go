package pipeline

import (
	"sync"
	"sync/atomic"
)

// RunState is the shared mutable state of one conversion run: the prior
// page's formatted text (format-maintenance mode only) and running token
// totals. Lifetime is a single run; create a fresh one per invocation.
//
// Design decision: priorText is guarded by a mutex with whole-value
// replacement so readers can never observe a torn update, and token totals
// are atomic counters so concurrent pages in independent mode never lose
// increments. In format-maintenance mode strict serialization already
// guarantees exclusive access; the synchronization here costs nothing there.
type RunState struct {
	mu        sync.Mutex
	priorText string

	inputTokens  atomic.Int64
	outputTokens atomic.Int64
}

// NewRunState creates the state for one run.
func NewRunState() *RunState {
	return &RunState{}
}

// PriorText returns the most recently recorded page text.
func (s *RunState) PriorText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priorText
}

// SetPriorText replaces the prior page text with a new whole value.
func (s *RunState) SetPriorText(text string) {
	s.mu.Lock()
	s.priorText = text
	s.mu.Unlock()
}

// AddUsage accumulates one page's token counts into the running totals.
func (s *RunState) AddUsage(input, output int64) {
	s.inputTokens.Add(input)
	s.outputTokens.Add(output)
}

// Usage returns the running input and output token totals.
func (s *RunState) Usage() (input, output int64) {
	return s.inputTokens.Load(), s.outputTokens.Load()
}
