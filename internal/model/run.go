package model

import "time"

// RunResult is the aggregated outcome of one conversion run.
// It is constructed once by the report package and is immutable afterwards.
//
// Design decision: Pages contains only the pages that transcribed
// successfully, ordered by page number. Skipped pages are observable through
// PagesSkipped (and the run log) but carry no content; partial failure is
// reflected as a shorter result, never as a run-level error.
type RunResult struct {
	// Source is the document reference the run was started with
	// (local path or URL).
	Source string `json:"source"`

	// FileName is the normalized output name derived from the source's
	// base name (lowercase, alphanumerics and underscores only).
	FileName string `json:"file_name"`

	// CompletedAt is the timestamp when aggregation finished.
	CompletedAt time.Time `json:"completed_at"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed_ns"`

	// Pages contains the successful page results in page order.
	Pages []PageResult `json:"pages"`

	// PagesTotal is the number of pages the source produced.
	PagesTotal int `json:"pages_total"`

	// PagesSkipped is the number of pages dropped due to processing failures.
	PagesSkipped int `json:"pages_skipped"`

	// InputTokens is the sum of prompt tokens across successful pages.
	InputTokens int64 `json:"input_tokens"`

	// OutputTokens is the sum of completion tokens across successful pages.
	OutputTokens int64 `json:"output_tokens"`
}

// TotalTokens returns the combined input and output token count.
func (r *RunResult) TotalTokens() int64 {
	return r.InputTokens + r.OutputTokens
}

// Succeeded reports whether at least one page transcribed successfully.
func (r *RunResult) Succeeded() bool {
	return len(r.Pages) > 0
}
