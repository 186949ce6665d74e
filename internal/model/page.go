package model

// PageImage represents a single rasterized document page.
// It is produced by the source package and is immutable for the duration
// of a run; the pipeline only reads from it.
type PageImage struct {
	// Page is the 1-based page number within the source document.
	Page int `json:"page"`

	// Path is the location of the rasterized JPEG on disk.
	// The file lives in a temp directory owned by the rasterizer and is
	// removed by its Cleanup method after the run finishes.
	Path string `json:"path"`

	// Width is the rendered image width in pixels.
	Width int `json:"width"`

	// Height is the rendered image height in pixels.
	Height int `json:"height"`
}

// PageResult holds the transcription outcome for one page.
//
// Design decision: Failed pages are represented as a tagged "skipped" result
// rather than an error return. The pipeline's core resilience contract is that
// one bad page never aborts the batch, so errors are absorbed at the processor
// boundary and surface only as Skipped entries with the failure reason.
type PageResult struct {
	// Page is the 1-based page number this result belongs to.
	Page int `json:"page"`

	// Content is the formatted Markdown transcription.
	// Empty when the page was skipped.
	Content string `json:"content,omitempty"`

	// ContentLength is the length of Content in bytes.
	ContentLength int `json:"content_length"`

	// InputTokens is the prompt token count reported by the completion
	// endpoint for this page.
	InputTokens int64 `json:"input_tokens"`

	// OutputTokens is the completion token count reported by the completion
	// endpoint for this page.
	OutputTokens int64 `json:"output_tokens"`

	// Skipped is true when processing this page failed.
	// Skipped pages are excluded from the aggregated document.
	Skipped bool `json:"skipped,omitempty"`

	// Error is the failure reason for a skipped page.
	Error string `json:"error,omitempty"`
}

// NewPageResult creates a successful result for the given page.
// ContentLength is derived from the content.
func NewPageResult(page int, content string, inputTokens, outputTokens int64) PageResult {
	return PageResult{
		Page:          page,
		Content:       content,
		ContentLength: len(content),
		InputTokens:   inputTokens,
		OutputTokens:  outputTokens,
	}
}

// NewSkippedResult creates a skipped result for a page whose processing failed.
func NewSkippedResult(page int, err error) PageResult {
	r := PageResult{
		Page:    page,
		Skipped: true,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
