package model

import (
	"errors"
	"testing"
)

// TestNewPageResult tests successful page result construction.
func TestNewPageResult(t *testing.T) {
	t.Parallel()

	t.Run("derives content length", func(t *testing.T) {
		t.Parallel()

		r := NewPageResult(3, "# Heading\n\nBody", 120, 45)

		if r.Page != 3 {
			t.Errorf("expected page 3, got %d", r.Page)
		}
		if r.ContentLength != len("# Heading\n\nBody") {
			t.Errorf("expected content length %d, got %d", len("# Heading\n\nBody"), r.ContentLength)
		}
		if r.InputTokens != 120 || r.OutputTokens != 45 {
			t.Errorf("unexpected token counts: in=%d out=%d", r.InputTokens, r.OutputTokens)
		}
		if r.Skipped {
			t.Error("successful result should not be skipped")
		}
	})

	t.Run("empty content has zero length", func(t *testing.T) {
		t.Parallel()

		r := NewPageResult(1, "", 0, 0)
		if r.ContentLength != 0 {
			t.Errorf("expected zero content length, got %d", r.ContentLength)
		}
	})
}

// TestNewSkippedResult tests skipped page result construction.
func TestNewSkippedResult(t *testing.T) {
	t.Parallel()

	t.Run("records failure reason", func(t *testing.T) {
		t.Parallel()

		r := NewSkippedResult(2, errors.New("completion failed: status 429"))

		if !r.Skipped {
			t.Error("expected skipped result")
		}
		if r.Page != 2 {
			t.Errorf("expected page 2, got %d", r.Page)
		}
		if r.Error != "completion failed: status 429" {
			t.Errorf("unexpected error message: %q", r.Error)
		}
		if r.Content != "" || r.ContentLength != 0 {
			t.Error("skipped result must not carry content")
		}
	})

	t.Run("tolerates nil error", func(t *testing.T) {
		t.Parallel()

		r := NewSkippedResult(1, nil)
		if !r.Skipped {
			t.Error("expected skipped result")
		}
		if r.Error != "" {
			t.Errorf("expected empty error message, got %q", r.Error)
		}
	})
}

// TestRunResult tests RunResult helper methods.
func TestRunResult(t *testing.T) {
	t.Parallel()

	t.Run("total tokens", func(t *testing.T) {
		t.Parallel()

		r := &RunResult{InputTokens: 100, OutputTokens: 50}
		if r.TotalTokens() != 150 {
			t.Errorf("expected 150 total tokens, got %d", r.TotalTokens())
		}
	})

	t.Run("succeeded requires at least one page", func(t *testing.T) {
		t.Parallel()

		empty := &RunResult{}
		if empty.Succeeded() {
			t.Error("empty run should not report success")
		}

		withPage := &RunResult{Pages: []PageResult{NewPageResult(1, "A", 1, 1)}}
		if !withPage.Succeeded() {
			t.Error("run with a page should report success")
		}
	})
}
