package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pagemd/pagemd/internal/model"
)

// writePageImage writes a fake page image and returns its PageImage handle.
func writePageImage(t *testing.T, page int) model.PageImage {
	t.Helper()

	path := filepath.Join(t.TempDir(), "page_0001.jpg")
	if err := os.WriteFile(path, []byte("fake-jpeg-bytes"), 0600); err != nil {
		t.Fatalf("failed to write page image: %v", err)
	}
	return model.PageImage{Page: page, Path: path}
}

// TestOpenAIClientComplete tests the OpenAI-compatible backend.
func TestOpenAIClientComplete(t *testing.T) {
	t.Parallel()

	t.Run("returns text and usage", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("unexpected authorization header: %q", got)
			}

			var req chatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			if req.Model != "gpt-4o-mini" {
				t.Errorf("unexpected model: %q", req.Model)
			}
			if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
				t.Fatalf("expected one message with text and image parts, got %+v", req.Messages)
			}
			if req.Messages[0].Content[1].ImageURL == nil ||
				!strings.HasPrefix(req.Messages[0].Content[1].ImageURL.URL, "data:image/jpeg;base64,") {
				t.Error("expected base64 data URL image part")
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"choices": [{"message": {"content": "# Page One"}}],
				"usage": {"prompt_tokens": 321, "completion_tokens": 54}
			}`))
		}))
		defer srv.Close()

		c := NewOpenAIClient("test-key", "gpt-4o-mini", srv.URL)
		res, err := c.Complete(context.Background(), writePageImage(t, 1), "", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Text != "# Page One" {
			t.Errorf("unexpected text: %q", res.Text)
		}
		if res.InputTokens != 321 || res.OutputTokens != 54 {
			t.Errorf("unexpected usage: in=%d out=%d", res.InputTokens, res.OutputTokens)
		}
	})

	t.Run("prior page context included in maintain-format mode", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req chatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			if !strings.Contains(req.Messages[0].Content[0].Text, "## Prior Heading") {
				t.Error("expected prior page text in prompt")
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}], "usage": {}}`))
		}))
		defer srv.Close()

		c := NewOpenAIClient("test-key", "gpt-4o-mini", srv.URL)
		if _, err := c.Complete(context.Background(), writePageImage(t, 2), "## Prior Heading", true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-200 wraps ErrCompletionFailed", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": "rate limited"}`))
		}))
		defer srv.Close()

		c := NewOpenAIClient("test-key", "gpt-4o-mini", srv.URL)
		_, err := c.Complete(context.Background(), writePageImage(t, 1), "", false)
		if !errors.Is(err, ErrCompletionFailed) {
			t.Errorf("expected ErrCompletionFailed, got %v", err)
		}
	})

	t.Run("empty choices wraps ErrCompletionFailed", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices": [], "usage": {}}`))
		}))
		defer srv.Close()

		c := NewOpenAIClient("test-key", "gpt-4o-mini", srv.URL)
		_, err := c.Complete(context.Background(), writePageImage(t, 1), "", false)
		if !errors.Is(err, ErrCompletionFailed) {
			t.Errorf("expected ErrCompletionFailed, got %v", err)
		}
	})

	t.Run("missing page image wraps ErrCompletionFailed", func(t *testing.T) {
		t.Parallel()

		c := NewOpenAIClient("test-key", "gpt-4o-mini", "http://127.0.0.1:1")
		_, err := c.Complete(context.Background(), model.PageImage{Page: 1, Path: "/nonexistent.jpg"}, "", false)
		if !errors.Is(err, ErrCompletionFailed) {
			t.Errorf("expected ErrCompletionFailed, got %v", err)
		}
	})
}

// TestBuildPrompt tests prompt assembly.
func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	t.Run("base prompt without context", func(t *testing.T) {
		t.Parallel()

		got := buildPrompt("", false)
		if got != systemPrompt {
			t.Error("expected bare system prompt")
		}
	})

	t.Run("ignores prior text outside maintain-format mode", func(t *testing.T) {
		t.Parallel()

		got := buildPrompt("# Prior", false)
		if strings.Contains(got, "# Prior") {
			t.Error("prior text must not leak into independent-mode prompts")
		}
	})

	t.Run("first page in maintain-format mode has no context block", func(t *testing.T) {
		t.Parallel()

		got := buildPrompt("", true)
		if got != systemPrompt {
			t.Error("expected bare system prompt for the first page")
		}
	})

	t.Run("appends prior page in maintain-format mode", func(t *testing.T) {
		t.Parallel()

		got := buildPrompt("# Prior", true)
		if !strings.Contains(got, "# Prior") {
			t.Error("expected prior page text in prompt")
		}
		if !strings.HasPrefix(got, systemPrompt) {
			t.Error("expected system prompt first")
		}
	})
}
