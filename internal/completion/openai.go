package completion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pagemd/pagemd/internal/model"
)

// OpenAIClient speaks the OpenAI chat-completions wire format.
// It works against api.openai.com as well as OpenRouter and other gateways
// exposing the same endpoint.
//
// Design decision: Requests are non-streaming. Streaming responses omit the
// usage block on many gateways, and per-page token accounting is part of the
// run result, so we trade time-to-first-byte for reliable usage data.
type OpenAIClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// chatMessage is one message in a chat-completions request.
type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

// contentPart is a text or image segment of a message.
type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

// imageURL carries an image as a data URL.
type imageURL struct {
	URL string `json:"url"`
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatResponse is the subset of the chat-completions response we consume.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(apiKey, modelName, baseURL string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		model:   modelName,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // Per-request ceiling; the run context cancels earlier
		},
	}
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, page model.PageImage, priorPageText string, maintainFormat bool) (Result, error) {
	body, err := c.buildBody(page, priorPageText, maintainFormat)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: building request: %v", ErrCompletionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: page %d: %v", ErrCompletionFailed, page.Page, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		// Include a bounded slice of the body: error payloads identify
		// auth and rate-limit problems precisely.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // Detail is best effort
		return Result{}, fmt.Errorf("%w: page %d: status %d: %s", ErrCompletionFailed, page.Page, resp.StatusCode, detail)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Result{}, fmt.Errorf("%w: page %d: decoding response: %v", ErrCompletionFailed, page.Page, err)
	}
	if len(cr.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: page %d: response contained no choices", ErrCompletionFailed, page.Page)
	}

	return Result{
		Text:         cr.Choices[0].Message.Content,
		InputTokens:  cr.Usage.PromptTokens,
		OutputTokens: cr.Usage.CompletionTokens,
	}, nil
}

// buildBody constructs the request body with the page image inlined as a
// base64 data URL.
func (c *OpenAIClient) buildBody(page model.PageImage, priorPageText string, maintainFormat bool) ([]byte, error) {
	data, err := os.ReadFile(page.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading page image %s: %v", ErrCompletionFailed, page.Path, err)
	}

	mt := mime.TypeByExtension(filepath.Ext(page.Path))
	if mt == "" {
		mt = "image/jpeg"
	}
	dataURL := "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data)

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: buildPrompt(priorPageText, maintainFormat)},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", ErrCompletionFailed, err)
	}
	return body, nil
}
