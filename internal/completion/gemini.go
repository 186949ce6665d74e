package completion

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	genai "google.golang.org/genai"

	"github.com/pagemd/pagemd/internal/model"
)

// GeminiClient transcribes pages through the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed completion client.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("%w: creating gemini client: %v", ErrCompletionFailed, err)
	}

	return &GeminiClient{client: c, model: modelName}, nil
}

// Complete implements Client.
func (g *GeminiClient) Complete(ctx context.Context, page model.PageImage, priorPageText string, maintainFormat bool) (Result, error) {
	data, err := os.ReadFile(page.Path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading page image %s: %v", ErrCompletionFailed, page.Path, err)
	}

	mt := mime.TypeByExtension(filepath.Ext(page.Path))
	if mt == "" {
		mt = "image/jpeg"
	}

	// Multimodal prompt with inline image bytes.
	content := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: buildPrompt(priorPageText, maintainFormat)},
			{InlineData: &genai.Blob{MIMEType: mt, Data: data}},
		},
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: page %d: %v", ErrCompletionFailed, page.Page, err)
	}

	result := Result{Text: res.Text()}
	if res.UsageMetadata != nil {
		result.InputTokens = int64(res.UsageMetadata.PromptTokenCount)
		result.OutputTokens = int64(res.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}
