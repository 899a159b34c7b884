package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgallion1/clusterscope/internal/retry"
	"google.golang.org/genai"
)

// GeminiModel embeds text with the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
	dim    int
}

func NewGeminiModel(ctx context.Context, apiKey, model string, dim int) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiModel{client: client, model: model, dim: dim}, nil
}

func (m *GeminiModel) Name() string   { return m.model }
func (m *GeminiModel) Dimension() int { return m.dim }

func (m *GeminiModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}
	dim := int32(m.dim)
	result, err := m.client.Models.EmbedContent(ctx, m.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(result.Embeddings), len(texts))
	}
	out := make([][]float32, len(texts))
	for i, e := range result.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == 429 || apiErr.Code >= 500) {
		return &retry.RetryableError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return fmt.Errorf("gemini embeddings: %w", err)
}
