package provider

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

const geminiEmbeddingModel = "models/embedding-001"

// GeminiProvider implements EmbeddingProvider using the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini embedding provider.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiProvider{
		client: client,
		model:  geminiEmbeddingModel,
	}, nil
}

// GenerateEmbedding generates an embedding using the Gemini API.
func (g *GeminiProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty text provided")
	}

	response, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), nil)
	if err != nil {
		return nil, err
	}

	if len(response.Embeddings) == 0 || len(response.Embeddings[0].Values) == 0 {
		return nil, errors.New("no embedding data returned from Gemini")
	}

	return response.Embeddings[0].Values, nil
}

// GetProviderInfo returns information about the Gemini provider.
func (g *GeminiProvider) GetProviderInfo() ProviderInfo {
	return ProviderInfo{
		Name:      "gemini",
		Model:     geminiEmbeddingModel,
		Dimension: 768,
	}
}
