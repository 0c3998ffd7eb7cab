package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements EmbeddingProvider using the OpenAI API.
type OpenAIProvider struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIProvider creates a new OpenAI embedding provider.
func NewOpenAIProvider(client *openai.Client) *OpenAIProvider {
	return &OpenAIProvider{
		client: client,
		model:  openai.AdaEmbeddingV2, // text-embedding-ada-002
	}
}

// GenerateEmbedding generates an embedding using the OpenAI API.
func (o *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty text provided")
	}

	request := openai.EmbeddingRequest{
		Model: o.model,
		Input: []string{text},
	}

	response, err := o.client.CreateEmbeddings(ctx, request)
	if err != nil {
		return nil, err
	}

	if len(response.Data) == 0 {
		return nil, errors.New("no embedding data returned from OpenAI")
	}

	return response.Data[0].Embedding, nil
}

// GetProviderInfo returns information about the OpenAI provider.
func (o *OpenAIProvider) GetProviderInfo() ProviderInfo {
	return ProviderInfo{
		Name:      "openai",
		Model:     "text-embedding-ada-002",
		Dimension: 1536,
	}
}
