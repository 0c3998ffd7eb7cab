package provider

import "context"

// EmbeddingProvider generates fixed-dimension vectors for transcript
// text. The dimension is a process-wide constant tied to the provider
// in use; mixing providers against one segment table is not supported.
type EmbeddingProvider interface {
	// GenerateEmbedding generates an embedding vector for the given text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GetProviderInfo returns metadata about the provider
	GetProviderInfo() ProviderInfo
}

// ProviderInfo contains metadata about an embedding provider
type ProviderInfo struct {
	Name      string // Provider name (e.g., "openai", "gemini")
	Model     string // Model identifier (e.g., "text-embedding-ada-002")
	Dimension int    // Embedding dimension (1536 for OpenAI, 768 for Gemini)
}
