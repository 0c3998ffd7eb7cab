package similarity

import (
	"errors"
	"math"
)

// Calculator computes a similarity or distance between two vectors.
type Calculator interface {
	Calculate(a, b []float32) (float64, error)
}

// CosineCalculator implements cosine similarity. This is the measure
// the pgvector backend uses (`1 - (embedding <=> query)`), so the
// in-process sqlite ranker must score identically.
type CosineCalculator struct{}

// NewCosineCalculator creates a new cosine similarity calculator.
func NewCosineCalculator() *CosineCalculator {
	return &CosineCalculator{}
}

// Calculate computes cosine similarity between two vectors.
func (c *CosineCalculator) Calculate(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.New("vectors must have same dimension")
	}

	if len(a) == 0 {
		return 0, nil
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	// Zero vectors have no direction, treat as orthogonal.
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
