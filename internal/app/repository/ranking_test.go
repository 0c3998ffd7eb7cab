package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemporalProximity(t *testing.T) {
	tests := []struct {
		name      string
		start     float64
		timestamp float64
		want      float64
	}{
		{"exact position", 60, 60, 1.0},
		{"thirty seconds out decays to half", 90, 60, 0.5},
		{"distance is symmetric", 30, 60, 0.5},
		{"sixty seconds out", 120, 60, 1.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TemporalProximity(tt.start, tt.timestamp), 1e-12)
		})
	}
}

func TestHybridScore(t *testing.T) {
	// A segment at the query position with perfect similarity scores 1.
	assert.InDelta(t, 1.0, HybridScore(1.0, 42, 42), 1e-12)

	// Weights split 0.7 to similarity, 0.3 to proximity.
	assert.InDelta(t, 0.7+0.3*0.5, HybridScore(1.0, 30, 60), 1e-12)
	assert.InDelta(t, 0.3, HybridScore(0, 42, 42), 1e-12)

	// A close but weakly similar segment can outrank a distant strong
	// one; that is the point of the blend.
	near := HybridScore(0.4, 61, 60)
	far := HybridScore(0.6, 500, 60)
	assert.Greater(t, near, far)
}
