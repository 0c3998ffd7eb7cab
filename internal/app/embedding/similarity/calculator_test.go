package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineCalculator(t *testing.T) {
	calc := NewCosineCalculator()

	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical direction", []float32{1, 0, 0}, []float32{2, 0, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector treated as orthogonal", []float32{0, 0}, []float32{1, 2}, 0.0},
		{"empty vectors", nil, nil, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Calculate(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosineCalculatorDimensionMismatch(t *testing.T) {
	calc := NewCosineCalculator()
	_, err := calc.Calculate([]float32{1, 2}, []float32{1, 2, 3})
	assert.Error(t, err)
}
