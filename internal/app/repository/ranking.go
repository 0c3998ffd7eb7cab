package repository

import "math"

// Ranking policy constants. These are a compatibility contract: both
// backends (and any future one) must score with exactly these values.
const (
	// SimilarityWeight and TemporalWeight blend semantic similarity
	// with closeness to the viewer's playback position.
	SimilarityWeight = 0.7
	TemporalWeight   = 0.3
	// TemporalScale is the distance in seconds at which temporal
	// proximity has decayed to one half.
	TemporalScale = 30.0
)

// TemporalProximity maps the distance between a segment start and the
// query timestamp into (0, 1], with 1.0 at zero distance.
func TemporalProximity(start, timestamp float64) float64 {
	return 1 / (1 + math.Abs(start-timestamp)/TemporalScale)
}

// HybridScore combines similarity and temporal proximity.
func HybridScore(similarity, start, timestamp float64) float64 {
	return SimilarityWeight*similarity + TemporalWeight*TemporalProximity(start, timestamp)
}
