package vectorstore

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// CosineSimilarity calculates the cosine similarity between two vectors.
// Mismatched lengths and zero-magnitude vectors yield 0 rather than an
// error.
func CosineSimilarity(x, y []float32) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}

	val := float64(vek32.CosineSimilarity(x, y))
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return val
}
