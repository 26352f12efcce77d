package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	v := []float32{0.6, 0.8}
	opposite := []float32{-0.6, -0.8}
	orthogonal := []float32{-0.8, 0.6}

	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-5)
	assert.InDelta(t, -1.0, CosineSimilarity(v, opposite), 1e-5)
	assert.InDelta(t, 0.0, CosineSimilarity(v, orthogonal), 1e-5)
}

func TestCosineSimilarity_MismatchedLengths(t *testing.T) {
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Zero(t, CosineSimilarity(nil, []float32{1}))
	assert.Zero(t, CosineSimilarity(nil, nil))
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	assert.Zero(t, CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3}))
}
