package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"empty a", nil, []float32{1, 0}, 0.0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestCosineSimilarityNearMatch(t *testing.T) {
	// [0.9, 0.1] against [1, 0] should land near but below 1.
	score := CosineSimilarity([]float32{0.9, 0.1}, []float32{1, 0})
	assert.InDelta(t, 0.9939, score, 0.001)
	assert.Less(t, score, float32(1.0))
}

func TestValidateEmbedding(t *testing.T) {
	assert.NoError(t, ValidateEmbedding(nil))
	assert.NoError(t, ValidateEmbedding(make([]float32, EmbeddingDimensions)))
	assert.Error(t, ValidateEmbedding(make([]float32, 3)))
}
