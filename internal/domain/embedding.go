package domain

import "math"

// EmbeddingDimensions is the fixed dimension of stored embedding vectors.
const EmbeddingDimensions = 1536

// ValidateEmbedding checks that a vector is either absent or exactly
// EmbeddingDimensions long. Both states are valid for a stored chunk.
func ValidateEmbedding(v []float32) error {
	if len(v) == 0 {
		return nil
	}
	if len(v) != EmbeddingDimensions {
		return NewDomainError(ErrCodeValidation, "embedding has wrong dimensions")
	}
	return nil
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|) in the range [-1, 1].
// Returns 0 when either vector is empty or zero-length in magnitude.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
