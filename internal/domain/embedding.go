package domain

import "fmt"

// EmbeddingResult is the outcome of one embedding provider call.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ValidateDimensions checks a vector against the deployment's fixed
// dimensionality. Vectors of mixed dimensionality are never comparable, so a
// mismatch is rejected before it reaches storage or search.
func ValidateDimensions(vector []float32, want int) error {
	if len(vector) == 0 {
		return ErrNotEmbedded
	}
	if want > 0 && len(vector) != want {
		return fmt.Errorf("got %d dimensions, want %d: %w", len(vector), want, ErrDimensionMismatch)
	}
	return nil
}
