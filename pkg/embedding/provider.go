package embedding

import "fmt"

// EmbeddingResponse carries the generated vector.
type EmbeddingResponse struct {
	Values []float32
}

// EmbeddingProvider defines the interface for turning text into a vector the
// document store can search with.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)

	// Dimension returns the width of every vector this provider emits. The
	// store's vector column is fixed at schema time, so callers must check
	// compatibility before inserting or searching.
	Dimension() int
}

// ValidateDimension rejects a provider whose vectors cannot fit the store's
// declared column width. pgvector fails every insert and query on a width
// mismatch, which would silently pin retrieval to the lexical fallback.
func ValidateDimension(p EmbeddingProvider, columnDim int) error {
	if got := p.Dimension(); got != columnDim {
		return fmt.Errorf("embedding provider emits %d-dimensional vectors but the store column is vector(%d)", got, columnDim)
	}
	return nil
}
