package docstore

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable signals that the store itself cannot be reached (connection
// refused, missing collection, timeout). Callers use it to switch to the
// lexical fallback path; it is distinct from an empty result set.
var ErrUnavailable = errors.New("document store unavailable")

// Payload carries the content fields of one stored document.
type Payload struct {
	Title           string `json:"document_name"`
	Text            string `json:"text"`
	SummaryPurpose  string `json:"summary_purpose"`
	SummaryResult   string `json:"summary_result"`
	SummaryFeedback string `json:"summary_fb"`
	ImageURL        string `json:"image_url,omitempty"`
}

// SearchText concatenates the title and every non-empty content field into a
// single blob for lexical scoring. Field order is fixed: title first.
func (p Payload) SearchText() string {
	parts := []string{p.Title}
	for _, field := range []string{p.Text, p.SummaryPurpose, p.SummaryResult, p.SummaryFeedback} {
		if strings.TrimSpace(field) != "" {
			parts = append(parts, field)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ScoredDocument is one hit from a vector-similarity search.
type ScoredDocument struct {
	ID      string
	Score   float64
	Payload Payload
}

// Document is one entry from a corpus scan.
type Document struct {
	ID      string
	Payload Payload
}

// Store is the narrow contract the retrieval path depends on. Implementations
// must return ErrUnavailable (possibly wrapped) for connectivity-class
// failures so the caller can distinguish them from "no results".
type Store interface {
	// Search returns up to limit documents ordered by descending similarity
	// to the query vector.
	Search(ctx context.Context, queryVector []float32, limit int) ([]ScoredDocument, error)

	// Scan returns up to limit documents with no particular ordering. Used by
	// the full-corpus lexical fallback.
	Scan(ctx context.Context, limit int) ([]Document, error)
}
