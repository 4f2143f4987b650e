package contract

import (
	"context"

	"ai-docchat-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredDocumentEmbedding wraps a document with its cosine similarity score
// against a query vector (1.0 = identical).
type ScoredDocumentEmbedding struct {
	Document   *entity.Document
	Similarity float64
}

type DocumentEmbeddingRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	CreateBulk(ctx context.Context, documents []*entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SearchSimilarWithScore runs a pgvector cosine search over the corpus.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredDocumentEmbedding, error)
	// Scan returns up to limit documents without scoring, for the lexical
	// fallback path.
	Scan(ctx context.Context, limit int) ([]*entity.Document, error)
}
