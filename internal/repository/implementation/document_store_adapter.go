package implementation

import (
	"context"
	"fmt"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/pkg/docstore"
)

// DocumentStoreAdapter exposes the embedding repository through the docstore
// contract the retrieval layer consumes. Every repository error is reported
// as docstore.ErrUnavailable so callers can tell a down store from an empty
// result and switch to the lexical fallback.
type DocumentStoreAdapter struct {
	repo contract.DocumentEmbeddingRepository
}

func NewDocumentStoreAdapter(repo contract.DocumentEmbeddingRepository) docstore.Store {
	return &DocumentStoreAdapter{repo: repo}
}

func (a *DocumentStoreAdapter) Search(ctx context.Context, queryVector []float32, limit int) ([]docstore.ScoredDocument, error) {
	scored, err := a.repo.SearchSimilarWithScore(ctx, queryVector, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	}

	docs := make([]docstore.ScoredDocument, 0, len(scored))
	for _, s := range scored {
		docs = append(docs, docstore.ScoredDocument{
			ID:      s.Document.Id.String(),
			Score:   s.Similarity,
			Payload: toPayload(s.Document),
		})
	}
	return docs, nil
}

func (a *DocumentStoreAdapter) Scan(ctx context.Context, limit int) ([]docstore.Document, error) {
	entities, err := a.repo.Scan(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	}

	docs := make([]docstore.Document, 0, len(entities))
	for _, e := range entities {
		docs = append(docs, docstore.Document{
			ID:      e.Id.String(),
			Payload: toPayload(e),
		})
	}
	return docs, nil
}

func toPayload(d *entity.Document) docstore.Payload {
	return docstore.Payload{
		Title:           d.DocumentName,
		Text:            d.Text,
		SummaryPurpose:  d.SummaryPurpose,
		SummaryResult:   d.SummaryResult,
		SummaryFeedback: d.SummaryFeedback,
		ImageURL:        d.ImageURL,
	}
}
