package retrieval

import (
	"context"

	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/docstore"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/similarity"
)

const (
	// ModeQuestion marks candidates retrieved for the raw question.
	ModeQuestion = "question"
	// ModeKeyword marks candidates retrieved for an extracted keyword.
	ModeKeyword = "keyword"

	// fallbackScanLimit bounds the lexical fallback when vector search
	// is unavailable.
	fallbackScanLimit = 1000
)

// Candidate is a single retrieved document with its similarity score and
// the retrieval mode that produced it.
type Candidate struct {
	ID      string
	Score   float64
	Mode    string
	Payload docstore.Payload
}

// Adapter retrieves candidates for a query, preferring vector search and
// degrading to a lexical scan when the store cannot serve vectors.
type Adapter struct {
	store    docstore.Store
	embedder embedding.EmbeddingProvider
	engine   *similarity.Engine
	logger   logger.ILogger

	// fallbackDocs caches the scan result so a degraded pipeline run
	// hits the store once, not once per keyword.
	fallbackDocs   []docstore.Document
	fallbackLoaded bool
}

// NewAdapter creates a retrieval adapter. The embedder may be shared
// across requests; the adapter itself is per-request because of the
// fallback cache.
func NewAdapter(store docstore.Store, embedder embedding.EmbeddingProvider, engine *similarity.Engine, log logger.ILogger) *Adapter {
	return &Adapter{
		store:    store,
		embedder: embedder,
		engine:   engine,
		logger:   log,
	}
}

// Search retrieves up to limit candidates for the query. It never returns
// an error: vector-search failures degrade to the lexical fallback, and a
// failed fallback yields an empty slice.
func (a *Adapter) Search(ctx context.Context, query, mode string, limit int) []Candidate {
	if limit <= 0 {
		return nil
	}

	scored, err := a.vectorSearch(ctx, query, limit)
	if err == nil && len(scored) > 0 {
		candidates := make([]Candidate, 0, len(scored))
		for _, doc := range scored {
			candidates = append(candidates, Candidate{
				ID:      doc.ID,
				Score:   doc.Score,
				Mode:    mode,
				Payload: doc.Payload,
			})
		}
		return candidates
	}
	if err != nil {
		a.logger.Warn("retrieval", "vector search unavailable, using lexical fallback", map[string]interface{}{
			"error": err.Error(),
			"mode":  mode,
		})
	}

	return a.lexicalFallback(ctx, query, mode, limit)
}

func (a *Adapter) vectorSearch(ctx context.Context, query string, limit int) ([]docstore.ScoredDocument, error) {
	embeddingRes, err := a.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return a.store.Search(ctx, embeddingRes.Values, limit)
}

func (a *Adapter) lexicalFallback(ctx context.Context, query, mode string, limit int) []Candidate {
	docs, err := a.loadFallbackDocs(ctx)
	if err != nil {
		a.logger.Error("retrieval", "lexical fallback scan failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	if len(docs) == 0 {
		return nil
	}

	ranked := a.engine.Rank(query, toSearchable(docs), limit)

	candidates := make([]Candidate, 0, len(ranked))
	for _, r := range ranked {
		if r.Similarity <= 0 {
			continue
		}
		doc := r.Document.(searchableDoc)
		candidates = append(candidates, Candidate{
			ID:      doc.id,
			Score:   r.Similarity,
			Mode:    mode,
			Payload: doc.payload,
		})
	}
	return candidates
}

func (a *Adapter) loadFallbackDocs(ctx context.Context) ([]docstore.Document, error) {
	if a.fallbackLoaded {
		return a.fallbackDocs, nil
	}
	docs, err := a.store.Scan(ctx, fallbackScanLimit)
	if err != nil {
		return nil, err
	}
	a.fallbackDocs = docs
	a.fallbackLoaded = true
	return docs, nil
}

type searchableDoc struct {
	id      string
	payload docstore.Payload
}

func (d searchableDoc) SearchText() string {
	return d.payload.SearchText()
}

func toSearchable(docs []docstore.Document) []similarity.Document {
	out := make([]similarity.Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, searchableDoc{id: doc.ID, payload: doc.Payload})
	}
	return out
}
