package retrieval

import (
	"context"
	"testing"

	"ai-docchat-be/pkg/docstore"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/similarity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeStore struct {
	searchResults []docstore.ScoredDocument
	searchErr     error
	scanResults   []docstore.Document
	scanErr       error
	scanCalls     int
}

func (s *fakeStore) Search(ctx context.Context, queryVector []float32, limit int) ([]docstore.ScoredDocument, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if limit < len(s.searchResults) {
		return s.searchResults[:limit], nil
	}
	return s.searchResults, nil
}

func (s *fakeStore) Scan(ctx context.Context, limit int) ([]docstore.Document, error) {
	s.scanCalls++
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return s.scanResults, nil
}

func newTestAdapter(store docstore.Store) *Adapter {
	return NewAdapter(store, embedding.NewHashProvider(), similarity.NewEngine(), nopLogger{})
}

func TestSearchVectorPath(t *testing.T) {
	store := &fakeStore{
		searchResults: []docstore.ScoredDocument{
			{ID: "doc-1", Score: 0.91, Payload: docstore.Payload{Title: "manual.txt", Text: "printer setup"}},
			{ID: "doc-2", Score: 0.42, Payload: docstore.Payload{Title: "guide.txt", Text: "network setup"}},
		},
	}
	adapter := newTestAdapter(store)

	candidates := adapter.Search(context.Background(), "printer setup", ModeQuestion, 5)

	require.Len(t, candidates, 2)
	assert.Equal(t, "doc-1", candidates[0].ID)
	assert.Equal(t, 0.91, candidates[0].Score)
	assert.Equal(t, ModeQuestion, candidates[0].Mode)
	assert.Equal(t, "manual.txt", candidates[0].Payload.Title)
	assert.Equal(t, 0, store.scanCalls)
}

func TestSearchFallbackOnUnavailable(t *testing.T) {
	store := &fakeStore{
		searchErr: docstore.ErrUnavailable,
		scanResults: []docstore.Document{
			{ID: "doc-1", Payload: docstore.Payload{Title: "printers.txt", Text: "printer driver installation steps"}},
			{ID: "doc-2", Payload: docstore.Payload{Title: "lunch.txt", Text: "cafeteria menu monday"}},
		},
	}
	adapter := newTestAdapter(store)

	candidates := adapter.Search(context.Background(), "printer driver installation", ModeKeyword, 3)

	require.NotEmpty(t, candidates)
	assert.Equal(t, "doc-1", candidates[0].ID)
	assert.Equal(t, ModeKeyword, candidates[0].Mode)
	assert.Greater(t, candidates[0].Score, 0.0)
	for _, c := range candidates {
		assert.NotEqual(t, "doc-2", c.ID, "zero-similarity document should be dropped")
	}
}

func TestSearchFallbackScansOnce(t *testing.T) {
	store := &fakeStore{
		searchErr: docstore.ErrUnavailable,
		scanResults: []docstore.Document{
			{ID: "doc-1", Payload: docstore.Payload{Title: "vpn.txt", Text: "vpn access request"}},
		},
	}
	adapter := newTestAdapter(store)

	adapter.Search(context.Background(), "vpn access", ModeQuestion, 5)
	adapter.Search(context.Background(), "vpn request", ModeKeyword, 3)
	adapter.Search(context.Background(), "access", ModeKeyword, 3)

	assert.Equal(t, 1, store.scanCalls)
}

func TestSearchEverythingDown(t *testing.T) {
	store := &fakeStore{
		searchErr: docstore.ErrUnavailable,
		scanErr:   docstore.ErrUnavailable,
	}
	adapter := newTestAdapter(store)

	candidates := adapter.Search(context.Background(), "anything", ModeQuestion, 5)

	assert.Empty(t, candidates)
}

func TestSearchEmptyVectorResultFallsBack(t *testing.T) {
	store := &fakeStore{
		searchResults: nil,
		scanResults: []docstore.Document{
			{ID: "doc-1", Payload: docstore.Payload{Title: "wifi.txt", Text: "guest wifi password rotation"}},
		},
	}
	adapter := newTestAdapter(store)

	candidates := adapter.Search(context.Background(), "guest wifi password", ModeQuestion, 5)

	require.Len(t, candidates, 1)
	assert.Equal(t, "doc-1", candidates[0].ID)
	assert.Equal(t, 1, store.scanCalls)
}

func TestSearchNonPositiveLimit(t *testing.T) {
	adapter := newTestAdapter(&fakeStore{})
	assert.Nil(t, adapter.Search(context.Background(), "q", ModeQuestion, 0))
}
