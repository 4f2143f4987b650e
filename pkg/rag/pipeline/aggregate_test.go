package pipeline

import (
	"fmt"
	"testing"

	"ai-docchat-be/pkg/docstore"
	"ai-docchat-be/pkg/rag/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeCandidatesAggregatesScores(t *testing.T) {
	q1 := []retrieval.Candidate{{ID: "D1", Score: 0.5, Payload: docstore.Payload{Title: "first.txt"}}}
	q2 := []retrieval.Candidate{{ID: "D1", Score: 0.5, Payload: docstore.Payload{Title: "second.txt"}}}

	pool := MergeCandidates(q1, q2)

	require.Len(t, pool, 1)
	assert.Equal(t, "D1", pool[0].ID)
	assert.InDelta(t, 1.0, pool[0].Score, 1e-9)
	assert.Equal(t, "first.txt", pool[0].Payload.Title, "payload comes from the first occurrence")
}

func TestMergeCandidatesDropsNonPositive(t *testing.T) {
	pool := MergeCandidates([]retrieval.Candidate{
		{ID: "a", Score: 0.3},
		{ID: "b", Score: 0},
		{ID: "c", Score: -0.2},
	})

	require.Len(t, pool, 1)
	assert.Equal(t, "a", pool[0].ID)
}

func TestMergeCandidatesOrderIndependentScores(t *testing.T) {
	a := []retrieval.Candidate{{ID: "x", Score: 0.2}, {ID: "y", Score: 0.9}}
	b := []retrieval.Candidate{{ID: "z", Score: 0.4}, {ID: "y", Score: 0.1}}
	c := []retrieval.Candidate{{ID: "x", Score: 0.3}}

	p1 := MergeCandidates(a, b, c)
	p2 := MergeCandidates(c, b, a)

	toScores := func(pool []PooledCandidate) map[string]float64 {
		out := make(map[string]float64)
		for _, p := range pool {
			out[p.ID] = p.Score
		}
		return out
	}
	assert.Equal(t, toScores(p1), toScores(p2))
	assert.Equal(t, "y", p1[0].ID, "sorted descending by aggregated score")
}

func TestMergeCandidatesTruncates(t *testing.T) {
	var many []retrieval.Candidate
	for i := 0; i < 25; i++ {
		many = append(many, retrieval.Candidate{ID: fmt.Sprintf("doc-%d", i), Score: float64(i + 1)})
	}

	pool := MergeCandidates(many)

	require.Len(t, pool, poolMax)
	assert.Equal(t, "doc-24", pool[0].ID)
}
