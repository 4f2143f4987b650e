package pipeline

import (
	"sort"

	"ai-docchat-be/pkg/rag/retrieval"
)

// poolMax bounds the candidate pool after aggregation.
const poolMax = 10

// MergeCandidates folds raw per-query candidates into a deduplicated pool.
// Scores for the same document id are summed; zero and negative scores never
// contribute. The payload is captured from the first occurrence of an id.
// The pool is sorted descending by aggregated score and truncated to at most
// poolMax entries.
func MergeCandidates(lists ...[]retrieval.Candidate) []PooledCandidate {
	scores := make(map[string]float64)
	payloads := make(map[string]int) // id -> index into pool, keeps first payload
	pool := make([]PooledCandidate, 0)

	for _, list := range lists {
		for _, c := range list {
			if c.ID == "" || c.Score <= 0 {
				continue
			}
			if idx, seen := payloads[c.ID]; seen {
				scores[c.ID] += c.Score
				pool[idx].Score = scores[c.ID]
				continue
			}
			scores[c.ID] = c.Score
			payloads[c.ID] = len(pool)
			pool = append(pool, PooledCandidate{ID: c.ID, Score: c.Score, Payload: c.Payload})
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	if len(pool) > poolMax {
		pool = pool[:poolMax]
	}
	return pool
}
