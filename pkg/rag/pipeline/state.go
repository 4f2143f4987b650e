package pipeline

import "ai-docchat-be/pkg/docstore"

// Stage tags mirror the progress events the UI subscribes to.
const (
	StageInit     = "A"
	StageKeywords = "B"
	StageRetrieve = "C"
	StageRerank   = "D"
	StageAnswer   = "E"
)

// PooledCandidate is one deduplicated document in the candidate pool, its
// score aggregated across every retrieval query that returned it.
type PooledCandidate struct {
	ID      string
	Score   float64
	Payload docstore.Payload
}

// RankedResult extends a pooled candidate with the lexical relevance against
// the question and the combined rerank score.
type RankedResult struct {
	PooledCandidate
	Relevance float64
	Combined  float64
}

// Answer is the terminal artifact of one pipeline run.
type Answer struct {
	Text          string
	SupportingIDs []string
	Keywords      []string
	TopCandidate  *RankedResult
	ImageURL      string
	Mode          string
}

// State is the value threaded through the pipeline stages. Each stage
// consumes the previous state and fills in its own fields; no stage mutates
// a field owned by an earlier one.
type State struct {
	SessionID string
	Question  string
	Keywords  []string
	Pool      []PooledCandidate
	Ranked    []RankedResult
	Answer    *Answer
}
