package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJudgeEmptyPool(t *testing.T) {
	assert.False(t, Judge(nil))
	assert.False(t, Judge([]PooledCandidate{}))
}

func TestJudgeUniformScores(t *testing.T) {
	// threshold = 0.7*s <= s, so a uniform positive pool always passes
	pool := []PooledCandidate{
		{ID: "a", Score: 0.4},
		{ID: "b", Score: 0.4},
		{ID: "c", Score: 0.4},
	}
	assert.True(t, Judge(pool))
}

func TestJudgeMixedScores(t *testing.T) {
	// mean = 0.5, threshold = 0.35, top candidate 0.8 passes
	pool := []PooledCandidate{
		{ID: "a", Score: 0.8},
		{ID: "b", Score: 0.2},
	}
	assert.True(t, Judge(pool))
}

func TestJudgeBelowFloor(t *testing.T) {
	// mean = 0.05, adaptive threshold 0.035 is clamped to the 0.1 floor
	pool := []PooledCandidate{
		{ID: "a", Score: 0.05},
		{ID: "b", Score: 0.05},
	}
	assert.False(t, Judge(pool))
}

func TestJudgeIgnoresNonPositive(t *testing.T) {
	pool := []PooledCandidate{
		{ID: "a", Score: 0},
		{ID: "b", Score: -1},
	}
	assert.False(t, Judge(pool))
}
