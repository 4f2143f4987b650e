package pipeline

// judgeFloor is the minimum score a candidate must reach regardless of how
// weak the pool is.
const judgeFloor = 0.1

// Judge decides whether retrieval quality is good enough for grounded answer
// generation. The threshold adapts to the pool: 70% of the mean positive
// score, never below the floor. An empty pool always fails.
func Judge(pool []PooledCandidate) bool {
	var sum float64
	var n int
	for _, c := range pool {
		if c.Score > 0 {
			sum += c.Score
			n++
		}
	}
	if n == 0 {
		return false
	}

	threshold := 0.7 * (sum / float64(n))
	if threshold < judgeFloor {
		threshold = judgeFloor
	}

	for _, c := range pool {
		if c.Score >= threshold {
			return true
		}
	}
	return false
}
