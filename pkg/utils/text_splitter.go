package utils

// SplitText cuts text into rune-safe chunks of roughly chunkSize characters
// with overlap characters repeated at each boundary to preserve context.
// Character-based on purpose: a tokenizer-aware splitter would tie this
// package to one embedding model.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	runes := []rune(text)
	total := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		// Overlap swallowed the whole window; fall back to disjoint chunks.
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < total; i += step {
		end := i + chunkSize
		if end > total {
			end = total
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == total {
			break
		}
	}

	return chunks
}
