package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Document is anything that can expose its searchable text to the engine.
type Document interface {
	SearchText() string
}

// RankedDocument pairs a document with its similarity against a query.
type RankedDocument struct {
	Document   Document
	Similarity float64
	// Preview is the matched text truncated for display. Cosmetic only.
	Preview string
}

const previewLength = 200

// Engine computes lexical similarity between two text blobs using a
// weighted combination of Jaccard (token sets) and cosine (term frequency)
// similarity. It is deterministic and holds no external state.
type Engine struct {
	stopwords map[string]struct{}
}

func NewEngine() *Engine {
	// Korean particles and common verbs that carry no search signal.
	words := []string{
		"은", "는", "이", "가", "을", "를", "에", "에서", "와", "과", "의", "로", "으로",
		"한", "하는", "하다", "있다", "없다", "그", "그것", "이것", "저것",
	}
	stopwords := make(map[string]struct{}, len(words))
	for _, w := range words {
		stopwords[w] = struct{}{}
	}
	return &Engine{stopwords: stopwords}
}

// Tokenize lower-cases the text, replaces every character outside the
// Hangul/Latin/digit allowlist with a space, splits on whitespace, and drops
// stopwords and tokens shorter than 2 runes.
func (e *Engine) Tokenize(text string) []string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if isAllowed(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(sb.String()) {
		if _, stop := e.stopwords[tok]; stop {
			continue
		}
		if utf8.RuneCountInString(tok) < 2 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
		return true
	case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		return true
	}
	return false
}

// Jaccard returns |intersection| / |union| over the token sets of both texts.
// Two empty sets are considered identical (1.0); exactly one empty set scores 0.
func (e *Engine) Jaccard(a, b string) float64 {
	setA := toSet(e.Tokenize(a))
	setB := toSet(e.Tokenize(b))

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// Cosine returns the cosine similarity of term-frequency vectors built over
// the union vocabulary of both texts.
func (e *Engine) Cosine(a, b string) float64 {
	tokensA := e.Tokenize(a)
	tokensB := e.Tokenize(b)

	tfA := termFrequencies(tokensA)
	tfB := termFrequencies(tokensB)

	vocabulary := make(map[string]struct{}, len(tfA)+len(tfB))
	for tok := range tfA {
		vocabulary[tok] = struct{}{}
	}
	for tok := range tfB {
		vocabulary[tok] = struct{}{}
	}

	if len(vocabulary) == 0 {
		return 1.0
	}

	var dot, magA, magB float64
	for tok := range vocabulary {
		fa := float64(tfA[tok])
		fb := float64(tfB[tok])
		dot += fa * fb
		magA += fa * fa
		magB += fb * fb
	}

	if magA == 0 || magB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Combined is the weighted blend used everywhere in the ranking path:
// 0.4 * Jaccard + 0.6 * Cosine.
func (e *Engine) Combined(a, b string) float64 {
	return e.Jaccard(a, b)*0.4 + e.Cosine(a, b)*0.6
}

// Rank scores every document against the query with Combined and returns the
// topK best matches in descending similarity order.
func (e *Engine) Rank(query string, documents []Document, topK int) []RankedDocument {
	results := make([]RankedDocument, 0, len(documents))
	for _, doc := range documents {
		text := doc.SearchText()
		results = append(results, RankedDocument{
			Document:   doc,
			Similarity: e.Combined(query, text),
			Preview:    truncatePreview(text),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func termFrequencies(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	return tf
}

func truncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}
