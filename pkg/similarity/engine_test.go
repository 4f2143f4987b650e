package similarity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textDoc string

func (d textDoc) SearchText() string { return string(d) }

func TestTokenize(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercase and split",
			text: "Vacation Policy Update",
			want: []string{"vacation", "policy", "update"},
		},
		{
			name: "special characters become spaces",
			text: "q3-results (final)!",
			want: []string{"q3", "results", "final"},
		},
		{
			name: "short tokens dropped",
			text: "a b report",
			want: []string{"report"},
		},
		{
			name: "korean stopwords dropped",
			text: "휴가 정책 은 이것",
			want: []string{"휴가", "정책"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Tokenize(tt.text))
		})
	}
}

func TestJaccard(t *testing.T) {
	e := NewEngine()

	assert.Equal(t, 1.0, e.Jaccard("", ""))
	assert.Equal(t, 0.0, e.Jaccard("vacation policy", ""))
	assert.Equal(t, 0.0, e.Jaccard("", "vacation policy"))
	assert.Equal(t, 1.0, e.Jaccard("vacation policy", "policy vacation"))

	// {vacation, policy} vs {vacation, request} -> 1 common of 3 total
	assert.InDelta(t, 1.0/3.0, e.Jaccard("vacation policy", "vacation request"), 1e-9)
}

func TestCosine(t *testing.T) {
	e := NewEngine()

	assert.Equal(t, 1.0, e.Cosine("", ""))
	assert.Equal(t, 0.0, e.Cosine("vacation policy", ""))
	assert.InDelta(t, 1.0, e.Cosine("vacation policy", "vacation policy"), 1e-9)

	// Disjoint vocabularies have zero dot product.
	assert.InDelta(t, 0.0, e.Cosine("vacation policy", "quarterly報"), 1e-9)
}

func TestCombinedIdentity(t *testing.T) {
	e := NewEngine()

	for _, text := range []string{"vacation policy", "연차 사용 규정 안내", "q3 sales report 2024"} {
		assert.InDelta(t, 1.0, e.Combined(text, text), 1e-9, "combined(a,a) should be 1 for %q", text)
	}
	assert.Equal(t, 0.0, e.Combined("vacation policy", ""))
}

func TestRank(t *testing.T) {
	e := NewEngine()

	docs := []Document{
		textDoc("vacation policy for full time employees"),
		textDoc("quarterly sales report"),
		textDoc("vacation request form"),
	}

	ranked := e.Rank("vacation policy", docs, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, docs[0], ranked[0].Document)
	assert.GreaterOrEqual(t, ranked[0].Similarity, ranked[1].Similarity)
}

func TestRankPreviewTruncation(t *testing.T) {
	e := NewEngine()

	long := ""
	for i := 0; i < 60; i++ {
		long += fmt.Sprintf("token%d ", i)
	}
	ranked := e.Rank("token1", []Document{textDoc(long)}, 1)
	require.Len(t, ranked, 1)
	assert.LessOrEqual(t, len([]rune(ranked[0].Preview)), previewLength+3)
	assert.Contains(t, ranked[0].Preview, "...")
}

func TestRankEmptyInputs(t *testing.T) {
	e := NewEngine()

	assert.Empty(t, e.Rank("anything", nil, 5))

	ranked := e.Rank("", []Document{textDoc("")}, 5)
	require.Len(t, ranked, 1)
	assert.Equal(t, 1.0, ranked[0].Similarity)
}
