package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashProviderDeterministic(t *testing.T) {
	p := NewHashProvider()

	a, err := p.Generate("vacation policy", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	b, err := p.Generate("vacation policy", "RETRIEVAL_QUERY")
	require.NoError(t, err)

	assert.Equal(t, a.Values, b.Values)
	assert.Len(t, a.Values, HashDimension)
}

func TestHashProviderRange(t *testing.T) {
	p := NewHashProvider()

	for _, text := range []string{"", "a", "연차 규정", "some much longer query text"} {
		res, err := p.Generate(text, "")
		require.NoError(t, err)
		for _, v := range res.Values {
			assert.GreaterOrEqual(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
		}
	}
}

func TestHashProviderDistinguishesInputs(t *testing.T) {
	p := NewHashProvider()

	a, _ := p.Generate("vacation policy", "")
	b, _ := p.Generate("quarterly report", "")
	assert.NotEqual(t, a.Values, b.Values)
}
