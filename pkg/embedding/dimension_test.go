package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashProviderDimensionMatchesOutput(t *testing.T) {
	p := NewHashProvider()

	res, err := p.Generate("vacation policy", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	assert.Len(t, res.Values, p.Dimension())
	assert.Equal(t, HashDimension, p.Dimension())
}

func TestValidateDimensionAcceptsMatchingProvider(t *testing.T) {
	assert.NoError(t, ValidateDimension(NewHashProvider(), HashDimension))
}

func TestValidateDimensionRejectsMismatch(t *testing.T) {
	// An Ollama model like nomic-embed-text emits 768-wide vectors, which a
	// vector(4) column cannot hold. Startup must refuse the combination
	// instead of letting every insert and search fail at runtime.
	p := NewOllamaProvider("", "", 0)

	err := ValidateDimension(p, HashDimension)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "768")
	assert.Contains(t, err.Error(), "vector(4)")
}

func TestNewOllamaProviderDefaultsDimension(t *testing.T) {
	p := NewOllamaProvider("http://localhost:11434", "nomic-embed-text", 0)
	assert.Equal(t, 768, p.Dimension())

	custom := NewOllamaProvider("http://localhost:11434", "mxbai-embed-large", 1024)
	assert.Equal(t, 1024, custom.Dimension())
}
