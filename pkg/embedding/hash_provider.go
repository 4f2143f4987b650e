package embedding

import (
	"crypto/md5"
	"encoding/binary"
)

// HashProvider derives a deterministic 4-dimensional vector from the MD5
// digest of the text. The vector carries no semantic meaning; it exists so the
// store's similarity ordering is stable for identical queries, which is all
// the retrieval contract requires of the default deployment.
type HashProvider struct{}

// Dimension of the produced vectors; the document store column must match.
const HashDimension = 4

func NewHashProvider() EmbeddingProvider {
	return &HashProvider{}
}

func (p *HashProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	digest := md5.Sum([]byte(text))

	values := make([]float32, HashDimension)
	for i := 0; i < HashDimension; i++ {
		chunk := binary.BigEndian.Uint32(digest[i*4 : (i+1)*4])
		// Normalize each 4-byte chunk into [0, 1].
		values[i] = float32(float64(chunk) / float64(^uint32(0)))
	}

	return &EmbeddingResponse{Values: values}, nil
}

func (p *HashProvider) Dimension() int {
	return HashDimension
}
