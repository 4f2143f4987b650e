package serverutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type askPayload struct {
	Question string `validate:"required,max=2000"`
}

func TestValidateRequestPasses(t *testing.T) {
	err := ValidateRequest(askPayload{Question: "What is the vacation policy?"})
	assert.NoError(t, err)
}

func TestValidateRequestMissingRequiredField(t *testing.T) {
	err := ValidateRequest(askPayload{})
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "Question (required)")
	assert.Contains(t, verr.Error(), "validation failed")
}

func TestValidateRequestOverMaxLength(t *testing.T) {
	long := make([]byte, 2001)
	for i := range long {
		long[i] = 'a'
	}

	err := ValidateRequest(askPayload{Question: string(long)})
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "Question (max)")
}
