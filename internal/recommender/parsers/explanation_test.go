package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractExplanation(t *testing.T) {
	explanation, parsed, err := ExtractExplanation(`{"explanation": "Great value for 1080p gaming."}`)
	require.NoError(t, err)
	assert.Equal(t, "Great value for 1080p gaming.", explanation)
	assert.NotNil(t, parsed)
}

func TestExtractExplanation_MissingField(t *testing.T) {
	_, parsed, err := ExtractExplanation(`{"reasoning": "wrong key"}`)
	require.ErrorIs(t, err, ErrExplanationMissing)
	assert.Equal(t, map[string]any{"reasoning": "wrong key"}, parsed)
}

func TestExtractExplanation_NonStringField(t *testing.T) {
	_, _, err := ExtractExplanation(`{"explanation": 42}`)
	require.ErrorIs(t, err, ErrExplanationMissing)
}

func TestExtractExplanation_InvalidJSON(t *testing.T) {
	_, parsed, err := ExtractExplanation(`plain prose, no JSON`)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExplanationMissing)
	assert.Nil(t, parsed)
}
