package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckParameterForInjection_CleanValues(t *testing.T) {
	clean := []any{
		"12345",
		"alice@example.com",
		42,
		true,
		3.14,
		nil,
		"plain search text",
	}

	for i, value := range clean {
		assert.Nil(t, CheckParameterForInjection(i, value), "value %v", value)
	}
}

func TestCheckParameterForInjection_DetectsInjection(t *testing.T) {
	result := CheckParameterForInjection(0, "'; DROP TABLE users--")
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Index)
	assert.NotEmpty(t, result.Fingerprint)
}

func TestCheckParameters(t *testing.T) {
	params := []any{
		"normal value",
		"1' OR '1'='1",
		100,
	}

	results := CheckParameters(params)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Index)
}

func TestCheckParameters_AllClean(t *testing.T) {
	assert.Empty(t, CheckParameters([]any{"a", 1, nil}))
	assert.Empty(t, CheckParameters(nil))
}
