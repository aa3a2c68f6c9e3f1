package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureLimit_AppendsWhenAbsent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain select",
			input:    "SELECT * FROM t",
			expected: "SELECT * FROM t LIMIT 1000",
		},
		{
			name:     "select with where",
			input:    "SELECT id FROM users WHERE active = 1",
			expected: "SELECT id FROM users WHERE active = 1 LIMIT 1000",
		},
		{
			name:     "union without limit",
			input:    "SELECT id FROM a UNION SELECT id FROM b",
			expected: "SELECT id FROM a UNION SELECT id FROM b LIMIT 1000",
		},
		{
			name:     "limit in subquery does not bound the result",
			input:    "SELECT * FROM (SELECT id FROM t LIMIT 5) sub",
			expected: "SELECT * FROM (SELECT id FROM t LIMIT 5) sub LIMIT 1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EnsureLimit(tt.input, MaxRows))
		})
	}
}

func TestEnsureLimit_KeepsExistingLimit(t *testing.T) {
	tests := []string{
		"SELECT * FROM t LIMIT 10",
		"SELECT * FROM t LIMIT 10 OFFSET 5",
		"select * from t limit 10",
		"SELECT id FROM a UNION SELECT id FROM b LIMIT 50",
	}

	for _, input := range tests {
		assert.Equal(t, input, EnsureLimit(input, MaxRows), "input %q", input)
	}
}

func TestEnsureLimit_FallbackForUnparseableDialects(t *testing.T) {
	// PostgreSQL cast syntax is not structurally parseable; the textual
	// pattern takes over.
	withLimit := "SELECT id::text FROM users LIMIT 25"
	assert.Equal(t, withLimit, EnsureLimit(withLimit, MaxRows))

	without := "SELECT id::text FROM users"
	assert.Equal(t, "SELECT id::text FROM users LIMIT 1000", EnsureLimit(without, MaxRows))
}

func TestEnsureLimit_DefaultsCap(t *testing.T) {
	assert.Equal(t, "SELECT 1 LIMIT 1000", EnsureLimit("SELECT 1", 0))
	assert.Equal(t, "SELECT 1 LIMIT 50", EnsureLimit("SELECT 1", 50))
}
