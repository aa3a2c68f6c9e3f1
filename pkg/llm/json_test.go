package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "bare object",
			response: `{"sql": "SELECT 1", "explanation": "counts"}`,
			want:     `{"sql": "SELECT 1", "explanation": "counts"}`,
		},
		{
			name:     "markdown fenced",
			response: "```json\n{\"sql\": \"SELECT 1\"}\n```",
			want:     `{"sql": "SELECT 1"}`,
		},
		{
			name:     "surrounding prose",
			response: `Here is the query: {"sql": "SELECT 1"} Hope it helps!`,
			want:     `{"sql": "SELECT 1"}`,
		},
		{
			name:     "think tags stripped",
			response: "<think>reasoning here</think>{\"sql\": \"SELECT 1\"}",
			want:     `{"sql": "SELECT 1"}`,
		},
		{
			name:     "nested braces in strings",
			response: `{"sql": "SELECT '{\"a\": 1}' AS j", "explanation": "literal"}`,
			want:     `{"sql": "SELECT '{\"a\": 1}' AS j", "explanation": "literal"}`,
		},
		{
			name:     "array payload",
			response: `[1, 2, 3]`,
			want:     `[1, 2, 3]`,
		},
		{
			name:     "no JSON at all",
			response: "I cannot answer that.",
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONResponse(t *testing.T) {
	type generated struct {
		SQL         string `json:"sql"`
		Explanation string `json:"explanation"`
	}

	got, err := ParseJSONResponse[generated]("```json\n{\"sql\": \"SELECT 1\", \"explanation\": \"one\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", got.SQL)
	assert.Equal(t, "one", got.Explanation)

	_, err = ParseJSONResponse[generated]("not json")
	assert.Error(t, err)
}

func TestNewClientProviders(t *testing.T) {
	logger := zap.NewNop()

	c, err := NewClient(&Config{Provider: "deepseek", Endpoint: "https://api.deepseek.com/v1", Model: "deepseek-chat", APIKey: "k"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = NewClient(&Config{Provider: "anthropic", Model: "claude-sonnet-4-20250514", APIKey: "k"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, c)

	_, err = NewClient(&Config{Provider: "bard", Model: "x", APIKey: "k"}, logger)
	assert.Error(t, err)

	// missing credentials fail fast
	_, err = NewClient(&Config{Provider: "openai", Model: "gpt-4o"}, logger)
	assert.Error(t, err)
	_, err = NewClient(&Config{Provider: "openai", APIKey: "k"}, logger)
	assert.Error(t, err)
}
