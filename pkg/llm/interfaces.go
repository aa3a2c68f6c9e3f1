// Package llm provides clients for the language model providers used to
// turn natural language questions into SQL.
package llm

import "context"

// Client is the interface query generation depends on. Use it for
// dependency injection to enable mocking in tests.
type Client interface {
	// Generate produces a completion for the prompt under the given
	// system message.
	Generate(ctx context.Context, systemMessage, prompt string) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Config holds the settings for creating a client.
type Config struct {
	Provider    string  // "openai", "deepseek", or "anthropic"
	Endpoint    string  // Base URL for OpenAI-compatible providers
	Model       string  // Model name
	APIKey      string
	Temperature float64 // Sampling temperature; SQL generation wants it low
}
