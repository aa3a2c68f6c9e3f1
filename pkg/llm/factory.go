package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NewClient creates a client for the configured provider. OpenAI and
// DeepSeek share the OpenAI-compatible client; Anthropic gets its own.
func NewClient(cfg *Config, logger *zap.Logger) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai", "deepseek":
		return NewOpenAIClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
