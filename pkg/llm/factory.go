package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/propense/feature-engine/pkg/config"
)

// NewFromConfig creates the configured LLM client. Anthropic is the default
// provider; "openai" selects any OpenAI-compatible endpoint.
func NewFromConfig(cfg *config.LLMConfig, logger *zap.Logger) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "anthropic", "":
		client, err := NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.BaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil
	case "openai":
		client, err := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
