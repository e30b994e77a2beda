package agent

import (
	"context"
	"fmt"

	"github.com/nadia/taskwise/internal/config"
)

// ModelProvider is an interface for model API providers
type ModelProvider interface {
	// Call makes a model API call
	Call(ctx context.Context, request ModelRequest) (*ModelResponse, error)

	// Provider returns the provider name
	Provider() string
}

// ModelRequest contains the request parameters for a model call
type ModelRequest struct {
	Model        string
	Messages     []Message
	Tools        []map[string]interface{}
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// ModelResponse contains the response from the model
type ModelResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *TokenUsage
}

// NewProvider creates a model provider from configuration
func NewProvider(cfg config.ModelConfig) (ModelProvider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
