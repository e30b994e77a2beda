package config

import (
	"fmt"
	"strings"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks a full configuration
func (v *Validator) Validate(cfg *Config) error {
	if err := v.ValidateProvider(cfg.Model.Provider); err != nil {
		return err
	}
	if err := v.ValidateAPIKey(cfg.Model.APIKey, cfg.Model.Provider); err != nil {
		return err
	}
	if cfg.Model.Name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if cfg.Model.Temperature < 0 || cfg.Model.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1")
	}
	if cfg.Model.MaxTokens < 0 {
		return fmt.Errorf("max tokens cannot be negative")
	}
	if cfg.Agent.HistoryWindow <= 0 {
		return fmt.Errorf("history window must be positive")
	}
	if cfg.Retention.Enabled && cfg.Retention.MaxAgeDays <= 0 {
		return fmt.Errorf("retention max age must be positive")
	}
	return nil
}

// ValidateProvider validates a model provider name
func (v *Validator) ValidateProvider(provider string) error {
	switch provider {
	case "anthropic", "openai":
		return nil
	default:
		return fmt.Errorf("unsupported provider: %s", provider)
	}
}

// ValidateAPIKey validates an API key format
func (v *Validator) ValidateAPIKey(key string, provider string) error {
	if key == "" {
		return fmt.Errorf("%s API key cannot be empty", provider)
	}

	switch provider {
	case "anthropic":
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case "openai":
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	}

	return nil
}
