package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main taskwise configuration
type Config struct {
	// Model provider
	Model ModelConfig `json:"model" mapstructure:"model"`

	// Agent behavior
	Agent AgentConfig `json:"agent" mapstructure:"agent"`

	// Database
	Database DatabaseConfig `json:"database" mapstructure:"database"`

	// Retention sweeper
	Retention RetentionConfig `json:"retention" mapstructure:"retention"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ModelConfig holds model provider configuration
type ModelConfig struct {
	Provider    string  `json:"provider" mapstructure:"provider"` // anthropic, openai
	APIKey      string  `json:"api_key" mapstructure:"api_key"`
	Name        string  `json:"name" mapstructure:"name"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries  int     `json:"max_retries" mapstructure:"max_retries"`
}

// AgentConfig holds agent behavior configuration
type AgentConfig struct {
	HistoryWindow int    `json:"history_window" mapstructure:"history_window"`
	SystemPrompt  string `json:"system_prompt" mapstructure:"system_prompt"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// RetentionConfig holds retention sweeper configuration
type RetentionConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
	Schedule   string `json:"schedule" mapstructure:"schedule"` // cron expression
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "anthropic",
			Name:        "claude-sonnet-4",
			Temperature: 0.7,
			MaxTokens:   4096,
			MaxRetries:  3,
		},
		Agent: AgentConfig{
			HistoryWindow: 50,
		},
		Retention: RetentionConfig{
			Enabled:    false,
			MaxAgeDays: 90,
			Schedule:   "0 3 * * *",
		},
		Logging: LoggingConfig{
			Level:     "info",
			Redaction: true,
		},
	}
}

// String returns a JSON representation with the API key masked
func (c *Config) String() string {
	masked := *c
	if masked.Model.APIKey != "" {
		masked.Model.APIKey = "***"
	}
	data, err := json.MarshalIndent(masked, "", "  ")
	if err != nil {
		return fmt.Sprintf("config marshal error: %v", err)
	}
	return string(data)
}
