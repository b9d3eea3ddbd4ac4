package models

import (
	"time"
)

// AIConfig holds the chat-completion settings shared by every LLM call in a run
type AIConfig struct {
	OpenAIKey   string        `validate:"required_unless=DryRun true"`
	BaseURL     string        `validate:"required,url"`
	Model       string        `validate:"required"`
	MaxTokens   int           `validate:"gt=0"`
	Temperature float64       `validate:"gte=0,lte=2"`
	Timeout     time.Duration `validate:"gte=0"`
	PromptsDir  string
	DryRun      bool
}

// DefaultAIConfig returns the settings the monthly report has always used
func DefaultAIConfig() AIConfig {
	return AIConfig{
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o",
		MaxTokens:   2000,
		Temperature: 0.25,
	}
}
