package ports

import (
	"context"

	"kpireport/models"

	"github.com/google/uuid"
)

// Chat roles
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one message of a chat-completion conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single chat-completion call. Zero values for Model,
// Temperature and MaxTokens fall back to the client's configuration.
type ChatRequest struct {
	Model       string
	Temperature *float64
	MaxTokens   int
	Messages    []ChatMessage

	// RunID, Operation and Area label the call for the usage ledger
	RunID     uuid.UUID
	Operation string
	Area      string
}

// LLMClient interface for chat-completion providers
type LLMClient interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*models.LLMResponse, error)
}
