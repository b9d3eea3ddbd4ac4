package models

import (
	"time"

	"github.com/google/uuid"
)

// Operation types recorded in the usage ledger
const (
	OperationAreaAnalysis     = "area_analysis"
	OperationExecutiveSummary = "executive_summary"
)

// LLMUsage represents a single LLM API call's token usage
type LLMUsage struct {
	ID               uuid.UUID `json:"id" db:"id"`
	RunID            uuid.UUID `json:"run_id" db:"run_id"`
	Provider         string    `json:"provider" db:"provider"`
	Model            string    `json:"model" db:"model"`
	OperationType    string    `json:"operation_type" db:"operation_type"`
	Area             string    `json:"area" db:"area"`
	PromptTokens     int       `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens" db:"total_tokens"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// UsageData represents raw usage data from LLM provider APIs
type UsageData struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// LLMResponse represents an LLM response with usage data
type LLMResponse struct {
	Content string
	Usage   *UsageData
}

// RunUsageSummary aggregates the token spend of a single run
type RunUsageSummary struct {
	RunID            uuid.UUID `db:"run_id"`
	RequestCount     int       `db:"request_count"`
	PromptTokens     int       `db:"prompt_tokens"`
	CompletionTokens int       `db:"completion_tokens"`
	TotalTokens      int       `db:"total_tokens"`
}
