package ports

import (
	"context"

	"kpireport/models"

	"github.com/google/uuid"
)

// LLMUsageRepository defines the interface for LLM usage data operations
type LLMUsageRepository interface {
	// Record usage for an LLM call
	RecordUsage(ctx context.Context, usage *models.LLMUsage) error

	// Get aggregated usage for one run
	GetRunSummary(ctx context.Context, runID uuid.UUID) (*models.RunUsageSummary, error)
}
