package llm

import (
	"context"
	"time"

	"kpireport/internal"
	"kpireport/models"
	"kpireport/ports"

	"github.com/google/uuid"
)

// UsageRecordingClient records token usage of every successful call.
// Recording failures are logged and never fail the call.
type UsageRecordingClient struct {
	next   ports.LLMClient
	repo   ports.LLMUsageRepository
	logger *internal.Logger
}

// NewUsageRecordingClient wraps next so that usage lands in repo
func NewUsageRecordingClient(next ports.LLMClient, repo ports.LLMUsageRepository, logger *internal.Logger) *UsageRecordingClient {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &UsageRecordingClient{next: next, repo: repo, logger: logger.With("LLMUsage")}
}

func (c *UsageRecordingClient) ChatCompletion(ctx context.Context, req ports.ChatRequest) (*models.LLMResponse, error) {
	resp, err := c.next.ChatCompletion(ctx, req)
	if err != nil || resp == nil || resp.Usage == nil {
		return resp, err
	}

	usage := &models.LLMUsage{
		ID:               uuid.New(),
		RunID:            req.RunID,
		Provider:         resp.Usage.Provider,
		Model:            resp.Usage.Model,
		OperationType:    req.Operation,
		Area:             req.Area,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		CreatedAt:        time.Now().UTC(),
	}
	if recErr := c.repo.RecordUsage(ctx, usage); recErr != nil {
		c.logger.Warn("Failed to record usage for %s/%s: %v", req.Operation, req.Area, recErr)
	}
	return resp, nil
}
