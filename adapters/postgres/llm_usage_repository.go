package postgres

import (
	"context"
	"database/sql"
	"errors"

	"kpireport/models"
	"kpireport/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const llmUsageSchema = `
CREATE TABLE IF NOT EXISTS llm_usage (
	id                UUID PRIMARY KEY,
	run_id            UUID NOT NULL,
	provider          TEXT NOT NULL,
	model             TEXT NOT NULL,
	operation_type    TEXT NOT NULL,
	area              TEXT NOT NULL DEFAULT '',
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens      INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS llm_usage_run_id_idx ON llm_usage (run_id);
`

// LLMUsageRepositoryImpl implements LLMUsageRepository for PostgreSQL
type LLMUsageRepositoryImpl struct {
	db *sqlx.DB
}

// NewLLMUsageRepository creates a new PostgreSQL LLM usage repository
func NewLLMUsageRepository(db *sqlx.DB) ports.LLMUsageRepository {
	return &LLMUsageRepositoryImpl{db: db}
}

// EnsureLLMUsageSchema creates the usage table when it does not exist yet
func EnsureLLMUsageSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, llmUsageSchema)
	return err
}

// RecordUsage records LLM usage for an API call
func (r *LLMUsageRepositoryImpl) RecordUsage(ctx context.Context, usage *models.LLMUsage) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_usage (
			id, run_id, provider, model, operation_type, area,
			prompt_tokens, completion_tokens, total_tokens, created_at
		) VALUES (
			:id, :run_id, :provider, :model, :operation_type, :area,
			:prompt_tokens, :completion_tokens, :total_tokens, :created_at
		)
	`, usage)
	return err
}

// GetRunSummary returns aggregated usage statistics for one run
func (r *LLMUsageRepositoryImpl) GetRunSummary(ctx context.Context, runID uuid.UUID) (*models.RunUsageSummary, error) {
	summary := &models.RunUsageSummary{RunID: runID}
	err := r.db.GetContext(ctx, summary, `
		SELECT
			run_id,
			COUNT(*) AS request_count,
			COALESCE(SUM(prompt_tokens), 0) AS prompt_tokens,
			COALESCE(SUM(completion_tokens), 0) AS completion_tokens,
			COALESCE(SUM(total_tokens), 0) AS total_tokens
		FROM llm_usage
		WHERE run_id = $1
		GROUP BY run_id
	`, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.RunUsageSummary{RunID: runID}, nil
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}
