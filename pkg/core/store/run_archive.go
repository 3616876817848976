package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"strategic_finance/pkg/models"
)

// execer is the subset of *pgxpool.Pool the archive needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const createRunsTable = `
	CREATE TABLE IF NOT EXISTS model_runs (
		model_id          TEXT PRIMARY KEY,
		query             TEXT NOT NULL,
		horizon_months    INTEGER NOT NULL,
		resolver_source   TEXT NOT NULL,
		ending_mrr        NUMERIC NOT NULL,
		assumptions_json  JSONB NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL
	);
`

const insertRun = `
	INSERT INTO model_runs (model_id, query, horizon_months, resolver_source, ending_mrr, assumptions_json, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (model_id) DO NOTHING;
`

// RunArchive appends one row per generated model. It is a write-only audit
// log; model lookups never read from it.
type RunArchive struct {
	db execer
}

// NewRunArchive wraps a pool (or any execer, for tests).
func NewRunArchive(db execer) *RunArchive {
	return &RunArchive{db: db}
}

// EnsureSchema creates the model_runs table when missing.
func (a *RunArchive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("failed to create model_runs: %w", err)
	}
	return nil
}

// Record stores a summary row for model. Re-recording the same model is a no-op.
func (a *RunArchive) Record(ctx context.Context, model *models.FinancialModel) error {
	assumptionsJSON, err := json.Marshal(model.Assumptions)
	if err != nil {
		return fmt.Errorf("failed to marshal assumptions: %w", err)
	}

	endingMRR := 0.0
	if n := len(model.MonthlyProjections); n > 0 {
		endingMRR = model.MonthlyProjections[n-1].TotalRevenue
	}
	source := string(model.ResolverSource)
	if source == "" {
		source = "unknown"
	}

	_, err = a.db.Exec(ctx, insertRun,
		model.ModelID,
		model.Query,
		model.TimeHorizonMonths,
		source,
		endingMRR,
		assumptionsJSON,
		model.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive model %s: %w", model.ModelID, err)
	}
	return nil
}
