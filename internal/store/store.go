package store

import (
	"context"

	"github.com/help-global/caseflow/internal/model"
)

// Store is the run-history persistence interface. Runs are an audit trail
// only; the pipeline's durable case state lives in internal/state.
type Store interface {
	CreateRun(ctx context.Context) (*model.RunRecord, error)
	FinishRun(ctx context.Context, run *model.RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}
