package driven

import (
	"context"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
)

// RunStateStore persists workflow run state across suspension
// boundaries. The engine checkpoints the full RunState (including the
// pending similar chunk) at every suspension point and rehydrates it
// on resume, so state must survive process boundaries when the backing
// implementation is persistent.
type RunStateStore interface {
	// Save stores or updates the checkpoint for a run.
	Save(ctx context.Context, state *domain.RunState) error

	// Get retrieves the checkpoint for a run.
	// Returns domain.ErrNotFound if no checkpoint exists.
	Get(ctx context.Context, runID string) (*domain.RunState, error)

	// List returns all checkpointed run states.
	List(ctx context.Context) ([]domain.RunState, error)

	// Delete removes the checkpoint for a run.
	Delete(ctx context.Context, runID string) error
}
