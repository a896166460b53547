package driving

import (
	"context"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
)

// WorkflowService runs the chunk-processing workflow: segment input
// text, extract keywords per chunk, deduplicate against the similarity
// store, and suspend for a human decision when a near-duplicate is
// found.
type WorkflowService interface {
	// Start begins a new run over the given text. It drives the run
	// until it either completes or suspends at a decision point.
	// Returns domain.ErrInvalidInput for empty or placeholder text and
	// domain.ErrAlreadyExists if the run ID has checkpointed state.
	Start(ctx context.Context, runID, text string) (*RunHandle, error)

	// Resume supplies the pending decision for a suspended run and
	// drives it until the next suspension or completion.
	// Returns domain.ErrUnknownRun if no checkpoint exists for the ID
	// and domain.ErrNoPendingDecision if the run is not currently
	// suspended at a decision point. A second resume for an already
	// resolved decision is also ErrNoPendingDecision.
	Resume(ctx context.Context, runID string, answer domain.Decision) (*RunHandle, error)

	// Status reports the current state of a run.
	// Returns domain.ErrUnknownRun if no checkpoint exists.
	Status(ctx context.Context, runID string) (*RunHandle, error)

	// List returns handles for all checkpointed runs.
	List(ctx context.Context) ([]RunHandle, error)
}

// RunHandle is a snapshot of a run returned to callers. The state is a
// copy; mutating it does not affect the engine.
type RunHandle struct {
	// RunID is the stable run identity.
	RunID string

	// Suspended is true when the run is parked at a decision point
	// awaiting an answer.
	Suspended bool

	// Completed is true when the run finished processing every chunk.
	Completed bool

	// State is a snapshot of the run state.
	State *domain.RunState
}

// PendingQuestion describes the decision a suspended run is waiting on.
type PendingQuestion struct {
	// ChunkIndex is the cursor position of the chunk in question.
	ChunkIndex int

	// Chunk is the chunk under consideration.
	Chunk domain.ChunkRecord

	// Match is the stored chunk it resembles.
	Match domain.ChunkRecord
}

// Pending returns the decision question for a suspended run, or nil.
func (h *RunHandle) Pending() *PendingQuestion {
	if h == nil || !h.Suspended || h.State == nil || h.State.SimilarChunk == nil {
		return nil
	}
	current := h.State.CurrentChunk()
	if current == nil {
		return nil
	}
	return &PendingQuestion{
		ChunkIndex: h.State.Cursor,
		Chunk:      current.Record(),
		Match:      h.State.SimilarChunk.Record(),
	}
}
