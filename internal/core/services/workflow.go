package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driving"
	"github.com/custodia-labs/curator-cli/internal/logger"
)

// Ensure WorkflowEngine implements the interface.
var _ driving.WorkflowService = (*WorkflowEngine)(nil)

// placeholderText is the unedited template input some front-ends ship
// in their text box. It must never reach the model.
const placeholderText = "Enter your text here..."

// stepOutcome is the tagged result of one state machine transition.
// Suspension is a first-class return value checked by the driver loop,
// not a control-flow escape.
type stepOutcome int

const (
	// stepAdvance means the machine moved to the next phase.
	stepAdvance stepOutcome = iota

	// stepSuspend means the run must park for a human decision.
	stepSuspend

	// stepDone means the run reached the terminal phase.
	stepDone
)

// WorkflowEngine coordinates the chunk-processing pipeline. A single
// run is strictly sequential: keyword extraction for chunk N+1 never
// starts before chunk N's decision is resolved, because the similarity
// index accumulates state that must be visible to later chunks.
//
// Independent runs may execute concurrently. The only shared mutable
// state between them is the SimilarityStore.
type WorkflowEngine struct {
	llm   driven.LLMService
	store driven.SimilarityStore
	runs  driven.RunStateStore
	sink  driven.EventSink

	// In-flight guard: a run being driven by one caller rejects
	// concurrent Start/Resume calls for the same ID.
	mu     sync.Mutex
	active map[string]struct{}
}

// NewWorkflowEngine creates a workflow engine.
// The sink is optional; with a nil sink events are dropped.
func NewWorkflowEngine(
	llm driven.LLMService,
	store driven.SimilarityStore,
	runs driven.RunStateStore,
	sink driven.EventSink,
) *WorkflowEngine {
	return &WorkflowEngine{
		llm:    llm,
		store:  store,
		runs:   runs,
		sink:   sink,
		active: make(map[string]struct{}),
	}
}

// Start begins a new run and drives it until completion or suspension.
// An empty runID gets a generated identity.
func (e *WorkflowEngine) Start(ctx context.Context, runID, text string) (*driving.RunHandle, error) {
	if err := validateInput(text); err != nil {
		return nil, err
	}
	if e.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if runID == "" {
		runID = uuid.New().String()
	}

	if _, err := e.runs.Get(ctx, runID); err == nil {
		return nil, fmt.Errorf("run %s: %w", runID, domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check run state: %w", err)
	}

	if err := e.acquire(runID); err != nil {
		return nil, err
	}
	defer e.release(runID)

	logger.Info("Starting run %s", runID)
	state := domain.NewRunState(runID, text)
	return e.drive(ctx, state)
}

// Resume supplies the pending decision for a suspended run and drives
// it until the next suspension or completion.
func (e *WorkflowEngine) Resume(ctx context.Context, runID string, answer domain.Decision) (*driving.RunHandle, error) {
	if err := e.acquire(runID); err != nil {
		return nil, err
	}
	defer e.release(runID)

	state, err := e.loadState(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !state.Suspended() {
		return nil, fmt.Errorf("run %s: %w", runID, domain.ErrNoPendingDecision)
	}

	logger.Info("Resuming run %s with answer %q", runID, string(answer))
	state.Answer = &answer
	return e.drive(ctx, state)
}

// Status reports the current state of a run from its checkpoint.
func (e *WorkflowEngine) Status(ctx context.Context, runID string) (*driving.RunHandle, error) {
	state, err := e.loadState(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &driving.RunHandle{
		RunID:     runID,
		Suspended: state.Suspended(),
		State:     state,
	}, nil
}

// List returns handles for all checkpointed runs.
func (e *WorkflowEngine) List(ctx context.Context) ([]driving.RunHandle, error) {
	states, err := e.runs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	handles := make([]driving.RunHandle, len(states))
	for i := range states {
		state := states[i].Clone()
		handles[i] = driving.RunHandle{
			RunID:     state.RunID,
			Suspended: state.Suspended(),
			State:     state,
		}
	}
	return handles, nil
}

// drive executes state machine transitions until the run completes or
// suspends. The state is checkpointed at the suspension point with the
// pending similar chunk intact, and removed once the run is done.
func (e *WorkflowEngine) drive(ctx context.Context, state *domain.RunState) (*driving.RunHandle, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome, err := e.step(ctx, state)
		if err != nil {
			// The run is dead. Its checkpoint is removed so the run
			// identity can be reused for a full retry. Chunks already
			// committed to the similarity store stay committed.
			if derr := e.runs.Delete(ctx, state.RunID); derr != nil && !errors.Is(derr, domain.ErrNotFound) {
				logger.Warn("Failed to remove checkpoint for %s: %v", state.RunID, derr)
			}
			return nil, err
		}

		switch outcome {
		case stepAdvance:
			continue

		case stepSuspend:
			e.checkpoint(ctx, state)
			logger.Info("Run %s suspended at chunk %d", state.RunID, state.Cursor)
			return &driving.RunHandle{
				RunID:     state.RunID,
				Suspended: true,
				State:     state.Clone(),
			}, nil

		case stepDone:
			if err := e.runs.Delete(ctx, state.RunID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				logger.Warn("Failed to remove checkpoint for %s: %v", state.RunID, err)
			}
			e.emit(ctx, domain.RunCompletedEvent{RunID: state.RunID, State: state.Clone()})
			logger.Info("Run %s completed: %d chunks", state.RunID, len(state.Chunks))
			return &driving.RunHandle{
				RunID:     state.RunID,
				Completed: true,
				State:     state.Clone(),
			}, nil
		}
	}
}

// step executes exactly one state machine transition.
//
// Transitions: split -> iterate -> {store | prompt} -> endcheck -> {iterate | done}.
// Prompt is the only suspending phase.
func (e *WorkflowEngine) step(ctx context.Context, state *domain.RunState) (stepOutcome, error) {
	switch state.Phase {
	case domain.PhaseSplit:
		return e.stepSplit(ctx, state)
	case domain.PhaseIterate:
		return e.stepIterate(ctx, state)
	case domain.PhasePrompt:
		return e.stepPrompt(ctx, state)
	case domain.PhaseStore:
		return e.stepStore(ctx, state)
	case domain.PhaseEndCheck:
		return e.stepEndCheck(state)
	case domain.PhaseDone:
		return stepDone, nil
	default:
		return stepDone, fmt.Errorf("run %s: unknown phase %q", state.RunID, state.Phase)
	}
}

// stepSplit runs segmentation once and resets the cursor.
func (e *WorkflowEngine) stepSplit(ctx context.Context, state *domain.RunState) (stepOutcome, error) {
	units, err := e.llm.SegmentText(ctx, state.Text)
	if err != nil {
		return stepDone, &domain.StepError{Step: domain.StepSegment, ChunkIndex: -1, Err: err}
	}

	// If the model finds no natural break the whole input is one chunk.
	if len(units) == 0 {
		units = []string{strings.TrimSpace(state.Text)}
	}

	state.Chunks = make([]domain.Chunk, len(units))
	for i, unit := range units {
		state.Chunks[i] = domain.NewChunk("", unit)
	}
	state.Cursor = -1
	state.Phase = domain.PhaseIterate

	logger.Debug("Run %s: text split into %d chunks", state.RunID, len(state.Chunks))
	e.emit(ctx, domain.TextSplitEvent{
		RunID:      state.RunID,
		ChunkCount: len(state.Chunks),
		Chunks:     chunkRecords(state.Chunks),
	})
	return stepAdvance, nil
}

// stepIterate advances the cursor, extracts keywords for the current
// chunk and queries the similarity store with the keyworded chunk.
func (e *WorkflowEngine) stepIterate(ctx context.Context, state *domain.RunState) (stepOutcome, error) {
	state.Cursor++
	chunk := state.CurrentChunk()
	logger.Debug("Run %s: iterate %d/%d", state.RunID, state.Cursor+1, len(state.Chunks))

	keywords, err := e.llm.ExtractKeywords(ctx, chunk.Text)
	if err != nil {
		return stepDone, &domain.StepError{Step: domain.StepExtract, ChunkIndex: state.Cursor, Err: err}
	}
	chunk.Keywords = keywords

	match, err := e.store.FindSimilar(ctx, *chunk)
	if err != nil {
		return stepDone, &domain.StepError{Step: domain.StepStore, ChunkIndex: state.Cursor, Err: err}
	}

	e.emit(ctx, domain.ChunkKeywordsEvent{
		RunID:      state.RunID,
		ChunkIndex: state.Cursor,
		Chunk:      chunk.Record(),
	})

	if match == nil {
		state.Phase = domain.PhaseStore
	} else {
		state.SimilarChunk = match
		state.Phase = domain.PhasePrompt
	}
	return stepAdvance, nil
}

// stepPrompt is idempotently re-entrant. First entry for a cursor
// position (no answer) emits the decision request and suspends without
// forward progress. Re-entry after resume (answer present) skips the
// emit, clears the match and evaluates the decision. The same
// transition serves as both "ask" and "receive-answer", so resumption
// needs no separate wire protocol.
func (e *WorkflowEngine) stepPrompt(ctx context.Context, state *domain.RunState) (stepOutcome, error) {
	chunk := state.CurrentChunk()

	if state.Answer == nil {
		match := domain.Chunk{}
		if state.SimilarChunk != nil {
			match = *state.SimilarChunk
		}
		e.emit(ctx, domain.SimilarChunkEvent{
			RunID:      state.RunID,
			ChunkIndex: state.Cursor,
			Chunk:      chunk.Record(),
			Match:      match.Record(),
		})
		return stepSuspend, nil
	}

	answer := *state.Answer
	state.SimilarChunk = nil

	if answer.ShouldStore() {
		state.Phase = domain.PhaseStore
		return stepAdvance, nil
	}

	chunk.SetResult(domain.ResultSkipped)
	e.emit(ctx, domain.ChunkResultEvent{
		RunID:      state.RunID,
		ChunkIndex: state.Cursor,
		Result:     domain.ResultSkipped,
	})
	state.Phase = domain.PhaseEndCheck
	return stepAdvance, nil
}

// stepStore inserts the current chunk into the similarity store.
func (e *WorkflowEngine) stepStore(ctx context.Context, state *domain.RunState) (stepOutcome, error) {
	chunk := state.CurrentChunk()

	id, err := e.store.Add(ctx, *chunk)
	if err != nil {
		return stepDone, &domain.StepError{Step: domain.StepStore, ChunkIndex: state.Cursor, Err: err}
	}
	chunk.ID = id
	chunk.SetResult(domain.ResultIndexed)

	e.emit(ctx, domain.ChunkResultEvent{
		RunID:      state.RunID,
		ChunkIndex: state.Cursor,
		Result:     domain.ResultIndexed,
	})
	state.Phase = domain.PhaseEndCheck
	return stepAdvance, nil
}

// stepEndCheck clears the consumed answer and evaluates termination.
func (e *WorkflowEngine) stepEndCheck(state *domain.RunState) (stepOutcome, error) {
	state.Answer = nil
	if state.Cursor >= len(state.Chunks)-1 {
		state.Phase = domain.PhaseDone
		return stepDone, nil
	}
	state.Phase = domain.PhaseIterate
	return stepAdvance, nil
}

// loadState fetches and clones a checkpoint, translating ErrNotFound
// into ErrUnknownRun.
func (e *WorkflowEngine) loadState(ctx context.Context, runID string) (*domain.RunState, error) {
	state, err := e.runs.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("run %s: %w", runID, domain.ErrUnknownRun)
		}
		return nil, fmt.Errorf("load run state: %w", err)
	}
	return state.Clone(), nil
}

// checkpoint persists the run state. Checkpoint failures are logged
// rather than propagated: the in-memory run already holds the truth
// and the caller still gets its handle or step error.
func (e *WorkflowEngine) checkpoint(ctx context.Context, state *domain.RunState) {
	state.UpdatedAt = time.Now().UTC()
	if err := e.runs.Save(ctx, state); err != nil {
		logger.Warn("Failed to checkpoint run %s: %v", state.RunID, err)
	}
}

// emit publishes an event. Sink failures are logged, not propagated:
// the handle returned to the caller carries enough state to recover a
// missed decision prompt.
func (e *WorkflowEngine) emit(ctx context.Context, event domain.Event) {
	if e.sink == nil {
		return
	}
	if err := e.sink.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish %s event for run %s: %v", event.Kind(), event.Run(), err)
	}
}

// acquire marks a run as in-flight.
func (e *WorkflowEngine) acquire(runID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.active[runID]; busy {
		return fmt.Errorf("run %s: %w", runID, domain.ErrRunInProgress)
	}
	e.active[runID] = struct{}{}
	return nil
}

// release clears the in-flight mark.
func (e *WorkflowEngine) release(runID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, runID)
}

// validateInput rejects text that must never reach the model.
func validateInput(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fmt.Errorf("%w: text is empty", domain.ErrInvalidInput)
	}
	if trimmed == placeholderText {
		return fmt.Errorf("%w: text is the unedited placeholder", domain.ErrInvalidInput)
	}
	return nil
}

// chunkRecords converts chunks to their structural transport form.
func chunkRecords(chunks []domain.Chunk) []domain.ChunkRecord {
	records := make([]domain.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = c.Record()
	}
	return records
}
