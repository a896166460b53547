// Package memory provides in-memory implementations of the storage
// ports. They satisfy the same interfaces as the persistent variants
// and back the test suites and ephemeral single-process runs.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
)

// Ensure RunStateStore implements the interface.
var _ driven.RunStateStore = (*RunStateStore)(nil)

// RunStateStore is an in-memory implementation of driven.RunStateStore.
type RunStateStore struct {
	mu     sync.RWMutex
	states map[string]*domain.RunState
}

// NewRunStateStore creates a new in-memory run state store.
func NewRunStateStore() *RunStateStore {
	return &RunStateStore{
		states: make(map[string]*domain.RunState),
	}
}

// Save stores or updates the checkpoint for a run.
func (s *RunStateStore) Save(_ context.Context, state *domain.RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.RunID] = state.Clone()
	return nil
}

// Get retrieves the checkpoint for a run.
func (s *RunStateStore) Get(_ context.Context, runID string) (*domain.RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return state.Clone(), nil
}

// List returns all checkpointed run states.
func (s *RunStateStore) List(_ context.Context) ([]domain.RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.RunState, 0, len(s.states))
	for _, state := range s.states {
		result = append(result, *state.Clone())
	}
	return result, nil
}

// Delete removes the checkpoint for a run.
func (s *RunStateStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, runID)
	return nil
}
