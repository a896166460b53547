package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates empty, whitespace-only or placeholder
	// input reached the segmenter. Fatal to the run before any state
	// is created.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownRun indicates a run identity with no checkpointed state.
	ErrUnknownRun = errors.New("unknown run")

	// ErrNoPendingDecision indicates resume was called on a run that is
	// not currently suspended at a decision point.
	ErrNoPendingDecision = errors.New("no pending decision")

	// ErrRunInProgress indicates the run is being driven by another
	// caller right now.
	ErrRunInProgress = errors.New("run in progress")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Segmentation and keyword extraction require it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. The vector similarity store requires it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// Step identifies the pipeline step at which a run-level failure occurred.
type Step string

const (
	// StepSegment is the text segmentation call.
	StepSegment Step = "segment"

	// StepExtract is the keyword extraction call.
	StepExtract Step = "extract"

	// StepStore is a similarity store lookup or insert.
	StepStore Step = "store"
)

// StepError is a run-level failure from an outbound call during a run.
// It carries the cursor position at which the failure occurred so a
// caller may choose to retry the whole run. The engine does not retry,
// and chunks already committed to the similarity store stay committed.
type StepError struct {
	// Step is the pipeline step that failed.
	Step Step

	// ChunkIndex is the cursor position at failure, -1 before iteration.
	ChunkIndex int

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.ChunkIndex < 0 {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s (chunk %d): %v", e.Step, e.ChunkIndex, e.Err)
}

// Unwrap returns the underlying failure.
func (e *StepError) Unwrap() error {
	return e.Err
}
