package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Phase identifies the workflow state machine position.
type Phase string

const (
	// PhaseSplit segments the input text into chunks. Runs once.
	PhaseSplit Phase = "split"

	// PhaseIterate advances the cursor, extracts keywords and queries
	// the similarity store for the current chunk.
	PhaseIterate Phase = "iterate"

	// PhasePrompt awaits a human decision about a near-duplicate.
	// This is the only suspending phase.
	PhasePrompt Phase = "prompt"

	// PhaseStore inserts the current chunk into the similarity store.
	PhaseStore Phase = "store"

	// PhaseEndCheck clears the consumed answer and evaluates termination.
	PhaseEndCheck Phase = "endcheck"

	// PhaseDone is the terminal phase.
	PhaseDone Phase = "done"
)

// Decision is a human answer to a pending near-duplicate question.
type Decision string

// DecisionStore is the affirmative answer. Any other value is treated
// as skip: on ambiguous input the conservative choice is not to index.
const DecisionStore Decision = "y"

// ShouldStore reports whether the decision means "store anyway".
func (d Decision) ShouldStore() bool {
	return strings.EqualFold(strings.TrimSpace(string(d)), string(DecisionStore))
}

// RunState is the single piece of data carried across suspension
// boundaries for one workflow run. It is created at run start,
// checkpointed at every suspension point, and discarded on completion.
type RunState struct {
	// RunID is the stable identity scoping this state.
	RunID string

	// Text is the original input. Set once at start, never mutated.
	Text string

	// Chunks is the ordered chunk list, fixed-length once segmentation
	// completes. Elements are mutated in place (keywords then result).
	Chunks []Chunk

	// Cursor indexes into Chunks. Starts at -1 and increases by exactly
	// one per completed iteration. Never decreases.
	Cursor int

	// Phase is the state machine position to execute next.
	Phase Phase

	// SimilarChunk is the candidate match found for the chunk at Cursor.
	// Present only between the similarity check and the decision;
	// cleared once the decision is consumed.
	SimilarChunk *Chunk

	// Answer is the pending human decision. Present only while resuming
	// from suspension; cleared after being consumed.
	Answer *Decision

	// UpdatedAt is when the state was last checkpointed.
	UpdatedAt time.Time
}

// NewRunState creates the initial state for a run.
func NewRunState(runID, text string) *RunState {
	return &RunState{
		RunID:  runID,
		Text:   text,
		Cursor: -1,
		Phase:  PhaseSplit,
	}
}

// CurrentChunk returns a pointer to the chunk at the cursor, or nil if
// the cursor is out of range.
func (s *RunState) CurrentChunk() *Chunk {
	if s.Cursor < 0 || s.Cursor >= len(s.Chunks) {
		return nil
	}
	return &s.Chunks[s.Cursor]
}

// Suspended reports whether the run is parked at a decision point.
func (s *RunState) Suspended() bool {
	return s.Phase == PhasePrompt && s.Answer == nil
}

// Clone returns a deep copy of the state. Handles returned to callers
// carry clones so the engine's own copy cannot be mutated externally.
func (s *RunState) Clone() *RunState {
	if s == nil {
		return nil
	}
	out := *s
	out.Chunks = make([]Chunk, len(s.Chunks))
	copy(out.Chunks, s.Chunks)
	for i := range out.Chunks {
		if s.Chunks[i].Result != nil {
			r := *s.Chunks[i].Result
			out.Chunks[i].Result = &r
		}
	}
	if s.SimilarChunk != nil {
		sc := *s.SimilarChunk
		out.SimilarChunk = &sc
	}
	if s.Answer != nil {
		a := *s.Answer
		out.Answer = &a
	}
	return &out
}

// runStateRecord is the serialised form of RunState. Chunks cross the
// checkpoint boundary as structural records.
type runStateRecord struct {
	RunID        string        `json:"run_id"`
	Text         string        `json:"text"`
	Chunks       []ChunkRecord `json:"chunks"`
	Cursor       int           `json:"cursor"`
	Phase        Phase         `json:"phase"`
	SimilarChunk *ChunkRecord  `json:"similar_chunk,omitempty"`
	Answer       *Decision     `json:"answer,omitempty"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// MarshalJSON serialises the state through structural chunk records.
func (s *RunState) MarshalJSON() ([]byte, error) {
	rec := runStateRecord{
		RunID:     s.RunID,
		Text:      s.Text,
		Chunks:    make([]ChunkRecord, len(s.Chunks)),
		Cursor:    s.Cursor,
		Phase:     s.Phase,
		Answer:    s.Answer,
		UpdatedAt: s.UpdatedAt,
	}
	for i, c := range s.Chunks {
		rec.Chunks[i] = c.Record()
	}
	if s.SimilarChunk != nil {
		sc := s.SimilarChunk.Record()
		rec.SimilarChunk = &sc
	}
	return json.Marshal(rec)
}

// UnmarshalJSON rehydrates the state, normalising every chunk record
// back to a typed Chunk at the read boundary.
func (s *RunState) UnmarshalJSON(data []byte) error {
	var rec runStateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	s.RunID = rec.RunID
	s.Text = rec.Text
	s.Cursor = rec.Cursor
	s.Phase = rec.Phase
	s.Answer = rec.Answer
	s.UpdatedAt = rec.UpdatedAt
	s.Chunks = make([]Chunk, len(rec.Chunks))
	for i, r := range rec.Chunks {
		s.Chunks[i] = ChunkFromRecord(r)
	}
	s.SimilarChunk = nil
	if rec.SimilarChunk != nil {
		sc := ChunkFromRecord(*rec.SimilarChunk)
		s.SimilarChunk = &sc
	}
	return nil
}
