package domain

// EventKind discriminates the event types emitted by a workflow run.
type EventKind string

const (
	// EventTextSplit is emitted once, right after segmentation.
	EventTextSplit EventKind = "text_split"

	// EventChunkKeywords is emitted once per chunk, after keyword
	// extraction and before any similarity or result event for it.
	EventChunkKeywords EventKind = "chunk_keywords"

	// EventSimilarChunk is emitted once per chunk that hits a match,
	// on first entry to the prompt phase only.
	EventSimilarChunk EventKind = "similar_chunk"

	// EventChunkResult is emitted once per chunk at terminal disposition.
	EventChunkResult EventKind = "chunk_result"

	// EventRunCompleted is emitted once, when the run is done.
	EventRunCompleted EventKind = "run_completed"
)

// Event is a progress notification emitted by the workflow engine.
// Events are ordered and emitted at most once per occurrence.
type Event interface {
	// Kind identifies the concrete event type.
	Kind() EventKind

	// Run returns the run ID the event belongs to.
	Run() string
}

// TextSplitEvent reports the outcome of segmentation. This is the only
// point at which an observer learns the total amount of work.
type TextSplitEvent struct {
	// RunID identifies the run.
	RunID string

	// ChunkCount is the number of chunks produced.
	ChunkCount int

	// Chunks is the full ordered chunk list.
	Chunks []ChunkRecord
}

func (e TextSplitEvent) Kind() EventKind { return EventTextSplit }
func (e TextSplitEvent) Run() string     { return e.RunID }

// ChunkKeywordsEvent reports that a chunk's keywords were extracted.
type ChunkKeywordsEvent struct {
	// RunID identifies the run.
	RunID string

	// ChunkIndex is the zero-based position of the chunk.
	ChunkIndex int

	// Chunk is the updated chunk.
	Chunk ChunkRecord
}

func (e ChunkKeywordsEvent) Kind() EventKind { return EventChunkKeywords }
func (e ChunkKeywordsEvent) Run() string     { return e.RunID }

// SimilarChunkEvent reports that a near-duplicate was found and the run
// is suspending for a human decision.
type SimilarChunkEvent struct {
	// RunID identifies the run.
	RunID string

	// ChunkIndex is the zero-based position of the current chunk.
	ChunkIndex int

	// Chunk is the current chunk under consideration.
	Chunk ChunkRecord

	// Match is the existing stored chunk it resembles.
	Match ChunkRecord
}

func (e SimilarChunkEvent) Kind() EventKind { return EventSimilarChunk }
func (e SimilarChunkEvent) Run() string     { return e.RunID }

// ChunkResultEvent reports a chunk's terminal disposition.
type ChunkResultEvent struct {
	// RunID identifies the run.
	RunID string

	// ChunkIndex is the zero-based position of the chunk.
	ChunkIndex int

	// Result is Indexed or Skipped.
	Result ChunkResult
}

func (e ChunkResultEvent) Kind() EventKind { return EventChunkResult }
func (e ChunkResultEvent) Run() string     { return e.RunID }

// RunCompletedEvent reports successful completion of a run.
type RunCompletedEvent struct {
	// RunID identifies the run.
	RunID string

	// State is the final run state. Every chunk carries a result.
	State *RunState
}

func (e RunCompletedEvent) Kind() EventKind { return EventRunCompleted }
func (e RunCompletedEvent) Run() string     { return e.RunID }
