package domain

// ChunkResult is the terminal disposition of a chunk.
type ChunkResult string

const (
	// ResultIndexed means the chunk was inserted into the similarity store.
	ResultIndexed ChunkResult = "Indexed"

	// ResultSkipped means a human declined to index the chunk.
	ResultSkipped ChunkResult = "Skipped"
)

// Chunk represents a self-contained passage of text extracted from a
// larger input, plus the keyword metadata derived for it.
type Chunk struct {
	// ID is the store-internal identity, assigned when the chunk is
	// accepted into a similarity store. Empty until then.
	ID string

	// Text is the verbatim extracted passage. Immutable after creation.
	Text string

	// Keywords is a short comma-separated keyword string. Initially
	// empty, set exactly once by keyword extraction.
	Keywords string

	// Result is the outcome tag, set exactly once after a final
	// decision. Nil while the chunk is still being processed.
	// Result is never set before Keywords.
	Result *ChunkResult
}

// NewChunk creates a chunk from keywords and text.
// Keywords defaults to empty for freshly segmented chunks.
func NewChunk(keywords, text string) Chunk {
	return Chunk{Text: text, Keywords: keywords}
}

// ChunkRecord is the stable structural view of a chunk used for
// transport across the suspension boundary. Checkpointed state is
// serialised through records, so rehydrated values arrive in this
// plain form and are normalised back to Chunk before use.
type ChunkRecord struct {
	// Text is the verbatim passage.
	Text string `json:"text"`

	// Keywords is the comma-separated keyword string.
	Keywords string `json:"keywords"`

	// Result is the outcome tag, omitted while undecided.
	Result *ChunkResult `json:"result,omitempty"`
}

// Record produces the structural view of the chunk.
func (c Chunk) Record() ChunkRecord {
	return ChunkRecord{
		Text:     c.Text,
		Keywords: c.Keywords,
		Result:   c.Result,
	}
}

// ChunkFromRecord normalises a structural record back to a Chunk.
// Every consumer of rehydrated state must go through this conversion
// rather than probing dynamic fields.
func ChunkFromRecord(r ChunkRecord) Chunk {
	return Chunk{
		Text:     r.Text,
		Keywords: r.Keywords,
		Result:   r.Result,
	}
}

// SetResult marks the chunk's terminal disposition.
func (c *Chunk) SetResult(r ChunkResult) {
	c.Result = &r
}
