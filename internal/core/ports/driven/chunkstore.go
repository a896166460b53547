package driven

import (
	"context"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
)

// StoredChunk pairs an accepted chunk with its embedding vector.
// The embedding may be nil when the chunk was stored without one.
type StoredChunk struct {
	// Chunk is the accepted chunk (ID, text, keywords).
	Chunk domain.Chunk

	// Embedding is the vector representation used for similarity search.
	Embedding []float32
}

// ChunkStore persists accepted chunks and their embeddings. It is the
// durable half of the vector-backed SimilarityStore: the vector index
// itself lives in memory and is rebuilt from this store at startup.
type ChunkStore interface {
	// SaveChunk stores an accepted chunk.
	SaveChunk(ctx context.Context, chunk StoredChunk) error

	// GetChunk retrieves a stored chunk by identity.
	// Returns domain.ErrNotFound if the chunk does not exist.
	GetChunk(ctx context.Context, id string) (*StoredChunk, error)

	// ListChunks returns all stored chunks.
	ListChunks(ctx context.Context) ([]StoredChunk, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}
