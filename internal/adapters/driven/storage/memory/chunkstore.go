package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.SimilarityStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.SimilarityStore
// using exact text+keywords equality as its match criterion. It needs
// no embedding service, which makes it the store of choice for tests.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
}

// NewChunkStore creates a new in-memory similarity store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{}
}

// FindSimilar returns the first stored chunk whose text and keywords
// both equal the probe's, or nil when there is none.
func (s *ChunkStore) FindSimilar(_ context.Context, chunk domain.Chunk) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.chunks {
		if s.chunks[i].Text == chunk.Text && s.chunks[i].Keywords == chunk.Keywords {
			match := s.chunks[i]
			return &match, nil
		}
	}
	return nil, nil
}

// Add inserts the chunk and assigns a store-internal identity.
// Duplicate inserts of equal text are allowed.
func (s *ChunkStore) Add(_ context.Context, chunk domain.Chunk) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk.ID = uuid.New().String()
	chunk.Result = nil
	s.chunks = append(s.chunks, chunk)
	return chunk.ID, nil
}

// Size returns the number of stored chunks.
func (s *ChunkStore) Size(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Close releases resources.
func (s *ChunkStore) Close() error {
	return nil
}
