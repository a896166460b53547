// Package vector implements driven.SimilarityStore on top of an
// embedding service, a vector index, and a durable chunk store.
//
// The chunk store holds the durable rows; the vector index is an
// in-memory structure rebuilt from those rows at construction. Lookups
// embed the probe text, search the index for a bounded candidate
// window, and apply the similarity policy to the ranked hits.
package vector

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
	"github.com/custodia-labs/curator-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.SimilarityStore = (*Store)(nil)

// Store is a vector-backed similarity store.
type Store struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	chunks   driven.ChunkStore
	policy   driven.SimilarityPolicy
}

// NewStore creates a vector-backed similarity store and rebuilds the
// index from the chunk store's durable rows. Chunks persisted without
// an embedding are left out of the index; they remain listable but
// unreachable by similarity search.
func NewStore(ctx context.Context, embedder driven.EmbeddingService, index driven.VectorIndex, chunks driven.ChunkStore, policy driven.SimilarityPolicy) (*Store, error) {
	if policy.Threshold <= 0 || policy.CandidateWindow <= 0 {
		return nil, fmt.Errorf("creating similarity store: %w: threshold and candidate window must be positive", domain.ErrInvalidInput)
	}

	s := &Store{
		embedder: embedder,
		index:    index,
		chunks:   chunks,
		policy:   policy,
	}

	if err := s.rebuild(ctx); err != nil {
		return nil, fmt.Errorf("rebuilding vector index: %w", err)
	}
	return s, nil
}

// rebuild loads every persisted embedding into the vector index.
func (s *Store) rebuild(ctx context.Context) error {
	stored, err := s.chunks.ListChunks(ctx)
	if err != nil {
		return fmt.Errorf("listing chunks: %w", err)
	}

	indexed := 0
	for _, chunk := range stored {
		if len(chunk.Embedding) == 0 {
			logger.Warn("chunk %s has no embedding, excluded from similarity search", chunk.Chunk.ID)
			continue
		}
		if err := s.index.Add(ctx, chunk.Chunk.ID, chunk.Embedding); err != nil {
			return fmt.Errorf("indexing chunk %s: %w", chunk.Chunk.ID, err)
		}
		indexed++
	}

	logger.Debug("vector index rebuilt: %d of %d chunks indexed", indexed, len(stored))
	return nil
}

// FindSimilar embeds the chunk's text and returns the best stored
// chunk whose similarity clears the policy threshold, or nil when no
// candidate does.
func (s *Store) FindSimilar(ctx context.Context, chunk domain.Chunk) (*domain.Chunk, error) {
	query, err := s.embedder.Embed(ctx, chunk.Text)
	if err != nil {
		return nil, fmt.Errorf("embedding probe text: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := s.index.Search(ctx, query, s.policy.CandidateWindow)
	if err != nil {
		return nil, fmt.Errorf("searching vector index: %w", err)
	}

	for _, hit := range hits {
		if hit.Similarity < s.policy.Threshold {
			// Hits are ranked best first; everything after is worse.
			break
		}

		candidate, err := s.chunks.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Index entry outlived its row. Skip rather than fail the lookup.
				logger.Warn("indexed chunk %s missing from chunk store", hit.ChunkID)
				continue
			}
			return nil, fmt.Errorf("loading candidate %s: %w", hit.ChunkID, err)
		}

		if s.policy.MatchKeywords && candidate.Chunk.Keywords != chunk.Keywords {
			logger.Debug("candidate %s at %.3f rejected: keyword mismatch", hit.ChunkID, hit.Similarity)
			continue
		}

		logger.Debug("similar chunk found: %s at %.3f", hit.ChunkID, hit.Similarity)
		match := candidate.Chunk
		return &match, nil
	}

	return nil, nil
}

// Add embeds the chunk, persists it, and indexes the embedding.
func (s *Store) Add(ctx context.Context, chunk domain.Chunk) (string, error) {
	embedding, err := s.embedder.Embed(ctx, chunk.Text)
	if err != nil {
		return "", fmt.Errorf("embedding chunk text: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	id := chunk.ID
	if id == "" {
		id = uuid.New().String()
	}

	stored := driven.StoredChunk{
		Chunk: domain.Chunk{
			ID:       id,
			Text:     chunk.Text,
			Keywords: chunk.Keywords,
		},
		Embedding: embedding,
	}
	if err := s.chunks.SaveChunk(ctx, stored); err != nil {
		return "", fmt.Errorf("persisting chunk: %w", err)
	}

	// Persist first, index second: a crash between the two leaves a
	// durable row that the next rebuild picks up.
	if err := s.index.Add(ctx, id, embedding); err != nil {
		return "", fmt.Errorf("indexing chunk: %w", err)
	}

	return id, nil
}

// Size returns the number of persisted chunks.
func (s *Store) Size(ctx context.Context) (int, error) {
	return s.chunks.CountChunks(ctx)
}

// Close releases the index and the embedding service.
func (s *Store) Close() error {
	if err := s.index.Close(); err != nil {
		return fmt.Errorf("closing vector index: %w", err)
	}
	return s.embedder.Close()
}
