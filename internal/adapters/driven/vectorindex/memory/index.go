// Package memory provides an in-memory brute-force implementation of
// driven.VectorIndex. Cosine similarity over every stored vector is
// fine at the scale of a personal chunk index; the interface leaves
// room for an approximate nearest neighbour backend later.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory brute-force cosine similarity index.
type Index struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		vectors: make(map[string][]float32),
	}
}

// Add inserts a vector for the given chunk ID, replacing any existing
// vector under the same ID.
func (i *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("add vector %s: empty embedding", chunkID)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	i.vectors[chunkID] = vec
	return nil
}

// Delete removes a vector from the index.
func (i *Index) Delete(_ context.Context, chunkID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.vectors, chunkID)
	return nil
}

// Search finds the k nearest neighbours to the query vector by cosine
// similarity, best first.
func (i *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(i.vectors))
	for id, vec := range i.vectors {
		hits = append(hits, driven.VectorHit{
			ChunkID:    id,
			Similarity: cosine(query, vec),
		})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].ChunkID < hits[b].ChunkID // deterministic order for ties
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Size returns the number of indexed vectors.
func (i *Index) Size() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors)
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}

// cosine computes cosine similarity between two vectors. Vectors of
// mismatched length compare over the shorter prefix.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
