package sqlite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "curator-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "curator-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations.
	store, err = NewStore(tempDir)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

// ==================== Run State Store Tests ====================

func TestRunStateStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	runs := store.RunStateStore()

	match := domain.NewChunk("Go", "Go is a language.")
	state := domain.NewRunState("run-1", "input text")
	state.Chunks = []domain.Chunk{domain.NewChunk("Go", "Go is a language!")}
	state.Cursor = 0
	state.Phase = domain.PhasePrompt
	state.SimilarChunk = &match
	state.UpdatedAt = time.Now().UTC()

	require.NoError(t, runs.Save(ctx, state))

	saved, err := runs.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", saved.RunID)
	assert.Equal(t, "input text", saved.Text)
	assert.Equal(t, 0, saved.Cursor)
	assert.Equal(t, domain.PhasePrompt, saved.Phase)

	// The pending decision survives the round trip.
	require.NotNil(t, saved.SimilarChunk)
	assert.Equal(t, "Go is a language.", saved.SimilarChunk.Text)
	assert.True(t, saved.Suspended())
}

func TestRunStateStore_Get_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	state, err := store.RunStateStore().Get(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, state)
}

func TestRunStateStore_Save_Update(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	runs := store.RunStateStore()

	state := domain.NewRunState("run-1", "text")
	require.NoError(t, runs.Save(ctx, state))

	state.Cursor = 3
	state.Phase = domain.PhaseIterate
	require.NoError(t, runs.Save(ctx, state))

	saved, err := runs.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, saved.Cursor)
	assert.Equal(t, domain.PhaseIterate, saved.Phase)
}

func TestRunStateStore_ListAndDelete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	runs := store.RunStateStore()
	require.NoError(t, runs.Save(ctx, domain.NewRunState("run-1", "a")))
	require.NoError(t, runs.Save(ctx, domain.NewRunState("run-2", "b")))

	states, err := runs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 2)

	require.NoError(t, runs.Delete(ctx, "run-1"))

	states, err = runs.List(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, "run-2", states[0].RunID)
}

func TestRunStateStore_ChunkResultsSurviveRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	runs := store.RunStateStore()

	state := domain.NewRunState("run-1", "text")
	state.Chunks = []domain.Chunk{
		domain.NewChunk("a", "first"),
		domain.NewChunk("b", "second"),
	}
	state.Chunks[0].SetResult(domain.ResultIndexed)
	state.Chunks[1].SetResult(domain.ResultSkipped)

	require.NoError(t, runs.Save(ctx, state))

	saved, err := runs.Get(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, saved.Chunks, 2)
	require.NotNil(t, saved.Chunks[0].Result)
	assert.Equal(t, domain.ResultIndexed, *saved.Chunks[0].Result)
	require.NotNil(t, saved.Chunks[1].Result)
	assert.Equal(t, domain.ResultSkipped, *saved.Chunks[1].Result)
}

// ==================== Chunk Store Tests ====================

func TestChunkStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	chunks := store.ChunkStore()

	stored := driven.StoredChunk{
		Chunk:     domain.Chunk{ID: "chunk-1", Text: "Go was created at Google.", Keywords: "Go, Google"},
		Embedding: []float32{0.1, -0.5, 0.75},
	}
	require.NoError(t, chunks.SaveChunk(ctx, stored))

	got, err := chunks.GetChunk(ctx, "chunk-1")
	require.NoError(t, err)
	assert.Equal(t, "Go was created at Google.", got.Chunk.Text)
	assert.Equal(t, "Go, Google", got.Chunk.Keywords)
	require.Len(t, got.Embedding, 3)
	assert.InDelta(t, 0.1, got.Embedding[0], 1e-6)
	assert.InDelta(t, -0.5, got.Embedding[1], 1e-6)
	assert.InDelta(t, 0.75, got.Embedding[2], 1e-6)
}

func TestChunkStore_SaveChunk_RequiresID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.ChunkStore().SaveChunk(context.Background(), driven.StoredChunk{
		Chunk: domain.NewChunk("kw", "text"),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChunkStore_GetChunk_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	chunk, err := store.ChunkStore().GetChunk(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, chunk)
}

func TestChunkStore_NilEmbedding(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	chunks := store.ChunkStore()
	require.NoError(t, chunks.SaveChunk(ctx, driven.StoredChunk{
		Chunk: domain.Chunk{ID: "chunk-1", Text: "no embedding"},
	}))

	got, err := chunks.GetChunk(ctx, "chunk-1")
	require.NoError(t, err)
	assert.Nil(t, got.Embedding)
}

func TestChunkStore_ListAndCount(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	chunks := store.ChunkStore()
	require.NoError(t, chunks.SaveChunk(ctx, driven.StoredChunk{
		Chunk: domain.Chunk{ID: "chunk-1", Text: "first"},
	}))
	require.NoError(t, chunks.SaveChunk(ctx, driven.StoredChunk{
		Chunk:     domain.Chunk{ID: "chunk-2", Text: "second"},
		Embedding: []float32{1, 0},
	}))

	all, err := chunks.ListChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := chunks.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// ==================== Embedding Codec Tests ====================

func TestEncodeDecodeEmbedding_RoundTrip(t *testing.T) {
	vec := []float32{0, 1, -1, 0.5, 3.14159}

	decoded := decodeEmbedding(encodeEmbedding(vec))

	require.Len(t, decoded, len(vec))
	for i := range vec {
		assert.InDelta(t, vec[i], decoded[i], 1e-6)
	}
}

func TestEncodeEmbedding_Empty(t *testing.T) {
	assert.Nil(t, encodeEmbedding(nil))
	assert.Nil(t, encodeEmbedding([]float32{}))
	assert.Nil(t, decodeEmbedding(nil))
}
