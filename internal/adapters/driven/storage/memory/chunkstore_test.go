package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
)

func TestChunkStore_FindSimilar_Empty(t *testing.T) {
	store := NewChunkStore()

	match, err := store.FindSimilar(context.Background(), domain.NewChunk("Go", "Go is a language."))

	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestChunkStore_AddAndFind(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	chunk := domain.NewChunk("Go, Google", "Go was created at Google.")
	id, err := store.Add(ctx, chunk)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	match, err := store.FindSimilar(ctx, chunk)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, chunk.Text, match.Text)
	assert.Equal(t, chunk.Keywords, match.Keywords)
	assert.Equal(t, id, match.ID)
}

func TestChunkStore_FindSimilar_RequiresExactEquality(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	_, err := store.Add(ctx, domain.NewChunk("Go, Google", "Go was created at Google."))
	require.NoError(t, err)

	// Same text, different keywords: no match.
	match, err := store.FindSimilar(ctx, domain.NewChunk("Golang", "Go was created at Google."))
	require.NoError(t, err)
	assert.Nil(t, match)

	// Same keywords, different text: no match.
	match, err = store.FindSimilar(ctx, domain.NewChunk("Go, Google", "Go was created at Google in 2009."))
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestChunkStore_Add_DuplicatesAllowed(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	chunk := domain.NewChunk("Go", "Go is a language.")
	id1, err := store.Add(ctx, chunk)
	require.NoError(t, err)
	id2, err := store.Add(ctx, chunk)
	require.NoError(t, err)

	// Duplicate inserts of equal text get distinct identities.
	assert.NotEqual(t, id1, id2)

	size, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestChunkStore_Add_StripsResult(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	chunk := domain.NewChunk("Go", "Go is a language.")
	chunk.SetResult(domain.ResultIndexed)
	_, err := store.Add(ctx, chunk)
	require.NoError(t, err)

	// The result tag belongs to a run, not to the index.
	match, err := store.FindSimilar(ctx, domain.NewChunk("Go", "Go is a language."))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Nil(t, match.Result)
}

func TestChunkStore_Size(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	size, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	_, err = store.Add(ctx, domain.NewChunk("a", "first"))
	require.NoError(t, err)
	_, err = store.Add(ctx, domain.NewChunk("b", "second"))
	require.NoError(t, err)

	size, err = store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestChunkStore_Concurrency(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	numGoroutines := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			chunk := domain.NewChunk("kw", "text-"+string(rune('A'+id)))
			_, _ = store.Add(ctx, chunk)
			_, _ = store.FindSimilar(ctx, chunk)
		}(i)
	}
	wg.Wait()

	size, err := store.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, numGoroutines, size)
}
