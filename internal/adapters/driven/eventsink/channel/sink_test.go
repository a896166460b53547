package channel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
)

func TestSink_PublishAndReceive(t *testing.T) {
	sink := NewSink(4)
	defer sink.Close()

	events := []domain.Event{
		domain.TextSplitEvent{RunID: "run-1", ChunkCount: 2},
		domain.ChunkKeywordsEvent{RunID: "run-1", ChunkIndex: 0},
		domain.RunCompletedEvent{RunID: "run-1"},
	}

	for _, e := range events {
		require.NoError(t, sink.Publish(context.Background(), e))
	}

	for _, want := range events {
		got := <-sink.Events()
		assert.Equal(t, want.Kind(), got.Kind())
		assert.Equal(t, "run-1", got.Run())
	}
}

func TestSink_PreservesOrder(t *testing.T) {
	sink := NewSink(16)
	defer sink.Close()

	for i := 0; i < 10; i++ {
		err := sink.Publish(context.Background(), domain.ChunkKeywordsEvent{RunID: "run-1", ChunkIndex: i})
		require.NoError(t, err)
	}

	for i := 0; i < 10; i++ {
		got := <-sink.Events()
		kw, ok := got.(domain.ChunkKeywordsEvent)
		require.True(t, ok)
		assert.Equal(t, i, kw.ChunkIndex)
	}
}

func TestSink_PublishBlocksUntilReceived(t *testing.T) {
	sink := NewSink(0)
	defer sink.Close()

	done := make(chan error, 1)
	go func() {
		done <- sink.Publish(context.Background(), domain.RunCompletedEvent{RunID: "run-1"})
	}()

	select {
	case <-done:
		t.Fatal("publish returned before a receiver took the event")
	case <-time.After(20 * time.Millisecond):
	}

	<-sink.Events()
	require.NoError(t, <-done)
}

func TestSink_PublishHonoursContext(t *testing.T) {
	sink := NewSink(0)
	defer sink.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sink.Publish(ctx, domain.RunCompletedEvent{RunID: "run-1"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSink_PublishAfterClose(t *testing.T) {
	sink := NewSink(1)
	sink.Close()

	err := sink.Publish(context.Background(), domain.RunCompletedEvent{RunID: "run-1"})
	require.ErrorIs(t, err, ErrClosed)
}

func TestSink_CloseUnblocksPendingPublish(t *testing.T) {
	sink := NewSink(0)

	done := make(chan error, 1)
	go func() {
		done <- sink.Publish(context.Background(), domain.RunCompletedEvent{RunID: "run-1"})
	}()

	time.Sleep(20 * time.Millisecond)
	sink.Close()

	require.ErrorIs(t, <-done, ErrClosed)
}

func TestSink_CloseEndsRange(t *testing.T) {
	sink := NewSink(2)
	require.NoError(t, sink.Publish(context.Background(), domain.RunCompletedEvent{RunID: "run-1"}))
	sink.Close()

	count := 0
	for range sink.Events() {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestSink_CloseIsIdempotent(t *testing.T) {
	sink := NewSink(1)
	sink.Close()
	sink.Close()
}

func TestSink_Drain(t *testing.T) {
	sink := NewSink(4)
	defer sink.Close()

	require.NoError(t, sink.Publish(context.Background(), domain.RunCompletedEvent{RunID: "run-1"}))
	require.NoError(t, sink.Publish(context.Background(), domain.RunCompletedEvent{RunID: "run-1"}))

	sink.Drain()

	select {
	case e := <-sink.Events():
		t.Fatalf("expected empty channel, got %v", e.Kind())
	default:
	}
}
