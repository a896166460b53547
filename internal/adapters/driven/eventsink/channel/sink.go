// Package channel provides an EventSink that forwards events over a Go
// channel. Display layers (the terminal printer, the TUI) range over the
// channel while the engine drives a run on another goroutine.
package channel

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.EventSink = (*Sink)(nil)

// ErrClosed is returned by Publish after the sink has been closed.
var ErrClosed = errors.New("event sink closed")

// Sink delivers workflow events over a buffered channel.
// Publish blocks when the buffer is full, which back-pressures the
// engine rather than dropping events.
type Sink struct {
	ch   chan domain.Event
	done chan struct{}

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// NewSink creates a sink with the given buffer size. A zero or negative
// size means unbuffered delivery.
func NewSink(buffer int) *Sink {
	if buffer < 0 {
		buffer = 0
	}
	return &Sink{
		ch:   make(chan domain.Event, buffer),
		done: make(chan struct{}),
	}
}

// Events returns the receive side of the sink. The channel is closed by
// Close once no more events will arrive.
func (s *Sink) Events() <-chan domain.Event {
	return s.ch
}

// Publish delivers one event, blocking until a receiver takes it, the
// sink is closed or the context is cancelled.
func (s *Sink) Publish(ctx context.Context, event domain.Event) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.pending.Add(1)
	s.mu.Unlock()
	defer s.pending.Done()

	select {
	case s.ch <- event:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the sink and closes the event channel. In-flight Publish
// calls are unblocked first so the channel is never closed under a
// pending send.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.pending.Wait()
	close(s.ch)
}

// Drain consumes and discards any buffered events. Useful when a caller
// aborts a run and only wants the channel emptied before Close.
func (s *Sink) Drain() {
	for {
		select {
		case _, ok := <-s.ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
