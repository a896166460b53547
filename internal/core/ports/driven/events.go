package driven

import (
	"context"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
)

// EventSink receives progress events from the workflow engine.
// The engine is decoupled from any particular display layer: a terminal
// printer, a TUI and a test recorder all satisfy the same interface.
//
// Publish is called synchronously from the engine's driver loop, so
// implementations should return quickly or buffer internally.
type EventSink interface {
	// Publish delivers one event. Events for a single run arrive in
	// order, at most once per occurrence.
	Publish(ctx context.Context, event domain.Event) error
}

// EventSinkFunc adapts a plain function to the EventSink interface.
type EventSinkFunc func(ctx context.Context, event domain.Event) error

// Publish implements EventSink.
func (f EventSinkFunc) Publish(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}
