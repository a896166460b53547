// Package messages defines custom tea.Msg types for TUI communication.
package messages

import (
	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driving"
)

// ViewType identifies different views in the TUI.
type ViewType int

const (
	// ViewInput is the text entry view.
	ViewInput ViewType = iota

	// ViewRun is the live run progress view.
	ViewRun

	// ViewHelp is the help view.
	ViewHelp
)

// String returns the view name.
func (v ViewType) String() string {
	switch v {
	case ViewInput:
		return "input"
	case ViewRun:
		return "run"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged signals a view transition.
type ViewChanged struct {
	View ViewType
}

// StartRequested carries the text the user submitted for processing.
type StartRequested struct {
	Text string
}

// RunEvent wraps a single engine event received from the sink.
type RunEvent struct {
	Event domain.Event
}

// RunReturned signals that Start or Resume returned. When the run
// suspended, Handle carries the pending chunk and its match.
type RunReturned struct {
	Handle *driving.RunHandle
	Err    error
}

// DecisionMade carries the user's answer to a pending decision.
type DecisionMade struct {
	Answer domain.Decision
}

// ErrorOccurred signals an error to display.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
