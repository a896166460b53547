// Package tui provides an interactive terminal user interface for curator.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	channelsink "github.com/custodia-labs/curator-cli/internal/adapters/driven/eventsink/channel"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driving"
)

// Ports aggregates everything the TUI needs from the core.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Workflow drives runs and answers pending decisions.
	Workflow driving.WorkflowService

	// Settings manages application settings.
	Settings driving.SettingsService

	// Sink is the engine's event sink. The TUI consumes its channel to
	// render live progress while a run executes.
	Sink *channelsink.Sink
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Workflow == nil {
		return ErrMissingWorkflowService
	}
	return nil
}
