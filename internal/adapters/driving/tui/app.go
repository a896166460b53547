package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/views/input"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/views/run"
	"github.com/custodia-labs/curator-cli/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings.
	keymap *keymap.KeyMap

	// inputView is the text entry view.
	inputView *input.View

	// runView is the live run progress view.
	runView *run.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// runID is the run currently driven by the TUI. Set from the first
	// RunReturned and reused for resumes.
	runID string

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		inputView:   input.NewView(s, km),
		runView:     run.NewView(s, km),
		currentView: messages.ViewInput,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("curator - Text Indexing"),
		a.inputView.Init(),
		a.waitEvent(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		// Forward to all views for proper sizing
		a.inputView.SetDimensions(msg.Width, msg.Height)
		a.runView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewInput:
			a.inputView, cmd = a.inputView.Update(msg)
			return a, cmd

		case messages.ViewRun:
			if msg.String() == "?" {
				a.currentView = messages.ViewHelp
				return a, nil
			}
			a.runView, cmd = a.runView.Update(msg)
			return a, cmd

		case messages.ViewHelp:
			// Esc from help goes back to the run view
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewRun
				return a, nil
			}
			return a, nil
		}
		return a, nil

	case messages.StartRequested:
		a.runView.Reset()
		a.currentView = messages.ViewRun
		return a, a.startRun(msg.Text)

	case messages.DecisionMade:
		return a, a.resumeRun(msg.Answer)

	case messages.RunEvent:
		a.runView, cmd = a.runView.Update(msg)
		// Re-arm the listener for the next event
		return a, tea.Batch(cmd, a.waitEvent())

	case messages.RunReturned:
		if msg.Err == nil && msg.Handle != nil {
			a.runID = msg.Handle.RunID
		}
		a.err = msg.Err
		a.runView, cmd = a.runView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewInput {
			a.inputView.Reset()
			a.runID = ""
			return a, a.inputView.Init()
		}
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewInput:
			a.inputView, cmd = a.inputView.Update(msg)
		case messages.ViewRun:
			a.runView, cmd = a.runView.Update(msg)
		case messages.ViewHelp:
			// Help view doesn't display errors
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to active view
	switch a.currentView {
	case messages.ViewInput:
		a.inputView, cmd = a.inputView.Update(msg)
	case messages.ViewRun:
		a.runView, cmd = a.runView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// startRun drives Start on a background command. Events stream in
// through waitEvent while this runs.
func (a *App) startRun(text string) tea.Cmd {
	return func() tea.Msg {
		handle, err := a.ports.Workflow.Start(a.ctx, "", text)
		return messages.RunReturned{Handle: handle, Err: err}
	}
}

// resumeRun supplies the pending decision for the current run.
func (a *App) resumeRun(answer domain.Decision) tea.Cmd {
	runID := a.runID
	return func() tea.Msg {
		handle, err := a.ports.Workflow.Resume(a.ctx, runID, answer)
		return messages.RunReturned{Handle: handle, Err: err}
	}
}

// waitEvent receives one engine event from the sink. The command is
// re-armed after each RunEvent so the stream keeps flowing.
func (a *App) waitEvent() tea.Cmd {
	if a.ports.Sink == nil {
		return nil
	}
	ch := a.ports.Sink.Events()
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return messages.RunEvent{Event: event}
	}
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewInput:
		return a.inputView.View()
	case messages.ViewRun:
		return a.runView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.inputView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Input:
  (type)      Enter or paste text
  ctrl+s      Process the text
  ctrl+c      Quit

Run:
  j/k, ↑/↓    Navigate chunks
  y           Index a near-duplicate chunk anyway
  n           Skip a near-duplicate chunk
  esc         Back to input
  q           Quit

[esc] back`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// RunID returns the run the TUI is currently driving.
func (a *App) RunID() string {
	return a.runID
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.inputView.SetDimensions(width, height)
	a.runView.SetDimensions(width, height)
}
