// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDeciding State = "deciding"
	StateDone     State = "done"
	StateError    State = "error"
	StateHelp     State = "help"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	message    string
	chunkCount int
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles:     s,
		keymap:     km,
		state:      StateIdle,
		message:    "",
		chunkCount: 0,
		width:      80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is mostly passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	padding := s.width - leftLen - rightLen
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the left side of the status bar.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateRunning:
		return s.styles.Muted.Render("Processing...")
	case StateDeciding:
		return s.styles.Warning.Render("Similar chunk found - index it anyway?")
	case StateDone:
		if s.chunkCount > 0 {
			return s.styles.Success.Render(fmt.Sprintf("Done: %d chunks processed", s.chunkCount))
		}
		return s.styles.Success.Render("Done")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateHelp:
		return s.styles.Normal.Render("Help")
	case StateIdle:
		return s.styles.Muted.Render("Ready")
	}
	return s.styles.Muted.Render("Ready")
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding

	// Show different hints based on state
	switch s.state {
	case StateDeciding:
		bindings = s.keymap.DecisionHelp()
	case StateIdle:
		bindings = s.keymap.InputHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetChunkCount sets the processed chunk count.
func (s *Bar) SetChunkCount(count int) {
	s.chunkCount = count
}

// ChunkCount returns the current chunk count.
func (s *Bar) ChunkCount() int {
	return s.chunkCount
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateIdle
	s.message = ""
	s.chunkCount = 0
}
