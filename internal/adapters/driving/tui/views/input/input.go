// Package input provides the text entry view for the TUI.
package input

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/components/textarea"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/styles"
)

// View is the text entry view: a textarea plus a status bar. Submitting
// non-empty text emits a StartRequested message.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	textarea  *textarea.TextArea
	statusbar *status.Bar

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new text entry view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:    s,
		keymap:    km,
		textarea:  textarea.New(s),
		statusbar: status.NewBar(s, km),
		width:     80,
		height:    24,
		ready:     false,
		err:       nil,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.textarea.Init()
}

// Update handles messages for the input view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.textarea, cmd = v.textarea.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Ctrl+S submits; all other keys go to the textarea so that plain
	// letters like q or y stay typeable.
	if keymap.Matches(msg.String(), v.keymap.Submit) {
		text := v.textarea.Value()
		if text == "" {
			return v, nil
		}
		v.err = nil
		v.statusbar.SetState(status.StateRunning)
		return v, func() tea.Msg {
			return messages.StartRequested{Text: text}
		}
	}

	if msg.Type == tea.KeyCtrlC {
		return v, func() tea.Msg {
			return messages.Quit{}
		}
	}

	var cmd tea.Cmd
	v.textarea, cmd = v.textarea.Update(msg)
	return v, cmd
}

// View renders the input view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	header := v.styles.Title.Render("Curator")
	subtitle := v.styles.Muted.Render("Paste text to segment, keyword, and index. Press ctrl+s to process.")
	sections = append(sections, header, subtitle, "")

	sections = append(sections, v.textarea.View())

	if v.err != nil {
		sections = append(sections, "", v.styles.Error.Render("Error: "+v.err.Error()))
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.textarea.SetDimensions(width, height-8)
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Text returns the current textarea content.
func (v *View) Text() string {
	return v.textarea.Value()
}

// SetText sets the textarea content.
func (v *View) SetText(text string) {
	v.textarea.SetValue(text)
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset clears the view for a fresh entry.
func (v *View) Reset() {
	v.textarea.Reset()
	v.err = nil
	v.statusbar.Clear()
}
