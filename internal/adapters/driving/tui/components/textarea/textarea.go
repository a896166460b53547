// Package textarea provides the multi-line text entry component for the TUI.
package textarea

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/styles"
)

// TextArea wraps a bubbles textarea for entering the text to process.
type TextArea struct {
	textarea textarea.Model
	styles   *styles.Styles
	width    int
	height   int
}

// New creates a new text area component.
func New(s *styles.Styles) *TextArea {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ta := textarea.New()
	ta.Placeholder = "Enter your text here..."
	ta.Focus()
	ta.CharLimit = 0
	ta.SetWidth(70)
	ta.SetHeight(10)

	return &TextArea{
		textarea: ta,
		styles:   s,
		width:    70,
		height:   10,
	}
}

// Init initialises the text area.
func (t *TextArea) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles input messages.
func (t *TextArea) Update(msg tea.Msg) (*TextArea, tea.Cmd) {
	var cmd tea.Cmd
	t.textarea, cmd = t.textarea.Update(msg)
	return t, cmd
}

// View renders the text area.
func (t *TextArea) View() string {
	return t.styles.InputField.Render(t.textarea.View())
}

// Value returns the current text.
func (t *TextArea) Value() string {
	return t.textarea.Value()
}

// SetValue sets the text.
func (t *TextArea) SetValue(value string) {
	t.textarea.SetValue(value)
}

// Focus sets focus on the text area.
func (t *TextArea) Focus() tea.Cmd {
	return t.textarea.Focus()
}

// Blur removes focus from the text area.
func (t *TextArea) Blur() {
	t.textarea.Blur()
}

// Focused returns whether the text area is focused.
func (t *TextArea) Focused() bool {
	return t.textarea.Focused()
}

// SetDimensions sets the component dimensions.
func (t *TextArea) SetDimensions(width, height int) {
	t.width = width
	t.height = height

	taWidth := width - 4
	if taWidth < 20 {
		taWidth = 20
	}
	taHeight := height - 2
	if taHeight < 3 {
		taHeight = 3
	}
	t.textarea.SetWidth(taWidth)
	t.textarea.SetHeight(taHeight)
}

// Width returns the current width.
func (t *TextArea) Width() int {
	return t.width
}

// Height returns the current height.
func (t *TextArea) Height() int {
	return t.height
}

// Reset clears the text area.
func (t *TextArea) Reset() {
	t.textarea.Reset()
}
