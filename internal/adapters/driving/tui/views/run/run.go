// Package run provides the live run progress view for the TUI.
package run

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/components/chunklist"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driving"
)

// View shows a run's live progress: the chunk list, a decision panel
// when the run suspends on a near-duplicate, and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *chunklist.ChunkList
	statusbar *status.Bar

	runID    string
	pending  *driving.PendingQuestion
	done     bool
	indexed  int
	skipped  int
	err      error
	width    int
	height   int
	ready    bool
}

// NewView creates a new run progress view.
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
		list:      chunklist.New(s),
		statusbar: status.NewBar(s, km),
		width:     80,
		height:    24,
		ready:     false,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the run view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RunEvent:
		v.ApplyEvent(msg.Event)
		return v, nil

	case messages.RunReturned:
		v.HandleReturn(msg.Handle, msg.Err)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Pending decision: y indexes, n skips.
	if v.pending != nil {
		if keymap.Matches(msg.String(), v.keymap.Yes) {
			return v.answer(domain.DecisionStore)
		}
		if keymap.Matches(msg.String(), v.keymap.No) {
			return v.answer("n")
		}
	}

	if keymap.Matches(msg.String(), v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewInput}
		}
	}
	if keymap.Matches(msg.String(), v.keymap.Quit) {
		return v, func() tea.Msg {
			return messages.Quit{}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// answer resolves the pending decision and hands it to the app.
func (v *View) answer(decision domain.Decision) (*View, tea.Cmd) {
	v.pending = nil
	v.statusbar.SetState(status.StateRunning)
	return v, func() tea.Msg {
		return messages.DecisionMade{Answer: decision}
	}
}

// ApplyEvent folds one engine event into the view state.
func (v *View) ApplyEvent(event domain.Event) {
	switch e := event.(type) {
	case domain.TextSplitEvent:
		texts := make([]string, len(e.Chunks))
		for i, c := range e.Chunks {
			texts[i] = c.Text
		}
		v.list.SetTexts(texts)
		v.statusbar.SetState(status.StateRunning)

	case domain.ChunkKeywordsEvent:
		v.list.SetKeywords(e.ChunkIndex, e.Chunk.Keywords)
		v.list.SetStatus(e.ChunkIndex, chunklist.StatusProcessing)

	case domain.SimilarChunkEvent:
		v.list.SetStatus(e.ChunkIndex, chunklist.StatusDeciding)
		v.statusbar.SetState(status.StateDeciding)

	case domain.ChunkResultEvent:
		switch e.Result {
		case domain.ResultIndexed:
			v.list.SetStatus(e.ChunkIndex, chunklist.StatusIndexed)
			v.indexed++
		case domain.ResultSkipped:
			v.list.SetStatus(e.ChunkIndex, chunklist.StatusSkipped)
			v.skipped++
		}

	case domain.RunCompletedEvent:
		if v.runID == "" {
			v.runID = e.RunID
		}
		v.done = true
		v.pending = nil
		v.statusbar.SetState(status.StateDone)
		v.statusbar.SetChunkCount(v.list.Count())
	}
}

// HandleReturn processes the outcome of a Start or Resume call.
func (v *View) HandleReturn(handle *driving.RunHandle, err error) {
	if err != nil {
		v.err = err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(err.Error())
		return
	}
	if handle == nil {
		return
	}

	v.runID = handle.RunID
	if handle.Suspended {
		v.pending = handle.Pending()
		v.statusbar.SetState(status.StateDeciding)
	}
}

// View renders the run view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	header := v.styles.Title.Render("Curator")
	if v.runID != "" {
		header += "  " + v.styles.Muted.Render("run "+v.runID)
	}
	sections = append(sections, header, "")

	sections = append(sections, v.list.View())

	if v.pending != nil {
		sections = append(sections, "", v.renderDecisionPanel())
	}

	if v.err != nil {
		sections = append(sections, "", v.styles.Error.Render("Error: "+v.err.Error()))
	}

	if v.done {
		summary := fmt.Sprintf("Run complete: %d indexed, %d skipped. Press esc for new text.", v.indexed, v.skipped)
		sections = append(sections, "", v.styles.Success.Render(summary))
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDecisionPanel renders the near-duplicate question.
func (v *View) renderDecisionPanel() string {
	lines := make([]string, 0, 6)

	lines = append(lines, v.styles.Warning.Render("Similar chunk already indexed"))
	lines = append(lines, v.styles.Normal.Render("New:      "+clip(v.pending.Chunk.Text, v.width-16)))
	lines = append(lines, v.styles.Muted.Render("Existing: "+clip(v.pending.Match.Text, v.width-16)))
	if v.pending.Match.Keywords != "" {
		lines = append(lines, v.styles.Keyword.Render("Keywords: "+clip(v.pending.Match.Keywords, v.width-16)))
	}
	lines = append(lines, "")
	lines = append(lines, v.styles.Normal.Render("Do you still want to index this chunk? (y/n)"))

	return v.styles.DecisionPanel.Render(strings.Join(lines, "\n"))
}

// clip truncates a string for single-line display.
func clip(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if maxLen < 10 {
		maxLen = 10
	}
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.list.SetDimensions(width, height-12)
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

// RunID returns the run this view is tracking.
func (v *View) RunID() string {
	return v.runID
}

// Pending returns the decision the view is waiting on, or nil.
func (v *View) Pending() *driving.PendingQuestion {
	return v.pending
}

// Done returns whether the run has completed.
func (v *View) Done() bool {
	return v.done
}

// Counts returns the indexed and skipped chunk totals.
func (v *View) Counts() (indexed, skipped int) {
	return v.indexed, v.skipped
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset clears the view for a new run.
func (v *View) Reset() {
	v.list.SetItems(nil)
	v.runID = ""
	v.pending = nil
	v.done = false
	v.indexed = 0
	v.skipped = 0
	v.err = nil
	v.statusbar.Clear()
}
