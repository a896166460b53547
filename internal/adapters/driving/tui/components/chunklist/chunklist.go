// Package chunklist provides the chunk progress list component for the TUI.
package chunklist

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/styles"
)

// Status describes where a chunk is in the pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDeciding   Status = "deciding"
	StatusIndexed    Status = "indexed"
	StatusSkipped    Status = "skipped"
)

// Item is a single chunk row in the list.
type Item struct {
	Text     string
	Keywords string
	Status   Status
}

// ChunkList displays run progress as a navigable list of chunks.
type ChunkList struct {
	items    []Item
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// New creates a new chunk list component.
func New(s *styles.Styles) *ChunkList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ChunkList{
		items:    nil,
		selected: 0,
		styles:   s,
		width:    80,
		height:   10,
	}
}

// Init initialises the chunk list.
func (c *ChunkList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (c *ChunkList) Update(msg tea.Msg) (*ChunkList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			c.MoveUp()
		case tea.KeyDown:
			c.MoveDown()
		default:
			// Handle other keys
		}
		switch msg.String() {
		case "k":
			c.MoveUp()
		case "j":
			c.MoveDown()
		}
	}
	return c, nil
}

// View renders the chunk list.
func (c *ChunkList) View() string {
	if len(c.items) == 0 {
		return c.styles.Muted.Render("No chunks yet")
	}

	lines := make([]string, 0, len(c.items)*2+2)

	header := c.styles.Subtitle.Render(fmt.Sprintf("Chunks (%d)", len(c.items)))
	lines = append(lines, header, "")

	// Each item takes two lines, text plus keywords
	visibleCount := (c.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if c.selected >= visibleCount {
		start = c.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(c.items) {
		end = len(c.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, c.renderItem(i, &c.items[i]))
	}

	return strings.Join(lines, "\n")
}

// renderItem formats a single chunk with its status and keywords.
func (c *ChunkList) renderItem(index int, item *Item) string {
	indicator := "  "
	if index == c.selected {
		indicator = "> "
	}

	marker := c.statusMarker(item.Status)

	text := item.Text
	maxTextLen := c.width - 12
	if maxTextLen < 10 {
		maxTextLen = 10
	}
	if len(text) > maxTextLen {
		text = text[:maxTextLen-3] + "..."
	}

	var textLine string
	if index == c.selected {
		textLine = c.styles.Selected.Render(fmt.Sprintf("%s%s %s", indicator, marker, text))
	} else {
		textLine = c.styles.Normal.Render(fmt.Sprintf("%s%s %s", indicator, marker, text))
	}

	if item.Keywords == "" {
		return textLine
	}

	keywords := item.Keywords
	maxKwLen := c.width - 6
	if maxKwLen < 20 {
		maxKwLen = 20
	}
	if len(keywords) > maxKwLen {
		keywords = keywords[:maxKwLen-3] + "..."
	}

	return textLine + "\n" + c.styles.Keyword.Render("     "+keywords)
}

// statusMarker returns the coloured status indicator for a chunk.
func (c *ChunkList) statusMarker(status Status) string {
	switch status {
	case StatusProcessing:
		return c.styles.Muted.Render("[…]")
	case StatusDeciding:
		return c.styles.Warning.Render("[?]")
	case StatusIndexed:
		return c.styles.Success.Render("[+]")
	case StatusSkipped:
		return c.styles.Muted.Render("[-]")
	case StatusPending:
		return c.styles.Muted.Render("[ ]")
	}
	return c.styles.Muted.Render("[ ]")
}

// SetItems replaces the whole list.
func (c *ChunkList) SetItems(items []Item) {
	c.items = items
	c.selected = 0
}

// SetTexts initialises the list from chunk texts, all pending.
func (c *ChunkList) SetTexts(texts []string) {
	items := make([]Item, len(texts))
	for i, t := range texts {
		items[i] = Item{Text: t, Status: StatusPending}
	}
	c.SetItems(items)
}

// Items returns the current items.
func (c *ChunkList) Items() []Item {
	return c.items
}

// SetKeywords records the extracted keywords for one chunk.
func (c *ChunkList) SetKeywords(index int, keywords string) {
	if index >= 0 && index < len(c.items) {
		c.items[index].Keywords = keywords
	}
}

// SetStatus updates one chunk's status and moves the selection to it.
func (c *ChunkList) SetStatus(index int, status Status) {
	if index >= 0 && index < len(c.items) {
		c.items[index].Status = status
		c.selected = index
	}
}

// Selected returns the index of the selected chunk.
func (c *ChunkList) Selected() int {
	return c.selected
}

// SetSelected sets the selected index.
func (c *ChunkList) SetSelected(index int) {
	if index >= 0 && index < len(c.items) {
		c.selected = index
	}
}

// SelectedItem returns the currently selected chunk, or nil if none.
func (c *ChunkList) SelectedItem() *Item {
	if len(c.items) == 0 || c.selected < 0 || c.selected >= len(c.items) {
		return nil
	}
	return &c.items[c.selected]
}

// MoveUp moves selection up.
func (c *ChunkList) MoveUp() {
	if c.selected > 0 {
		c.selected--
	}
}

// MoveDown moves selection down.
func (c *ChunkList) MoveDown() {
	if c.selected < len(c.items)-1 {
		c.selected++
	}
}

// SetDimensions sets the component dimensions.
func (c *ChunkList) SetDimensions(width, height int) {
	c.width = width
	c.height = height
}

// Width returns the current width.
func (c *ChunkList) Width() int {
	return c.width
}

// Height returns the current height.
func (c *ChunkList) Height() int {
	return c.height
}

// Count returns the number of chunks.
func (c *ChunkList) Count() int {
	return len(c.items)
}

// IsEmpty returns whether the list is empty.
func (c *ChunkList) IsEmpty() bool {
	return len(c.items) == 0
}
