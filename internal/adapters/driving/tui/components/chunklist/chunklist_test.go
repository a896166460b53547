package chunklist

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/styles"
)

func newTestList(texts ...string) *ChunkList {
	list := New(styles.DefaultStyles())
	list.SetTexts(texts)
	return list
}

func TestNew(t *testing.T) {
	list := New(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.True(t, list.IsEmpty())
	assert.Zero(t, list.Count())
}

func TestNew_NilStyles(t *testing.T) {
	list := New(nil)

	require.NotNil(t, list)
}

func TestChunkList_SetTexts(t *testing.T) {
	list := newTestList("first chunk", "second chunk")

	assert.Equal(t, 2, list.Count())
	assert.Equal(t, "first chunk", list.Items()[0].Text)
	assert.Equal(t, StatusPending, list.Items()[0].Status)
	assert.Equal(t, 0, list.Selected())
}

func TestChunkList_SetKeywords(t *testing.T) {
	list := newTestList("first", "second")

	list.SetKeywords(1, "alpha, beta")

	assert.Equal(t, "alpha, beta", list.Items()[1].Keywords)
	assert.Empty(t, list.Items()[0].Keywords)
}

func TestChunkList_SetKeywords_OutOfBounds(t *testing.T) {
	list := newTestList("only")

	list.SetKeywords(5, "ignored")
	list.SetKeywords(-1, "ignored")

	assert.Empty(t, list.Items()[0].Keywords)
}

func TestChunkList_SetStatus(t *testing.T) {
	list := newTestList("first", "second", "third")

	list.SetStatus(1, StatusIndexed)

	assert.Equal(t, StatusIndexed, list.Items()[1].Status)
	// Selection follows the active chunk
	assert.Equal(t, 1, list.Selected())
}

func TestChunkList_SetStatus_OutOfBounds(t *testing.T) {
	list := newTestList("only")

	list.SetStatus(3, StatusSkipped)

	assert.Equal(t, StatusPending, list.Items()[0].Status)
	assert.Equal(t, 0, list.Selected())
}

func TestChunkList_Navigation(t *testing.T) {
	list := newTestList("a", "b", "c")

	list.MoveDown()
	assert.Equal(t, 1, list.Selected())

	list.MoveDown()
	list.MoveDown() // at boundary
	assert.Equal(t, 2, list.Selected())

	list.MoveUp()
	assert.Equal(t, 1, list.Selected())

	list.MoveUp()
	list.MoveUp() // at boundary
	assert.Equal(t, 0, list.Selected())
}

func TestChunkList_Update_Keys(t *testing.T) {
	list := newTestList("a", "b")

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, list.Selected())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 0, list.Selected())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, list.Selected())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, list.Selected())
}

func TestChunkList_SelectedItem(t *testing.T) {
	list := newTestList("first", "second")
	list.SetSelected(1)

	item := list.SelectedItem()

	require.NotNil(t, item)
	assert.Equal(t, "second", item.Text)
}

func TestChunkList_SelectedItem_Empty(t *testing.T) {
	list := New(nil)

	assert.Nil(t, list.SelectedItem())
}

func TestChunkList_SetSelected_OutOfBounds(t *testing.T) {
	list := newTestList("a", "b")

	list.SetSelected(10)
	assert.Equal(t, 0, list.Selected())

	list.SetSelected(-1)
	assert.Equal(t, 0, list.Selected())
}

func TestChunkList_View_Empty(t *testing.T) {
	list := New(nil)

	view := list.View()

	assert.Contains(t, view, "No chunks yet")
}

func TestChunkList_View_ShowsChunks(t *testing.T) {
	list := newTestList("the quick brown fox", "jumped over the lazy dog")
	list.SetDimensions(80, 20)
	list.SetKeywords(0, "fox, quick")

	view := list.View()

	assert.Contains(t, view, "Chunks (2)")
	assert.Contains(t, view, "the quick brown fox")
	assert.Contains(t, view, "fox, quick")
}

func TestChunkList_View_TruncatesLongText(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "word "
	}
	list := newTestList(long)
	list.SetDimensions(40, 20)

	view := list.View()

	assert.Contains(t, view, "...")
}

func TestChunkList_SetDimensions(t *testing.T) {
	list := New(nil)

	list.SetDimensions(100, 30)

	assert.Equal(t, 100, list.Width())
	assert.Equal(t, 30, list.Height())
}

func TestChunkList_Init(t *testing.T) {
	list := New(nil)

	assert.Nil(t, list.Init())
}
