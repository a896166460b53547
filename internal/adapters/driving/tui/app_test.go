package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	channelsink "github.com/custodia-labs/curator-cli/internal/adapters/driven/eventsink/channel"
	"github.com/custodia-labs/curator-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driving"
)

func newTestPorts() *Ports {
	return &Ports{
		Workflow: &MockWorkflowService{},
	}
}

func TestNewApp_Success(t *testing.T) {
	ports := newTestPorts()

	app, err := NewApp(ports)

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewInput, app.CurrentView())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	ports := &Ports{
		Workflow: nil,
	}

	app, err := NewApp(ports)

	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	result := app.WithContext(ctx)

	assert.Equal(t, app, result)
}

func TestApp_Init(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	cmd := app.Init()

	// Init returns a batch command
	assert.NotNil(t, cmd)
}

func TestApp_Update_WindowSize(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := tea.WindowSizeMsg{Width: 80, Height: 24}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_Update_KeyMsg_CtrlC(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := tea.KeyMsg{Type: tea.KeyCtrlC}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.NotNil(t, cmd)
}

func TestApp_Update_CharacterInput(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)

	for _, r := range "hello" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "hello", app.inputView.Text())
}

func TestApp_Update_StartRequested_SwitchesToRunView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)

	msg := messages.StartRequested{Text: "some text"}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.NotNil(t, cmd)
	assert.Equal(t, messages.ViewRun, app.CurrentView())
}

func TestApp_Update_StartRequested_CallsWorkflow(t *testing.T) {
	started := false
	ports := &Ports{
		Workflow: &MockWorkflowService{
			StartFunc: func(ctx context.Context, runID, text string) (*driving.RunHandle, error) {
				started = true
				assert.Empty(t, runID)
				assert.Equal(t, "some text", text)
				return &driving.RunHandle{RunID: "run-1", Completed: true}, nil
			},
		},
	}
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)

	_, cmd := app.Update(messages.StartRequested{Text: "some text"})

	require.NotNil(t, cmd)
	result := cmd()
	assert.True(t, started)

	returned, ok := result.(messages.RunReturned)
	require.True(t, ok)
	assert.Equal(t, "run-1", returned.Handle.RunID)
}

func TestApp_Update_RunReturned_TracksRunID(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)

	msg := messages.RunReturned{Handle: &driving.RunHandle{RunID: "run-7", Completed: true}}
	app.Update(msg)

	assert.Equal(t, "run-7", app.RunID())
}

func TestApp_Update_RunReturned_WithError(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)

	err := errors.New("segmentation failed")
	app.Update(messages.RunReturned{Err: err})

	assert.Error(t, app.Err())
}

func TestApp_Update_DecisionMade_ResumesRun(t *testing.T) {
	var resumedID string
	var resumedAnswer domain.Decision
	ports := &Ports{
		Workflow: &MockWorkflowService{
			ResumeFunc: func(
				ctx context.Context, runID string, answer domain.Decision,
			) (*driving.RunHandle, error) {
				resumedID = runID
				resumedAnswer = answer
				return &driving.RunHandle{RunID: runID, Completed: true}, nil
			},
		},
	}
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.RunReturned{Handle: &driving.RunHandle{RunID: "run-3", Suspended: true}})

	_, cmd := app.Update(messages.DecisionMade{Answer: domain.DecisionStore})

	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "run-3", resumedID)
	assert.Equal(t, domain.DecisionStore, resumedAnswer)
}

func TestApp_Update_RunEvent_ReArmsListener(t *testing.T) {
	sink := channelsink.NewSink(4)
	defer sink.Close()
	ports := &Ports{
		Workflow: &MockWorkflowService{},
		Sink:     sink,
	}
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.StartRequested{Text: "text"})

	msg := messages.RunEvent{Event: domain.TextSplitEvent{RunID: "r", ChunkCount: 1}}
	_, cmd := app.Update(msg)

	// A batch containing the next waitEvent command
	assert.NotNil(t, cmd)
}

func TestApp_Update_ViewChanged_ToInput_ClearsRun(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.RunReturned{Handle: &driving.RunHandle{RunID: "run-9", Completed: true}})

	app.Update(messages.ViewChanged{View: messages.ViewInput})

	assert.Equal(t, messages.ViewInput, app.CurrentView())
	assert.Empty(t, app.RunID())
}

func TestApp_Update_ErrorOccurred(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)

	err := errors.New("something went wrong")
	app.Update(messages.ErrorOccurred{Err: err})

	assert.Error(t, app.Err())
}

func TestApp_Update_Quit(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := messages.Quit{}
	_, cmd := app.Update(msg)

	assert.NotNil(t, cmd)
}

func TestApp_Update_HelpView_Escape(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.StartRequested{Text: "text"})
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, messages.ViewRun, app.CurrentView())
}

func TestApp_View_NotReady(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	view := app.View()

	assert.Contains(t, view, "Initialising")
}

func TestApp_View_InputView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)

	view := app.View()

	assert.Contains(t, view, "Curator")
	assert.Contains(t, view, "ctrl+s")
}

func TestApp_View_RunView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.StartRequested{Text: "text"})

	view := app.View()

	assert.Contains(t, view, "Curator")
}

func TestApp_View_HelpView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	view := app.View()

	assert.Contains(t, view, "Help")
	assert.Contains(t, view, "ctrl+s")
}

func TestApp_SetDimensions(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	assert.False(t, app.Ready())

	app.SetDimensions(100, 50)

	assert.True(t, app.Ready())
}

func TestApp_WaitEvent_ReceivesFromSink(t *testing.T) {
	sink := channelsink.NewSink(4)
	defer sink.Close()
	ports := &Ports{
		Workflow: &MockWorkflowService{},
		Sink:     sink,
	}
	app, _ := NewApp(ports)

	event := domain.TextSplitEvent{RunID: "r1", ChunkCount: 2}
	require.NoError(t, sink.Publish(context.Background(), event))

	cmd := app.waitEvent()
	require.NotNil(t, cmd)
	msg := cmd()

	runEvent, ok := msg.(messages.RunEvent)
	require.True(t, ok)
	assert.Equal(t, domain.EventTextSplit, runEvent.Event.Kind())
}

func TestApp_WaitEvent_NilSink(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	assert.Nil(t, app.waitEvent())
}
