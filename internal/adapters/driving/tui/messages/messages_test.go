package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curator-cli/internal/core/domain"
	"github.com/custodia-labs/curator-cli/internal/core/ports/driving"
)

func TestViewType_String(t *testing.T) {
	testCases := []struct {
		view ViewType
		want string
	}{
		{ViewInput, "input"},
		{ViewRun, "run"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.view.String())
		})
	}
}

func TestViewChanged(t *testing.T) {
	msg := ViewChanged{View: ViewRun}

	assert.Equal(t, ViewRun, msg.View)
}

func TestStartRequested(t *testing.T) {
	t.Run("with text", func(t *testing.T) {
		msg := StartRequested{Text: "some input text"}
		assert.Equal(t, "some input text", msg.Text)
	})

	t.Run("with empty text", func(t *testing.T) {
		msg := StartRequested{Text: ""}
		assert.Equal(t, "", msg.Text)
	})
}

func TestRunEvent(t *testing.T) {
	event := domain.TextSplitEvent{RunID: "run-1", ChunkCount: 3}
	msg := RunEvent{Event: event}

	require.NotNil(t, msg.Event)
	assert.Equal(t, domain.EventTextSplit, msg.Event.Kind())
	assert.Equal(t, "run-1", msg.Event.Run())
}

func TestRunReturned_Success(t *testing.T) {
	handle := &driving.RunHandle{RunID: "run-2", Completed: true}
	msg := RunReturned{Handle: handle, Err: nil}

	require.NotNil(t, msg.Handle)
	assert.Equal(t, "run-2", msg.Handle.RunID)
	assert.True(t, msg.Handle.Completed)
	assert.NoError(t, msg.Err)
}

func TestRunReturned_WithError(t *testing.T) {
	err := errors.New("segmentation failed")
	msg := RunReturned{Handle: nil, Err: err}

	assert.Nil(t, msg.Handle)
	assert.Error(t, msg.Err)
}

func TestDecisionMade(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		msg := DecisionMade{Answer: domain.DecisionStore}
		assert.Equal(t, domain.DecisionStore, msg.Answer)
	})

	t.Run("skip", func(t *testing.T) {
		msg := DecisionMade{Answer: "n"}
		assert.Equal(t, domain.Decision("n"), msg.Answer)
	})
}

func TestErrorOccurred(t *testing.T) {
	err := errors.New("something broke")
	msg := ErrorOccurred{Err: err}

	assert.Error(t, msg.Err)
	assert.Equal(t, "something broke", msg.Err.Error())
}

func TestQuit(t *testing.T) {
	msg := Quit{}

	assert.NotNil(t, msg)
}
