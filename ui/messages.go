package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/dgnsrekt/frasi/internal/deck"
	"github.com/dgnsrekt/frasi/internal/speech"
)

// QuizToggledMsg is sent whenever quiz mode is switched on or off, from this
// window or from another frasi sharing the same storage.
type QuizToggledMsg struct {
	Enabled bool
}

type (
	errMsg struct{ err error }

	speechDoneMsg struct {
		text string
		err  error
	}

	gestureDoneMsg struct{ err error }

	// advanceMsg moves past an answered question. seq guards against
	// advancing a question that was already skipped.
	advanceMsg struct{ seq int }

	storeChangedMsg struct{}

	// statusMessageTimeoutMsg clears the status message numbered seq.
	statusMessageTimeoutMsg struct{ seq int }

	editorFinishedMsg struct{ err error }

	deckReloadedMsg struct {
		deck *deck.Deck
		err  error
	}
)

func (e errMsg) Error() string { return e.err.Error() }

// COMMANDS

func speakCmd(ctx context.Context, sp *speech.Speaker, text string) tea.Cmd {
	return func() tea.Msg {
		return speechDoneMsg{text: text, err: sp.Speak(ctx, text)}
	}
}

func gestureCmd(ctx context.Context, sp *speech.Speaker) tea.Cmd {
	return func() tea.Msg {
		return gestureDoneMsg{err: sp.Gesture(ctx)}
	}
}

func toggledCmd(enabled bool) tea.Cmd {
	return func() tea.Msg {
		return QuizToggledMsg{Enabled: enabled}
	}
}

func advanceCmd(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return advanceMsg{seq: seq}
	})
}

// waitForStoreChange blocks until the store reports a write.
func waitForStoreChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func statusMessageTimeoutCmd(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg{seq: seq}
	})
}

func openEditor(path string) tea.Cmd {
	cb := func(err error) tea.Msg {
		return editorFinishedMsg{err}
	}
	cmd, err := editor.Cmd("frasi", path)
	if err != nil {
		return func() tea.Msg { return cb(err) }
	}
	log.Info("opening editor", "file", path)
	return tea.ExecProcess(cmd, cb)
}

func reloadDeck(ctx context.Context, path string) tea.Cmd {
	return func() tea.Msg {
		d, err := deck.Load(ctx, path)
		return deckReloadedMsg{deck: d, err: err}
	}
}
