package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ToastLevel int

const (
	ToastSuccess ToastLevel = iota
	ToastError
)

// ShowToastMsg is emitted by sections; the root renders the toast.
type ShowToastMsg struct {
	Text  string
	Level ToastLevel
}

type toastExpiredMsg struct{ id int }

// Toast is the dismissable one-line notice at the bottom of the shell.
type Toast struct {
	text  string
	level ToastLevel
	id    int
	shown bool
}

func (t *Toast) Show(text string, level ToastLevel) tea.Cmd {
	t.id++
	t.text = text
	t.level = level
	t.shown = true
	id := t.id
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (t *Toast) Expire(msg toastExpiredMsg) {
	if msg.id == t.id {
		t.shown = false
	}
}

func (t *Toast) View() string {
	if !t.shown {
		return ""
	}
	if t.level == ToastError {
		return toastErrStyle.Render(t.text)
	}
	return toastOKStyle.Render(t.text)
}
