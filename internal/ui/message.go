package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/libget/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSnapshot MsgKind = iota
	MsgCommandDone
	MsgFeedClosed
)

// snapshotMsg is the constructor for [MsgSnapshot]
func snapshotMsg(snap models.PlayerSnapshot) Msg {
	return Msg{kind: MsgSnapshot, data: snap}
}

// commandDoneMsg is the constructor for [MsgCommandDone]. A nil err means the command succeeded.
func commandDoneMsg(op string, err error) Msg {
	return Msg{
		kind: MsgCommandDone,
		data: commandResult{op: op, err: err},
	}
}

// feedClosedMsg is the constructor for [MsgFeedClosed]
func feedClosedMsg() Msg {
	return Msg{kind: MsgFeedClosed}
}

type commandResult struct {
	op  string
	err error
}
