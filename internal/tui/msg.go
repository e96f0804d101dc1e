package tui

import (
	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/query"
)

// Msg is the sealed interface for all TUI messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgBoardLoaded is sent when the board columns are loaded.
type MsgBoardLoaded struct {
	Groups []query.Group
	Stats  query.Stats
}

func (MsgBoardLoaded) sealed() {}

// MsgDetailLoaded is sent when a task and its history are loaded.
type MsgDetailLoaded struct {
	Task       *domain.Task
	Activities []domain.Activity
	Overdue    bool
}

func (MsgDetailLoaded) sealed() {}

// MsgTaskChanged is sent when any task changes, from this board or elsewhere
// in the process.
type MsgTaskChanged struct {
	TaskID string
	Action domain.Action
}

func (MsgTaskChanged) sealed() {}

// MsgActionDone is sent when a board action completed.
type MsgActionDone struct {
	Notice   string
	Warnings []string
}

func (MsgActionDone) sealed() {}

// MsgError is sent when an error occurs.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}

// MsgClearNotice is sent to clear the notice line.
type MsgClearNotice struct{}

func (MsgClearNotice) sealed() {}
