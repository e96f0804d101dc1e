package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/whatstask/internal/domain"
)

// noticeTimeout is how long a notice stays on screen.
const noticeTimeout = 4 * time.Second

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateLayoutSizes()
		return m, nil

	case MsgBoardLoaded:
		m.groups = msg.Groups
		m.stats = msg.Stats
		if m.column >= len(m.groups) {
			m.column = 0
		}
		m.updateTaskList()
		return m, nil

	case MsgDetailLoaded:
		m.detail = &msg
		m.detailViewport.SetContent(m.detailContent())
		m.detailViewport.GotoTop()
		return m, nil

	case MsgTaskChanged:
		if m.mode == ModeDetail && m.detail != nil && m.detail.Task.ID == msg.TaskID {
			return m, tea.Batch(m.loadBoard(), m.loadDetail(msg.TaskID))
		}
		return m, m.loadBoard()

	case MsgActionDone:
		m.mode = ModeNormal
		m.noteAction = NoteNone
		m.err = nil
		m.notice = warningNotice(msg.Notice, msg.Warnings)
		m.titleInput.Reset()
		m.noteInput.Reset()
		return m, tea.Batch(m.loadBoard(), clearNoticeAfter(noticeTimeout))

	case MsgError:
		m.err = msg.Err
		if m.mode.IsInputMode() {
			m.mode = ModeNormal
			m.noteAction = NoteNone
		}
		if m.mode == ModeDetail && m.detail == nil {
			m.mode = ModeNormal
		}
		return m, nil

	case MsgClearNotice:
		m.notice = ""
		return m, nil
	}

	return m, nil
}

// clearNoticeAfter returns a command that clears the notice after d.
func clearNoticeAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return MsgClearNotice{}
	})
}

// handleKeyMsg dispatches key presses by mode.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeHelp:
		return m.handleHelpMode(msg)
	case ModeDetail:
		return m.handleDetailMode(msg)
	case ModeInputTitle:
		return m.handleInputTitleMode(msg)
	case ModeInputNote:
		return m.handleInputNoteMode(msg)
	case ModeNormal:
		return m.handleNormalMode(msg)
	}
	return m, nil
}

// handleNormalMode handles keys on the board.
func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadBoard()

	case key.Matches(msg, m.keys.PrevColumn):
		m.moveColumn(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextColumn):
		m.moveColumn(1)
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.mode = ModeInputTitle
		m.titleInput.Reset()
		return m, m.titleInput.Focus()
	}

	task := m.SelectedTask()
	if task == nil {
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Detail):
		m.mode = ModeDetail
		m.detail = nil
		return m, m.loadDetail(task.ID)

	case key.Matches(msg, m.keys.Accept):
		return m, m.acceptTask(task.ID)

	case key.Matches(msg, m.keys.Decline):
		return m, m.startNote(NoteDecline)

	case key.Matches(msg, m.keys.Comment):
		return m, m.startNote(NoteComment)

	case key.Matches(msg, m.keys.Delete):
		return m, m.startNote(NoteDelete)

	case key.Matches(msg, m.keys.Advance):
		target, ok := advanceTarget(task.Status)
		if !ok {
			m.err = fmt.Errorf("%s tasks cannot move forward: %w", task.Status.Display(), domain.ErrInvalidTransition)
			return m, nil
		}
		return m, m.changeStatus(task.ID, target)

	case key.Matches(msg, m.keys.Back):
		target, ok := backTarget(task.Status)
		if !ok {
			m.err = fmt.Errorf("%s tasks cannot move back: %w", task.Status.Display(), domain.ErrInvalidTransition)
			return m, nil
		}
		return m, m.changeStatus(task.ID, target)
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

// handleHelpMode closes the help overlay.
func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape, m.keys.Help, m.keys.Quit) {
		m.mode = ModeNormal
	}
	return m, nil
}

// handleDetailMode scrolls the detail view until it is closed.
func (m *Model) handleDetailMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape, m.keys.Quit) {
		m.mode = ModeNormal
		m.detail = nil
		return m, nil
	}
	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// handleInputTitleMode edits the title of a new task.
func (m *Model) handleInputTitleMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.titleInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		title := strings.TrimSpace(m.titleInput.Value())
		m.titleInput.Blur()
		if title == "" {
			m.mode = ModeNormal
			return m, nil
		}
		return m, m.createTask(title)
	}
	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

// handleInputNoteMode edits the text for the pending note action.
func (m *Model) handleInputNoteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.noteAction = NoteNone
		m.noteInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		text := strings.TrimSpace(m.noteInput.Value())
		m.noteInput.Blur()
		return m, m.submitNote(text)
	}
	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	return m, cmd
}

// startNote switches to note input for action.
func (m *Model) startNote(action NoteAction) tea.Cmd {
	m.mode = ModeInputNote
	m.noteAction = action
	m.noteInput.Reset()
	m.noteInput.Placeholder = action.String()
	return m.noteInput.Focus()
}

// submitNote runs the pending note action on the selected task.
func (m *Model) submitNote(text string) tea.Cmd {
	task := m.SelectedTask()
	action := m.noteAction
	if task == nil {
		m.mode = ModeNormal
		m.noteAction = NoteNone
		return nil
	}
	switch action {
	case NoteDecline:
		return m.declineTask(task.ID, text)
	case NoteDelete:
		return m.deleteTask(task.ID, text)
	case NoteComment:
		return m.commentTask(task.ID, text)
	case NoteNone:
	}
	m.mode = ModeNormal
	return nil
}

// moveColumn selects the neighbouring column, wrapping at both ends.
func (m *Model) moveColumn(delta int) {
	n := len(m.groups)
	if n == 0 {
		return
	}
	m.column = ((m.column+delta)%n + n) % n
	m.taskList.ResetSelected()
	m.updateTaskList()
}

// updateLayoutSizes resizes components after a window change.
func (m *Model) updateLayoutSizes() {
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	// header, tabs, notice and footer
	height := m.height - 10
	if height < 3 {
		height = 3
	}
	m.taskList.SetSize(width, height)
	m.detailViewport.Width = width
	m.detailViewport.Height = height
	m.titleInput.Width = width - 4
	m.noteInput.Width = width - 4 - len(NoteDelete.Prompt())
	if m.detail != nil {
		m.detailViewport.SetContent(m.detailContent())
	}
}
