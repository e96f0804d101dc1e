package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/query"
	"github.com/runoshun/whatstask/internal/usecase"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// Model is the main bubbletea model for the board.
type Model struct {
	// Dependencies (pointers first for alignment)
	container *app.Container
	err       error
	detail    *MsgDetailLoaded

	// State (slices - contain pointers)
	groups []query.Group

	// Components (structs with pointers)
	keys           KeyMap
	styles         Styles
	help           help.Model
	taskList       list.Model
	detailViewport viewport.Model

	// Input state (large structs)
	titleInput textinput.Model
	noteInput  textinput.Model

	stats  query.Stats
	actor  string
	notice string

	// Numeric state (smaller types last)
	mode       Mode
	noteAction NoteAction
	column     int
	width      int
	height     int
}

// New creates a new board Model acting as actor.
func New(c *app.Container, actor string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 200

	ni := textinput.New()
	ni.CharLimit = 500

	styles := DefaultStyles()
	delegate := newTaskDelegate(styles)
	taskList := list.New([]list.Item{}, delegate, 0, 0)
	taskList.SetShowTitle(false)
	taskList.SetShowStatusBar(false)
	taskList.SetShowHelp(false)
	taskList.SetShowPagination(false)
	taskList.SetFilteringEnabled(false)
	taskList.DisableQuitKeybindings()

	return &Model{
		container:  c,
		actor:      actor,
		mode:       ModeNormal,
		keys:       DefaultKeyMap(),
		styles:     styles,
		help:       help.New(),
		taskList:   taskList,
		titleInput: ti,
		noteInput:  ni,
	}
}

// Run starts the board and blocks until the user quits. Changes made by
// the board, or by anything else sharing the container's engine, refresh it.
func Run(c *app.Container, actor string) error {
	m := New(c, actor)
	p := tea.NewProgram(m, tea.WithAltScreen())

	unsubscribe := c.Engine.Events.OnTaskChanged(func(ch shared.TaskChange) {
		p.Send(MsgTaskChanged{TaskID: ch.Task.ID, Action: ch.Action})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}

// Init initializes the model and returns the initial command.
func (m *Model) Init() tea.Cmd {
	return m.loadBoard()
}

// loadBoard returns a command that loads the board columns.
func (m *Model) loadBoard() tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.TaskStatsUseCase().Execute(context.Background(), usecase.TaskStatsInput{})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgBoardLoaded{Groups: out.Groups, Stats: out.Stats}
	}
}

// loadDetail returns a command that loads a task and its history.
func (m *Model) loadDetail(taskID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ShowTaskUseCase().Execute(context.Background(), usecase.ShowTaskInput{TaskID: taskID})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgDetailLoaded{Task: out.Task, Activities: out.Activities, Overdue: out.Overdue}
	}
}

// acceptTask returns a command that accepts a task as the acting user.
func (m *Model) acceptTask(taskID string) tea.Cmd {
	actor := m.actor
	return func() tea.Msg {
		out, err := m.container.AcceptTaskUseCase().Execute(context.Background(), usecase.AcknowledgeTaskInput{
			TaskID:  taskID,
			ActorID: actor,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: fmt.Sprintf("Accepted %q", out.Task.Title)}
	}
}

// declineTask returns a command that declines a task as the acting user.
func (m *Model) declineTask(taskID, note string) tea.Cmd {
	actor := m.actor
	return func() tea.Msg {
		out, err := m.container.DeclineTaskUseCase().Execute(context.Background(), usecase.AcknowledgeTaskInput{
			TaskID:  taskID,
			ActorID: actor,
			Note:    note,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: fmt.Sprintf("Declined %q", out.Task.Title)}
	}
}

// changeStatus returns a command that moves a task to status.
func (m *Model) changeStatus(taskID string, status domain.Status) tea.Cmd {
	actor := m.actor
	return func() tea.Msg {
		out, err := m.container.ChangeStatusUseCase().Execute(context.Background(), usecase.ChangeStatusInput{
			TaskID:  taskID,
			ActorID: actor,
			Status:  status,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		if out.Rejected {
			return MsgError{Err: fmt.Errorf("only the assignee or a manager can complete this task: %w", domain.ErrNotAuthorized)}
		}
		return MsgActionDone{Notice: fmt.Sprintf("%q is now %s", out.Task.Title, out.Task.Status.Display())}
	}
}

// createTask returns a command that creates an unassigned task.
func (m *Model) createTask(title string) tea.Cmd {
	actor := m.actor
	return func() tea.Msg {
		out, err := m.container.CreateTaskUseCase().Execute(context.Background(), usecase.CreateTaskInput{
			ActorID: actor,
			Title:   title,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: fmt.Sprintf("Created %q", out.Task.Title), Warnings: out.Warnings}
	}
}

// commentTask returns a command that comments on a task.
func (m *Model) commentTask(taskID, message string) tea.Cmd {
	actor := m.actor
	return func() tea.Msg {
		_, err := m.container.AddCommentUseCase().Execute(context.Background(), usecase.AddCommentInput{
			TaskID:  taskID,
			ActorID: actor,
			Message: message,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: "Comment added"}
	}
}

// deleteTask returns a command that soft-deletes a task.
func (m *Model) deleteTask(taskID, reason string) tea.Cmd {
	actor := m.actor
	return func() tea.Msg {
		out, err := m.container.DeleteTaskUseCase().Execute(context.Background(), usecase.DeleteTaskInput{
			TaskID:  taskID,
			ActorID: actor,
			Reason:  reason,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: fmt.Sprintf("Deleted %q", out.Task.Title)}
	}
}

// SelectedTask returns the currently selected task, or nil if none.
func (m *Model) SelectedTask() *domain.Task {
	if m.taskList.SelectedItem() == nil {
		return nil
	}
	if ti, ok := m.taskList.SelectedItem().(taskItem); ok {
		return ti.task
	}
	return nil
}

// currentGroup returns the selected column, or nil before the first load.
func (m *Model) currentGroup() *query.Group {
	if m.column < 0 || m.column >= len(m.groups) {
		return nil
	}
	return &m.groups[m.column]
}

// updateTaskList fills the list with the tasks of the selected column.
// The selection follows the previously selected task when it is still there.
func (m *Model) updateTaskList() {
	var selectedID string
	if t := m.SelectedTask(); t != nil {
		selectedID = t.ID
	}

	g := m.currentGroup()
	if g == nil {
		m.taskList.SetItems(nil)
		return
	}
	now := m.container.Clock.Now()
	items := make([]list.Item, 0, len(g.Tasks))
	selectIdx := 0
	for i, task := range g.Tasks {
		items = append(items, taskItem{task: task, overdue: task.IsOverdue(now)})
		if task.ID == selectedID {
			selectIdx = i
		}
	}
	m.taskList.SetItems(items)
	m.taskList.Select(selectIdx)
}

// advanceTarget returns the next status along the main flow.
func advanceTarget(s domain.Status) (domain.Status, bool) {
	switch s {
	case domain.StatusPending:
		return domain.StatusInProgress, true
	case domain.StatusInProgress:
		return domain.StatusNeedsApproval, true
	case domain.StatusNeedsApproval:
		return domain.StatusCompleted, true
	case domain.StatusCompleted:
		return domain.StatusClosed, true
	case domain.StatusClosed, domain.StatusOverdue:
		return "", false
	}
	return "", false
}

// backTarget returns the status a task is sent back to.
func backTarget(s domain.Status) (domain.Status, bool) {
	switch s {
	case domain.StatusInProgress:
		return domain.StatusPending, true
	case domain.StatusNeedsApproval:
		return domain.StatusInProgress, true
	case domain.StatusPending, domain.StatusCompleted, domain.StatusClosed, domain.StatusOverdue:
		return "", false
	}
	return "", false
}

// columnTitle returns the tab label of a group.
func columnTitle(g query.Group) string {
	return fmt.Sprintf("%s %s (%d)", StatusIcon(g.Status), g.Status.Display(), len(g.Tasks))
}

// warningNotice folds notification warnings into the notice line.
func warningNotice(notice string, warnings []string) string {
	if len(warnings) == 0 {
		return notice
	}
	return notice + " (" + strings.Join(warnings, "; ") + ")"
}
