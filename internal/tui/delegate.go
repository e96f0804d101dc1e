package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/runoshun/whatstask/internal/domain"
)

// idWidth is the number of task ID characters shown on the board.
const idWidth = 8

type taskItem struct {
	task    *domain.Task
	overdue bool
}

func (t taskItem) FilterValue() string {
	return t.task.Title + " " + t.task.Assignee.DisplayName()
}

// escapeNewlines replaces newline characters with spaces for single-line display.
func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

// shortID cuts a task ID for display.
func shortID(id string) string {
	if len(id) > idWidth {
		return id[:idWidth]
	}
	return id
}

// subtitle summarizes assignment, due date and checklist progress.
func subtitle(t *domain.Task, overdue bool) string {
	var parts []string
	if t.Assignee.IsAssigned() {
		who := "@" + t.Assignee.DisplayName()
		if t.Assignee.IsExternal() {
			who += " (ext)"
		}
		switch {
		case t.AcceptedAt != nil:
			who += " ✓"
		case t.DeclinedAt != nil:
			who += " ✗ declined"
		}
		parts = append(parts, who)
	} else {
		parts = append(parts, "unassigned")
	}
	if t.DueDate != nil {
		due := "due " + t.DueDate.Format("Jan 2")
		if overdue {
			due += " (overdue)"
		}
		parts = append(parts, due)
	}
	if done, total := t.ChecklistProgress(); total > 0 {
		parts = append(parts, fmt.Sprintf("☑ %d/%d", done, total))
	}
	return strings.Join(parts, " · ")
}

type taskDelegate struct {
	styles Styles
}

func newTaskDelegate(styles Styles) taskDelegate {
	return taskDelegate{styles: styles}
}

func (d taskDelegate) Height() int {
	return 2
}

func (d taskDelegate) Spacing() int {
	return 1
}

func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(taskItem)
	if !ok {
		return
	}
	task := ti.task
	selected := index == m.Index()

	indicatorChar := " "
	if selected {
		indicatorChar = ">"
	}

	idStr := fmt.Sprintf("%-*s", idWidth, shortID(task.ID))
	statusIcon := StatusIcon(task.Status)
	mark := fmt.Sprintf("%-2s", PriorityMark(task.Priority))

	// indent + indicator + id + icon + priority mark
	prefixWidth := 2 + 1 + 1 + idWidth + 2 + 1 + 1 + 2 + 1
	listWidth := m.Width()
	maxTitleLen := listWidth - prefixWidth - 2
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}

	title := escapeNewlines(task.Title)
	if runewidth.StringWidth(title) > maxTitleLen {
		title = runewidth.Truncate(title, maxTitleLen-3, "...")
	}

	titleStyle := d.styles.TaskTitle
	if selected {
		titleStyle = d.styles.TaskTitleSelected
	}
	statusStyle := d.styles.StatusStyle(task.Status)
	if ti.overdue {
		statusStyle = d.styles.Overdue
	}

	line := "  " +
		d.styles.SelectionIndicator.Bold(selected).Render(indicatorChar) + " " +
		d.styles.TaskID.Bold(selected).Render(idStr) + "  " +
		statusStyle.Bold(selected).Render(statusIcon) + " " +
		d.styles.PriorityStyle(task.Priority).Render(mark) + " " +
		titleStyle.Render(title)

	lineWidth := runewidth.StringWidth(line)
	if lineWidth < listWidth {
		line += fmt.Sprintf("%*s", listWidth-lineWidth, "")
	}
	_, _ = fmt.Fprintln(w, line)

	descLine := strings.Repeat(" ", prefixWidth)
	sub := subtitle(task, ti.overdue)
	maxSubLen := listWidth - prefixWidth - 2
	if maxSubLen < 10 {
		maxSubLen = 10
	}
	if runewidth.StringWidth(sub) > maxSubLen {
		sub = runewidth.Truncate(sub, maxSubLen-3, "...")
	}
	descLine += sub
	_, _ = fmt.Fprint(w, d.styles.TaskDesc.Render(descLine))
}
