package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/whatstask/internal/domain"
)

// View renders the board.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.mode {
	case ModeHelp:
		content = m.viewHelp()
	case ModeDetail:
		content = m.viewDetail()
	case ModeNormal, ModeInputTitle, ModeInputNote:
		content = m.viewMain()
	}

	return m.styles.App.Render(content)
}

// viewMain renders the column tabs and the task list.
func (m *Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	if g := m.currentGroup(); g != nil && len(g.Tasks) == 0 {
		b.WriteString(m.styles.TaskDesc.Render("No tasks"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.taskList.View())
		b.WriteString("\n")
	}

	switch m.mode {
	case ModeInputTitle:
		b.WriteString(m.styles.Input.Render(m.styles.InputPrompt.Render("New task: ") + m.titleInput.View()))
		b.WriteString("\n")
	case ModeInputNote:
		b.WriteString(m.styles.Input.Render(m.styles.InputPrompt.Render(m.noteAction.Prompt()) + m.noteInput.View()))
		b.WriteString("\n")
	case ModeNormal, ModeDetail, ModeHelp:
	}

	b.WriteString(m.viewStatusLine())
	b.WriteString(m.styles.Footer.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return b.String()
}

// viewHeader renders the title, counters and acting user.
func (m *Model) viewHeader() string {
	title := m.styles.HeaderText.Render("WhatsTask")
	counts := fmt.Sprintf("%d tasks · %d overdue", m.stats.Total, m.stats.Overdue)
	if m.stats.Overdue > 0 {
		counts = fmt.Sprintf("%d tasks · %s", m.stats.Total, m.styles.Overdue.Render(fmt.Sprintf("%d overdue", m.stats.Overdue)))
	}
	user := m.styles.HeaderUser.Render("as " + m.actor)
	return m.styles.Header.Render(title + "  " + counts + "  " + user)
}

// viewTabs renders one tab per board column.
func (m *Model) viewTabs() string {
	tabs := make([]string, 0, len(m.groups))
	for i, g := range m.groups {
		style := m.styles.Tab
		if i == m.column {
			style = m.styles.TabActive
		}
		tabs = append(tabs, style.Render(columnTitle(g)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// viewStatusLine renders the error or notice line, if any.
func (m *Model) viewStatusLine() string {
	switch {
	case m.err != nil:
		return m.styles.ErrorMsg.Render("Error: "+m.err.Error()) + "\n"
	case m.notice != "":
		return m.styles.Notice.Render(m.notice) + "\n"
	default:
		return ""
	}
}

// viewDetail renders the task detail view.
func (m *Model) viewDetail() string {
	if m.detail == nil {
		return m.styles.TaskDesc.Render("Loading task...")
	}
	var b strings.Builder
	b.WriteString(m.detailViewport.View())
	b.WriteString("\n")
	b.WriteString(m.viewStatusLine())
	b.WriteString(m.styles.Footer.Render("↑/↓ scroll · esc back"))
	return b.String()
}

// detailContent renders the loaded task and its history for the viewport.
func (m *Model) detailContent() string {
	if m.detail == nil {
		return ""
	}
	t := m.detail.Task
	s := m.styles
	var b strings.Builder

	b.WriteString(s.DetailTitle.Render(t.Title))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(s.DetailLabel.Render(label))
		b.WriteString(s.DetailValue.Render(value))
		b.WriteString("\n")
	}

	status := s.StatusStyle(t.Status).Render(StatusIcon(t.Status) + " " + t.Status.Display())
	if m.detail.Overdue {
		status += " " + s.Overdue.Render("(overdue)")
	}
	row("ID", t.ID)
	row("Status", status)
	row("Priority", s.PriorityStyle(t.Priority).Render(string(t.Priority)))
	row("Assignee", assigneeLine(t))
	if t.DueDate != nil {
		row("Due", t.DueDate.Format("2006-01-02 15:04"))
	}
	if t.ProjectID != "" {
		row("Project", t.ProjectID)
	}
	if len(t.Watchers) > 0 {
		row("Watchers", strings.Join(t.Watchers, ", "))
	}
	row("Created", fmt.Sprintf("%s by %s", t.CreatedAt.Format("2006-01-02 15:04"), t.CreatedBy))
	if t.IsDeleted() {
		row("Deleted", s.ErrorMsg.Render(fmt.Sprintf("by %s: %s", t.DeletedBy, t.DeleteReason)))
	}

	if t.Description != "" {
		b.WriteString(s.DetailDesc.Render(t.Description))
		b.WriteString("\n")
	}

	if len(t.Checklist) > 0 {
		done, total := t.ChecklistProgress()
		b.WriteString("\n")
		b.WriteString(s.DetailLabel.Render("Checklist"))
		b.WriteString(fmt.Sprintf("%d/%d\n", done, total))
		for _, item := range t.Checklist {
			mark := "☐"
			if item.Completed {
				mark = "☑"
			}
			b.WriteString("  " + mark + " " + item.Text + "\n")
		}
	}

	if len(m.detail.Activities) > 0 {
		b.WriteString("\n")
		b.WriteString(s.DetailLabel.Render("History"))
		b.WriteString("\n")
		for _, a := range m.detail.Activities {
			b.WriteString(s.TaskDesc.Render(a.CreatedAt.Format("01-02 15:04")))
			b.WriteString(" ")
			b.WriteString(string(a.Action))
			if a.PerformedBy != "" {
				b.WriteString(" by " + a.PerformedBy)
			}
			if d := historyDetail(a); d != "" {
				b.WriteString(": " + escapeNewlines(d))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// assigneeLine describes the assignee and the acknowledgment state.
func assigneeLine(t *domain.Task) string {
	if !t.Assignee.IsAssigned() {
		return "unassigned"
	}
	line := t.Assignee.DisplayName()
	if t.Assignee.IsExternal() {
		line += " (external, " + t.Assignee.Phone + ")"
	}
	switch {
	case t.AcceptedAt != nil:
		line += " · accepted"
	case t.DeclinedAt != nil:
		line += " · declined"
	}
	return line
}

// historyDetail summarizes the values of an activity record.
func historyDetail(a domain.Activity) string {
	switch {
	case a.OldValue != "" && a.NewValue != "":
		return a.OldValue + " → " + a.NewValue
	case a.NewValue != "":
		return a.NewValue
	default:
		return a.Notes
	}
}

// viewHelp renders the help overlay.
func (m *Model) viewHelp() string {
	m.help.ShowAll = true
	content := m.help.View(m.keys)
	m.help.ShowAll = false
	return m.styles.Help.Render("Keys\n\n" + content + "\n\nesc or ? to close")
}
