// Package query derives views over in-memory task collections.
// Every function is pure: it never mutates its input, keeps the relative
// order of tasks, and takes "now" as an argument.
package query

import (
	"strings"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
)

// All is the no-op value accepted by every filter option.
const All = "all"

// Assignee filter value for tasks without an assignee.
const Unassigned = "unassigned"

// Due date windows.
const (
	DueToday    = "today"
	DueTomorrow = "tomorrow"
	DueThisWeek = "this_week"
	DueNextWeek = "next_week"
	DueOverdue  = "overdue"
	DueNone     = "no_due_date"
)

// Creation date windows.
const (
	CreatedToday     = "today"
	CreatedThisWeek  = "this_week"
	CreatedThisMonth = "this_month"
	CreatedLastWeek  = "last_week"
	CreatedLastMonth = "last_month"
)

// Checklist filter values.
const (
	WithChecklist    = "with_checklist"
	WithoutChecklist = "without_checklist"
)

// Filter holds the recognized filter options. Empty or "all" options are
// ignored; the others are ANDed.
type Filter struct {
	Search      string // Case-insensitive substring of title, description or assignee name
	Status      string // Stored status or "overdue"
	Priority    string
	Project     string
	Assignee    string // Internal user ID or "unassigned"
	DueDate     string // One of the Due* values
	CreatedDate string // One of the Created* values
	Checklist   string // WithChecklist or WithoutChecklist
}

// IsEmpty returns true if no option is active.
func (f Filter) IsEmpty() bool {
	for _, v := range []string{f.Search, f.Status, f.Priority, f.Project, f.Assignee, f.DueDate, f.CreatedDate, f.Checklist} {
		if active(v) {
			return false
		}
	}
	return true
}

// ActiveCount returns the number of active options.
func (f Filter) ActiveCount() int {
	n := 0
	for _, v := range []string{f.Search, f.Status, f.Priority, f.Project, f.Assignee, f.DueDate, f.CreatedDate, f.Checklist} {
		if active(v) {
			n++
		}
	}
	return n
}

func active(v string) bool {
	return v != "" && v != All
}

// IsOverdue reports whether t counts as overdue at now.
func IsOverdue(t *domain.Task, now time.Time) bool {
	return t.IsOverdue(now)
}

// ByStatus returns the tasks whose status equals status. The synthetic
// status "overdue" selects overdue tasks instead.
func ByStatus(tasks []*domain.Task, status domain.Status, now time.Time) []*domain.Task {
	return keep(tasks, func(t *domain.Task) bool { return matchStatus(t, string(status), now) })
}

// Apply returns the tasks matching every active option of f.
func Apply(tasks []*domain.Task, f Filter, now time.Time) []*domain.Task {
	if f.IsEmpty() {
		return keep(tasks, func(*domain.Task) bool { return true })
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	return keep(tasks, func(t *domain.Task) bool {
		return (search == "" || matchSearch(t, search)) &&
			(!active(f.Status) || matchStatus(t, f.Status, now)) &&
			(!active(f.Priority) || string(t.Priority) == f.Priority) &&
			(!active(f.Project) || t.ProjectID == f.Project) &&
			(!active(f.Assignee) || matchAssignee(t, f.Assignee)) &&
			(!active(f.DueDate) || matchDueDate(t, f.DueDate, now)) &&
			(!active(f.CreatedDate) || matchCreatedDate(t, f.CreatedDate, now)) &&
			(!active(f.Checklist) || matchChecklist(t, f.Checklist))
	})
}

// keep is a stable filter into a fresh slice.
func keep(tasks []*domain.Task, pred func(*domain.Task) bool) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

func matchSearch(t *domain.Task, needle string) bool {
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) ||
		(t.Assignee.IsAssigned() && strings.Contains(strings.ToLower(t.Assignee.Name), needle))
}

func matchStatus(t *domain.Task, status string, now time.Time) bool {
	if status == string(domain.StatusOverdue) {
		return t.IsOverdue(now)
	}
	return string(t.Status) == status
}

func matchAssignee(t *domain.Task, assignee string) bool {
	if assignee == Unassigned {
		return !t.Assignee.IsAssigned()
	}
	return t.Assignee.IsUser(assignee)
}

// matchDueDate compares calendar days. Tasks without a due date only
// match DueNone.
func matchDueDate(t *domain.Task, window string, now time.Time) bool {
	if t.DueDate == nil {
		return window == DueNone
	}
	due := domain.DayOf(t.DueDate.In(now.Location()))
	today := domain.DayOf(now)
	switch window {
	case DueToday:
		return due.Equal(today)
	case DueTomorrow:
		return due.Equal(today.AddDate(0, 0, 1))
	case DueThisWeek:
		return !due.After(today.AddDate(0, 0, 7))
	case DueNextWeek:
		return !due.Before(today.AddDate(0, 0, 7)) && !due.After(today.AddDate(0, 0, 14))
	case DueOverdue:
		return t.IsOverdue(now)
	case DueNone:
		return false
	default:
		return true
	}
}

// matchCreatedDate uses rolling windows relative to now, except "today"
// which is the calendar day of now.
func matchCreatedDate(t *domain.Task, window string, now time.Time) bool {
	created := t.CreatedAt
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, -1, 0)
	switch window {
	case CreatedToday:
		y1, m1, d1 := created.In(now.Location()).Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case CreatedThisWeek:
		return !created.Before(weekAgo)
	case CreatedThisMonth:
		return !created.Before(monthAgo)
	case CreatedLastWeek:
		return !created.Before(now.AddDate(0, 0, -14)) && !created.After(weekAgo)
	case CreatedLastMonth:
		return !created.After(monthAgo)
	default:
		return true
	}
}

func matchChecklist(t *domain.Task, v string) bool {
	switch v {
	case WithChecklist:
		return len(t.Checklist) > 0
	case WithoutChecklist:
		return len(t.Checklist) == 0
	default:
		return true
	}
}
