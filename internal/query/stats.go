package query

import (
	"time"

	"github.com/runoshun/whatstask/internal/domain"
)

// Stats is the dashboard aggregate of a task collection.
type Stats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	InProgress    int `json:"inProgress"`
	NeedsApproval int `json:"needsApproval"`
	Completed     int `json:"completed"` // completed and closed
	Overdue       int `json:"overdue"`
}

// ComputeStats aggregates tasks at now.
func ComputeStats(tasks []*domain.Task, now time.Time) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusPending:
			s.Pending++
		case domain.StatusInProgress:
			s.InProgress++
		case domain.StatusNeedsApproval:
			s.NeedsApproval++
		case domain.StatusCompleted, domain.StatusClosed:
			s.Completed++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}

// Progress returns the share of completed tasks as a whole percentage.
func (s Stats) Progress() int {
	if s.Total == 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}

// Group is one column of a board view.
type Group struct {
	Status domain.Status
	Tasks  []*domain.Task
}

// GroupByStatus splits tasks into one group per stored status in lifecycle
// order, followed by the synthetic overdue group. Overdue tasks also stay in
// their status group. Empty groups are kept so board columns are stable.
func GroupByStatus(tasks []*domain.Task, now time.Time) []Group {
	statuses := domain.AllStatuses()
	groups := make([]Group, 0, len(statuses)+1)
	for _, s := range statuses {
		groups = append(groups, Group{Status: s, Tasks: ByStatus(tasks, s, now)})
	}
	groups = append(groups, Group{Status: domain.StatusOverdue, Tasks: ByStatus(tasks, domain.StatusOverdue, now)})
	return groups
}
