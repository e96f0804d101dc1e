package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/query"
)

// TaskStatsInput contains the parameters for computing dashboard counts.
type TaskStatsInput struct {
	AssigneeID string // Restrict to one internal assignee (optional)
	ProjectID  string // Restrict to one project (optional)
}

// TaskStatsOutput contains the dashboard counts.
type TaskStatsOutput struct {
	Stats  query.Stats
	Groups []query.Group // Board columns, one per status plus overdue
}

// TaskStats is the use case behind the dashboard and the board view.
type TaskStats struct {
	tasks domain.TaskRepository
	clock domain.Clock
}

// NewTaskStats creates a new TaskStats use case.
func NewTaskStats(tasks domain.TaskRepository, clock domain.Clock) *TaskStats {
	return &TaskStats{tasks: tasks, clock: clock}
}

// Execute counts live tasks.
func (uc *TaskStats) Execute(ctx context.Context, in TaskStatsInput) (*TaskStatsOutput, error) {
	tasks, err := uc.tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	now := uc.clock.Now()
	tasks = query.Apply(tasks, query.Filter{Assignee: in.AssigneeID, Project: in.ProjectID}, now)

	return &TaskStatsOutput{
		Stats:  query.ComputeStats(tasks, now),
		Groups: query.GroupByStatus(tasks, now),
	}, nil
}
