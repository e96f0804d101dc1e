package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/query"
)

// ListTasksInput contains the parameters for listing tasks.
// Fields are ordered to minimize memory padding.
type ListTasksInput struct {
	Filter         query.Filter // View filter (empty = all tasks)
	Where          string       // CEL expression over task fields (optional)
	IDPrefix       string       // Only tasks whose ID starts with this prefix
	IncludeDeleted bool         // Include soft-deleted tasks
	OnlyDeleted    bool         // Only soft-deleted tasks (trash view)
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Tasks []*domain.Task // Tasks matching the filter in creation order
	Stats query.Stats    // Counts over the returned tasks
}

// ListTasks is the use case for listing tasks.
type ListTasks struct {
	tasks domain.TaskRepository
	clock domain.Clock
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks domain.TaskRepository, clock domain.Clock) *ListTasks {
	return &ListTasks{
		tasks: tasks,
		clock: clock,
	}
}

// Execute lists tasks matching the given input criteria.
func (uc *ListTasks) Execute(ctx context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	// Compile first so a bad expression fails before touching the store
	var expr *query.Expr
	if in.Where != "" {
		e, err := query.Compile(in.Where)
		if err != nil {
			return nil, err
		}
		expr = e
	}

	tasks, err := uc.tasks.List(ctx, domain.TaskFilter{
		IDPrefix:       in.IDPrefix,
		IncludeDeleted: in.IncludeDeleted,
		OnlyDeleted:    in.OnlyDeleted,
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	now := uc.clock.Now()
	tasks = query.Apply(tasks, in.Filter, now)
	if expr != nil {
		tasks, err = query.Where(tasks, expr, now)
		if err != nil {
			return nil, err
		}
	}

	return &ListTasksOutput{
		Tasks: tasks,
		Stats: query.ComputeStats(tasks, now),
	}, nil
}
