package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/query"
)

// ShowProjectInput contains the parameters for showing a project.
type ShowProjectInput struct {
	ProjectID string
}

// ShowProjectOutput contains a project with its live tasks and progress.
type ShowProjectOutput struct {
	Project  domain.Project
	Tasks    []*domain.Task
	Groups   []query.Group // Tasks per status plus overdue
	Stats    query.Stats
	Progress int // Percentage of tasks completed or closed
}

// ShowProject reports how far a project has come.
type ShowProject struct {
	projects domain.ProjectDirectory
	tasks    domain.TaskRepository
	clock    domain.Clock
}

// NewShowProject creates a new ShowProject use case.
func NewShowProject(projects domain.ProjectDirectory, tasks domain.TaskRepository, clock domain.Clock) *ShowProject {
	return &ShowProject{projects: projects, tasks: tasks, clock: clock}
}

// Execute loads the project and aggregates its live tasks.
func (uc *ShowProject) Execute(ctx context.Context, in ShowProjectInput) (*ShowProjectOutput, error) {
	p, err := uc.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%s: %w", in.ProjectID, domain.ErrProjectNotFound)
	}

	tasks, err := uc.tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	now := uc.clock.Now()
	tasks = query.Apply(tasks, query.Filter{Project: p.ID}, now)
	stats := query.ComputeStats(tasks, now)

	return &ShowProjectOutput{
		Project:  *p,
		Tasks:    tasks,
		Groups:   query.GroupByStatus(tasks, now),
		Stats:    stats,
		Progress: stats.Progress(),
	}, nil
}
