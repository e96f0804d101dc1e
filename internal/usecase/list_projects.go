package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/query"
)

// ListProjectsInput contains the parameters for listing projects.
type ListProjectsInput struct{}

// ProjectSummary is one row of the project list.
type ProjectSummary struct {
	Project    domain.Project
	Stats      query.Stats
	Registered bool // False for IDs only found on tasks
}

// ListProjectsOutput contains the project rows ordered by ID.
type ListProjectsOutput struct {
	Projects []ProjectSummary
}

// ListProjects lists registered projects with live task counts.
// Project IDs carried by tasks but missing from the directory are listed
// as unregistered.
type ListProjects struct {
	projects domain.ProjectDirectory
	tasks    domain.TaskRepository
	clock    domain.Clock
}

// NewListProjects creates a new ListProjects use case.
func NewListProjects(projects domain.ProjectDirectory, tasks domain.TaskRepository, clock domain.Clock) *ListProjects {
	return &ListProjects{projects: projects, tasks: tasks, clock: clock}
}

// Execute builds one summary per project.
func (uc *ListProjects) Execute(ctx context.Context, _ ListProjectsInput) (*ListProjectsOutput, error) {
	registered, err := uc.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	tasks, err := uc.tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	byProject := make(map[string][]*domain.Task)
	for _, t := range tasks {
		if t.ProjectID != "" {
			byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
		}
	}

	now := uc.clock.Now()
	out := &ListProjectsOutput{}
	for _, p := range registered {
		out.Projects = append(out.Projects, ProjectSummary{
			Project:    p,
			Stats:      query.ComputeStats(byProject[p.ID], now),
			Registered: true,
		})
		delete(byProject, p.ID)
	}
	for id, group := range byProject {
		out.Projects = append(out.Projects, ProjectSummary{
			Project: domain.Project{ID: id},
			Stats:   query.ComputeStats(group, now),
		})
	}
	slices.SortFunc(out.Projects, func(a, b ProjectSummary) int { return strings.Compare(a.Project.ID, b.Project.ID) })
	return out, nil
}
