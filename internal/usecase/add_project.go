package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// AddProjectInput contains the parameters for registering a project.
type AddProjectInput struct {
	Project domain.Project // Project to add or replace
	ActorID string         // Acting user, must be an admin or manager
}

// AddProjectOutput contains the registered project.
type AddProjectOutput struct {
	Project domain.Project
	Replace bool // True if a project with the same ID existed
}

// AddProject registers or updates a project in the directory.
type AddProject struct {
	users    domain.UserDirectory
	projects domain.ProjectDirectory
	writer   domain.ProjectWriter
}

// NewAddProject creates a new AddProject use case.
func NewAddProject(users domain.UserDirectory, projects domain.ProjectDirectory, writer domain.ProjectWriter) *AddProject {
	return &AddProject{users: users, projects: projects, writer: writer}
}

// Execute validates and stores the project. The owner defaults to the actor
// and must be a registered user.
func (uc *AddProject) Execute(ctx context.Context, in AddProjectInput) (*AddProjectOutput, error) {
	actor, err := shared.GetActor(ctx, uc.users, in.ActorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsPrivileged() {
		return nil, fmt.Errorf("%s may not manage projects: %w", actor.ID, domain.ErrNotAuthorized)
	}

	p := domain.Project{
		ID:          strings.TrimSpace(in.Project.ID),
		Name:        strings.TrimSpace(in.Project.Name),
		Description: strings.TrimSpace(in.Project.Description),
		Owner:       strings.TrimSpace(in.Project.Owner),
	}
	if !domain.ValidProjectID(p.ID) {
		return nil, fmt.Errorf("%q: %w", p.ID, domain.ErrInvalidProjectID)
	}
	if p.Owner == "" {
		p.Owner = actor.ID
	} else if _, err := shared.GetActor(ctx, uc.users, p.Owner); err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}

	existing, err := uc.projects.GetByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if err := uc.writer.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("put project: %w", err)
	}
	return &AddProjectOutput{Project: p, Replace: existing != nil}, nil
}
