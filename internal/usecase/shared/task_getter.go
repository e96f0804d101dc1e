package shared

import (
	"context"
	"fmt"

	"github.com/runoshun/whatstask/internal/domain"
)

// GetTask retrieves a task by ID and returns domain.ErrTaskNotFound if not found.
// This centralizes the common pattern of:
//
//	task, err := repo.Get(ctx, taskID)
//	if err != nil { return nil, fmt.Errorf("get task: %w", err) }
//	if task == nil { return nil, domain.ErrTaskNotFound }
func GetTask(ctx context.Context, repo domain.TaskRepository, taskID string) (*domain.Task, error) {
	task, err := repo.Get(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("%s: %w", taskID, domain.ErrTaskNotFound)
	}
	return task, nil
}

// GetLiveTask is GetTask for operations that must not touch soft-deleted
// tasks. A deleted task is reported as not found.
func GetLiveTask(ctx context.Context, repo domain.TaskRepository, taskID string) (*domain.Task, error) {
	task, err := GetTask(ctx, repo, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsDeleted() {
		return nil, fmt.Errorf("%s is deleted: %w", taskID, domain.ErrTaskNotFound)
	}
	return task, nil
}

// GetActor looks up the acting user. An empty ID is a validation error;
// an ID missing from the directory is domain.ErrUserNotFound.
func GetActor(ctx context.Context, users domain.UserDirectory, actorID string) (*domain.User, error) {
	if actorID == "" {
		return nil, domain.ErrMissingActor
	}
	user, err := users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%s: %w", actorID, domain.ErrUserNotFound)
	}
	return user, nil
}

// CheckProject verifies that a non-empty project ID is registered.
// With no directory every ID passes.
func CheckProject(ctx context.Context, projects domain.ProjectDirectory, projectID string) error {
	if projectID == "" || projects == nil {
		return nil
	}
	p, err := projects.GetByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return fmt.Errorf("%s: %w", projectID, domain.ErrProjectNotFound)
	}
	return nil
}

// ResolveTaskID expands a full ID or a unique ID prefix to the stored ID.
// Soft-deleted tasks take part so that they can be restored by prefix.
func ResolveTaskID(ctx context.Context, repo domain.TaskRepository, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("task id is required: %w", domain.ErrValidationFailed)
	}
	task, err := repo.Get(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("get task: %w", err)
	}
	if task != nil {
		return task.ID, nil
	}

	matches, err := repo.List(ctx, domain.TaskFilter{IDPrefix: ref, IncludeDeleted: true})
	if err != nil {
		return "", fmt.Errorf("list tasks: %w", err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", ref, domain.ErrTaskNotFound)
	case 1:
		return matches[0].ID, nil
	default:
		return "", fmt.Errorf("%s matches %d tasks: %w", ref, len(matches), domain.ErrAmbiguousTaskID)
	}
}
