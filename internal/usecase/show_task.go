package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID string // Task ID (required)
}

// ShowTaskOutput contains the result of showing a task.
type ShowTaskOutput struct {
	Task       *domain.Task      // The task details
	Activities []domain.Activity // History in append order
	Overdue    bool              // Derived at the time of the call
}

// ShowTask is the use case for displaying task details.
// Soft-deleted tasks are shown too.
type ShowTask struct {
	tasks      domain.TaskRepository
	activities domain.ActivityRecorder
	clock      domain.Clock
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(tasks domain.TaskRepository, activities domain.ActivityRecorder, clock domain.Clock) *ShowTask {
	return &ShowTask{
		tasks:      tasks,
		activities: activities,
		clock:      clock,
	}
}

// Execute retrieves and returns the task details.
func (uc *ShowTask) Execute(ctx context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := shared.GetTask(ctx, uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}

	activities, err := uc.activities.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	return &ShowTaskOutput{
		Task:       task,
		Activities: activities,
		Overdue:    task.IsOverdue(uc.clock.Now()),
	}, nil
}
