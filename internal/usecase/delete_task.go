package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	TaskID  string // Task ID to delete (required)
	ActorID string // Acting user (required)
	Reason  string // Why the task is deleted (required)
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	Task *domain.Task // The soft-deleted task
}

// DeleteTask is the use case for soft-deleting a task.
// The task and its activity history stay in the store.
type DeleteTask struct {
	eng *shared.Engine
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(eng *shared.Engine) *DeleteTask {
	return &DeleteTask{eng: eng}
}

// Execute marks the task deleted. Only privileged users and the creator may.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (_ *DeleteTaskOutput, err error) {
	ctx, done := uc.eng.Begin(ctx, "delete_task", in.TaskID)
	defer func() { done(err) }()

	reason, err := shared.ValidateReason(in.Reason)
	if err != nil {
		return nil, err
	}
	actor, err := uc.eng.Actor(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	out, err := uc.commit(ctx, actor, in.TaskID, reason)
	if err != nil {
		return out, err
	}
	uc.eng.Finish(ctx, out.Task, domain.ActionDeleted, actor.ID)
	return out, nil
}

func (uc *DeleteTask) commit(ctx context.Context, actor *domain.User, taskID, reason string) (*DeleteTaskOutput, error) {
	unlock := uc.eng.Locks.Lock(taskID)
	defer unlock()

	task, err := shared.GetTask(ctx, uc.eng.Tasks, taskID)
	if err != nil {
		return nil, err
	}
	out := &DeleteTaskOutput{Task: task}

	if task.IsDeleted() {
		return out, fmt.Errorf("task already deleted: %w", domain.ErrInvalidTransition)
	}
	if !actor.CanManage(task) {
		return out, fmt.Errorf("%s may not delete this task: %w", actor.ID, domain.ErrNotAuthorized)
	}

	deleted, err := uc.eng.Tasks.SoftDelete(ctx, task.ID, domain.Deletion{At: uc.eng.Clock.Now(), By: actor.ID, Reason: reason})
	if err != nil {
		return out, fmt.Errorf("delete task: %w", err)
	}
	out.Task = deleted

	if err := uc.eng.Record(ctx, domain.Activity{
		TaskID:      task.ID,
		Action:      domain.ActionDeleted,
		Notes:       reason,
		PerformedBy: actor.ID,
	}); err != nil {
		return out, err
	}
	uc.eng.Logger.Info(task.ID, "task", fmt.Sprintf("deleted by %s: %s", actor.ID, reason))
	return out, nil
}

// RestoreTaskInput contains the parameters for restoring a deleted task.
type RestoreTaskInput struct {
	TaskID  string // Task ID to restore (required)
	ActorID string // Acting user (required)
}

// RestoreTaskOutput contains the result of restoring a task.
type RestoreTaskOutput struct {
	Task *domain.Task
}

// RestoreTask is the use case for undoing a soft-delete.
type RestoreTask struct {
	eng *shared.Engine
}

// NewRestoreTask creates a new RestoreTask use case.
func NewRestoreTask(eng *shared.Engine) *RestoreTask {
	return &RestoreTask{eng: eng}
}

// Execute clears the deletion marker.
func (uc *RestoreTask) Execute(ctx context.Context, in RestoreTaskInput) (_ *RestoreTaskOutput, err error) {
	ctx, done := uc.eng.Begin(ctx, "restore_task", in.TaskID)
	defer func() { done(err) }()

	actor, err := uc.eng.Actor(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	out, err := uc.commit(ctx, actor, in.TaskID)
	if err != nil {
		return out, err
	}
	uc.eng.Finish(ctx, out.Task, domain.ActionRestored, actor.ID)
	return out, nil
}

func (uc *RestoreTask) commit(ctx context.Context, actor *domain.User, taskID string) (*RestoreTaskOutput, error) {
	unlock := uc.eng.Locks.Lock(taskID)
	defer unlock()

	task, err := shared.GetTask(ctx, uc.eng.Tasks, taskID)
	if err != nil {
		return nil, err
	}
	out := &RestoreTaskOutput{Task: task}

	if !task.IsDeleted() {
		return out, fmt.Errorf("task is not deleted: %w", domain.ErrInvalidTransition)
	}
	if !actor.CanManage(task) {
		return out, fmt.Errorf("%s may not restore this task: %w", actor.ID, domain.ErrNotAuthorized)
	}

	restored, err := uc.eng.Tasks.Restore(ctx, task.ID, uc.eng.Clock.Now())
	if err != nil {
		return out, fmt.Errorf("restore task: %w", err)
	}
	out.Task = restored

	if err := uc.eng.Record(ctx, domain.Activity{
		TaskID:      task.ID,
		Action:      domain.ActionRestored,
		OldValue:    task.DeleteReason,
		PerformedBy: actor.ID,
	}); err != nil {
		return out, err
	}
	uc.eng.Logger.Info(task.ID, "task", fmt.Sprintf("restored by %s", actor.ID))
	return out, nil
}
