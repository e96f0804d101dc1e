package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// ChangeStatusInput contains the parameters for a status transition.
type ChangeStatusInput struct {
	TaskID  string        // Task to change (required)
	ActorID string        // Acting user (required)
	Status  domain.Status // Target status (required)
	Note    string        // Optional note for the activity record
}

// ChangeStatusOutput contains the result of a status transition.
type ChangeStatusOutput struct {
	Task *domain.Task
	// Rejected is set when the completion guard refused the change.
	// The task is unchanged and the attempt is on record; no error is returned.
	Rejected bool
}

// ChangeStatus is the general status-transition use case.
type ChangeStatus struct {
	eng *shared.Engine
}

// NewChangeStatus creates a new ChangeStatus use case.
func NewChangeStatus(eng *shared.Engine) *ChangeStatus {
	return &ChangeStatus{eng: eng}
}

// Execute moves the task to in.Status if the transition table allows it.
// Other moves are limited to managers of the task and its assignee. Completing someone else's task requires an admin or manager; other actors
// are refused silently with a completion_attempt_by_non_assignee record.
func (uc *ChangeStatus) Execute(ctx context.Context, in ChangeStatusInput) (_ *ChangeStatusOutput, err error) {
	ctx, done := uc.eng.Begin(ctx, "change_status", in.TaskID)
	defer func() { done(err) }()

	if !in.Status.IsValid() {
		return nil, fmt.Errorf("%q: %w", in.Status, domain.ErrInvalidStatus)
	}
	actor, err := uc.eng.Actor(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	out, action, err := uc.commit(ctx, actor, in)
	if err != nil || out.Rejected {
		return out, err
	}

	uc.eng.Finish(ctx, out.Task, action, actor.ID)
	return out, nil
}

func (uc *ChangeStatus) commit(ctx context.Context, actor *domain.User, in ChangeStatusInput) (*ChangeStatusOutput, domain.Action, error) {
	unlock := uc.eng.Locks.Lock(in.TaskID)
	defer unlock()

	task, err := shared.GetLiveTask(ctx, uc.eng.Tasks, in.TaskID)
	if err != nil {
		return nil, "", err
	}
	out := &ChangeStatusOutput{Task: task}

	if !task.Status.CanTransitionTo(in.Status) {
		return out, "", fmt.Errorf("%s -> %s: %w", task.Status, in.Status, domain.ErrInvalidTransition)
	}
	if in.Status != domain.StatusCompleted && !actor.CanManage(task) && !task.Assignee.IsUser(actor.ID) {
		return out, "", fmt.Errorf("%s may not change this task: %w", actor.ID, domain.ErrNotAuthorized)
	}

	action := domain.ActionStatusChanged
	if in.Status == domain.StatusCompleted {
		switch {
		case task.Assignee.IsUser(actor.ID):
			action = domain.ActionCompleted
		case actor.Role.IsPrivileged():
			action = domain.ActionCompletedByAdmin
		default:
			out.Rejected = true
			uc.eng.Logger.Warn(task.ID, "task", fmt.Sprintf("completion by non-assignee %s refused", actor.ID))
			return out, domain.ActionCompletionAttemptBlocked, uc.eng.Record(ctx, domain.Activity{
				TaskID:      task.ID,
				Action:      domain.ActionCompletionAttemptBlocked,
				OldValue:    string(task.Status),
				NewValue:    string(in.Status),
				Notes:       strings.TrimSpace(in.Note),
				PerformedBy: actor.ID,
			})
		}
	}

	next := in.Status
	updated, err := uc.eng.Commit(ctx, task.ID, domain.TaskPatch{
		At:            uc.eng.Clock.Now(),
		Status:        &next,
		ExpectVersion: task.Version,
	})
	if err != nil {
		return out, "", err
	}
	out.Task = updated
	uc.eng.Transitioned(ctx, task.Status, updated.Status)

	if err := uc.eng.Record(ctx, domain.Activity{
		TaskID:      updated.ID,
		Action:      action,
		OldValue:    string(task.Status),
		NewValue:    string(updated.Status),
		Notes:       strings.TrimSpace(in.Note),
		PerformedBy: actor.ID,
	}); err != nil {
		return out, "", err
	}
	uc.eng.Logger.Info(updated.ID, "task", fmt.Sprintf("status %s -> %s (%s)", task.Status, updated.Status, action))

	return out, action, nil
}
