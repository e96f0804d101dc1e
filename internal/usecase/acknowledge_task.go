package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// AcknowledgeTaskInput contains the parameters for accepting or declining a task.
type AcknowledgeTaskInput struct {
	TaskID  string // Task to acknowledge (required)
	ActorID string // Acting user, must be the internal assignee (required)
	Note    string // Optional reason, kept on the activity record
}

// AcknowledgeTaskOutput contains the result of accepting or declining a task.
type AcknowledgeTaskOutput struct {
	Task *domain.Task
}

// AcceptTask is the use case for the assignee accepting a task.
// Accepting a pending task moves it to in_progress.
type AcceptTask struct {
	eng *shared.Engine
}

// NewAcceptTask creates a new AcceptTask use case.
func NewAcceptTask(eng *shared.Engine) *AcceptTask {
	return &AcceptTask{eng: eng}
}

// Execute accepts the task.
func (uc *AcceptTask) Execute(ctx context.Context, in AcknowledgeTaskInput) (_ *AcknowledgeTaskOutput, err error) {
	ctx, done := uc.eng.Begin(ctx, "accept_task", in.TaskID)
	defer func() { done(err) }()
	return acknowledge(ctx, uc.eng, in, true)
}

// DeclineTask is the use case for the assignee declining a task.
// The task returns to pending for its owner to reassign.
type DeclineTask struct {
	eng *shared.Engine
}

// NewDeclineTask creates a new DeclineTask use case.
func NewDeclineTask(eng *shared.Engine) *DeclineTask {
	return &DeclineTask{eng: eng}
}

// Execute declines the task.
func (uc *DeclineTask) Execute(ctx context.Context, in AcknowledgeTaskInput) (_ *AcknowledgeTaskOutput, err error) {
	ctx, done := uc.eng.Begin(ctx, "decline_task", in.TaskID)
	defer func() { done(err) }()
	return acknowledge(ctx, uc.eng, in, false)
}

func acknowledge(ctx context.Context, eng *shared.Engine, in AcknowledgeTaskInput, accept bool) (*AcknowledgeTaskOutput, error) {
	actor, err := eng.Actor(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	action := domain.ActionDeclined
	if accept {
		action = domain.ActionAccepted
	}

	out, err := commitAcknowledgment(ctx, eng, actor, in, action)
	if err != nil {
		return out, err
	}

	eng.Finish(ctx, out.Task, action, actor.ID)
	return out, nil
}

func commitAcknowledgment(ctx context.Context, eng *shared.Engine, actor *domain.User, in AcknowledgeTaskInput, action domain.Action) (*AcknowledgeTaskOutput, error) {
	unlock := eng.Locks.Lock(in.TaskID)
	defer unlock()

	task, err := shared.GetLiveTask(ctx, eng.Tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	out := &AcknowledgeTaskOutput{Task: task}

	if err := canAcknowledge(actor, task); err != nil {
		return out, fmt.Errorf("cannot record %s: %w", action, err)
	}

	now := eng.Clock.Now()
	ack := &domain.Acknowledgment{At: now, By: actor.ID}
	patch := domain.TaskPatch{At: now, ExpectVersion: task.Version}
	next := task.Status
	if action == domain.ActionAccepted {
		patch.Accepted = ack
		if task.Status == domain.StatusPending {
			next = domain.StatusInProgress
		}
	} else {
		patch.Declined = ack
		next = domain.StatusPending
	}
	if next != task.Status {
		patch.Status = &next
	}

	updated, err := eng.Commit(ctx, task.ID, patch)
	if err != nil {
		return out, err
	}
	out.Task = updated
	eng.Transitioned(ctx, task.Status, updated.Status)

	if err := eng.Record(ctx, domain.Activity{
		TaskID:      updated.ID,
		Action:      action,
		OldValue:    string(task.Status),
		NewValue:    string(updated.Status),
		Notes:       strings.TrimSpace(in.Note),
		PerformedBy: actor.ID,
	}); err != nil {
		return out, err
	}
	eng.Logger.Info(updated.ID, "task", fmt.Sprintf("%s by %s", action, actor.ID))
	return out, nil
}

// canAcknowledge checks that actor is the current internal assignee of an
// unacknowledged, unfinished task.
func canAcknowledge(actor *domain.User, task *domain.Task) error {
	switch {
	case !task.Assignee.IsUser(actor.ID):
		return fmt.Errorf("%s is not the assignee: %w", actor.ID, domain.ErrInvalidTransition)
	case task.AcceptedAt != nil:
		return fmt.Errorf("already accepted: %w", domain.ErrInvalidTransition)
	case task.DeclinedAt != nil:
		return fmt.Errorf("already declined: %w", domain.ErrInvalidTransition)
	case task.Status.IsDone():
		return fmt.Errorf("task is %s: %w", task.Status, domain.ErrInvalidTransition)
	default:
		return nil
	}
}
