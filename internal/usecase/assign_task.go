package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// AssignTaskInput contains the parameters for assigning a task.
type AssignTaskInput struct {
	Candidate shared.Candidate // Requested assignee (required)
	TaskID    string           // Task to assign (required)
	ActorID   string           // Acting user (required)
}

// AssignTaskOutput contains the result of assigning a task.
// On rejection after the task was loaded, Task is the unchanged task.
type AssignTaskOutput struct {
	Task     *domain.Task
	Warnings []string
}

// AssignTask is the use case for assigning a task.
// Status is left as it is; the acknowledgment of the previous assignee is cleared.
type AssignTask struct {
	eng *shared.Engine
}

// NewAssignTask creates a new AssignTask use case.
func NewAssignTask(eng *shared.Engine) *AssignTask {
	return &AssignTask{eng: eng}
}

// Execute assigns the task to the resolved candidate.
func (uc *AssignTask) Execute(ctx context.Context, in AssignTaskInput) (_ *AssignTaskOutput, err error) {
	ctx, done := uc.eng.Begin(ctx, "assign_task", in.TaskID)
	defer func() { done(err) }()

	actor, err := uc.eng.Actor(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	out, plan, err := uc.commit(ctx, actor, in)
	if err != nil {
		return out, err
	}

	var deliveries []shared.Delivery
	if plan != nil {
		deliveries = append(deliveries, shared.NewDelivery(out.Task, *plan, domain.UpdateAssigned, actor.Name()))
	}
	out.Warnings = uc.eng.Finish(ctx, out.Task, domain.ActionAssigned, actor.ID, deliveries...)
	return out, nil
}

func (uc *AssignTask) commit(ctx context.Context, actor *domain.User, in AssignTaskInput) (*AssignTaskOutput, *domain.Recipient, error) {
	unlock := uc.eng.Locks.Lock(in.TaskID)
	defer unlock()

	task, err := shared.GetLiveTask(ctx, uc.eng.Tasks, in.TaskID)
	if err != nil {
		return nil, nil, err
	}
	out := &AssignTaskOutput{Task: task}

	if task.Status.IsTerminal() {
		return out, nil, fmt.Errorf("cannot assign a %s task: %w", task.Status, domain.ErrInvalidTransition)
	}
	if task.Assignee.IsAssigned() {
		if !CanReassign(actor, task) {
			return out, nil, fmt.Errorf("%s may not reassign this task: %w", actor.ID, domain.ErrNotAuthorized)
		}
	} else if !actor.CanManage(task) {
		return out, nil, fmt.Errorf("%s may not assign this task: %w", actor.ID, domain.ErrNotAuthorized)
	}

	res, err := uc.eng.Resolver.Resolve(ctx, in.Candidate)
	if err != nil {
		return out, nil, err
	}

	previous := task.Assignee
	updated, err := uc.eng.Commit(ctx, task.ID, domain.TaskPatch{
		At:                  uc.eng.Clock.Now(),
		Assignee:            &res.Assignee,
		ResetAcknowledgment: true,
		ExpectVersion:       task.Version,
	})
	if err != nil {
		return out, nil, err
	}
	out.Task = updated

	if err := uc.eng.Record(ctx, domain.Activity{
		TaskID:                updated.ID,
		Action:                domain.ActionAssigned,
		OldValue:              previous.DisplayName(),
		NewValue:              updated.Assignee.DisplayName(),
		PerformedBy:           actor.ID,
		NotificationAttempted: res.Plan != nil,
	}); err != nil {
		return out, nil, err
	}
	uc.eng.Logger.Info(updated.ID, "task", fmt.Sprintf("assigned to %s", updated.Assignee))

	return out, res.Plan, nil
}
