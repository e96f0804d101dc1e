package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// ReassignTaskInput contains the parameters for reassigning a task.
type ReassignTaskInput struct {
	Candidate shared.Candidate // New assignee (required)
	TaskID    string           // Task to reassign (required)
	ActorID   string           // Acting user (required)
}

// ReassignTaskOutput contains the result of reassigning a task.
type ReassignTaskOutput struct {
	Task     *domain.Task
	Previous domain.Assignee // Assignee before the reassignment
	Warnings []string
}

// ReassignTask hands a task to a new owner and restarts its acknowledgment
// cycle: status goes back to pending and accept/decline are cleared.
type ReassignTask struct {
	eng *shared.Engine
}

// NewReassignTask creates a new ReassignTask use case.
func NewReassignTask(eng *shared.Engine) *ReassignTask {
	return &ReassignTask{eng: eng}
}

// Execute reassigns the task. The new assignee gets a "reassigned" message
// and the previous one, when reachable on a different phone, a
// "reassigned_away" notice. Each outcome is recorded on its own.
func (uc *ReassignTask) Execute(ctx context.Context, in ReassignTaskInput) (_ *ReassignTaskOutput, err error) {
	ctx, done := uc.eng.Begin(ctx, "reassign_task", in.TaskID)
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
		deliveries = append(deliveries, shared.NewDelivery(out.Task, *plan, domain.UpdateReassigned, actor.Name()))
	}
	if old, ok := domain.RecipientOf(out.Previous); ok && !samePhone(old, plan) {
		dl := shared.NewDelivery(out.Task, old, domain.UpdateReassignedAway, actor.Name())
		dl.Notification.NewAssignee = out.Task.Assignee.DisplayName()
		deliveries = append(deliveries, dl)
	}
	out.Warnings = uc.eng.Finish(ctx, out.Task, domain.ActionReassigned, actor.ID, deliveries...)
	return out, nil
}

func (uc *ReassignTask) commit(ctx context.Context, actor *domain.User, in ReassignTaskInput) (*ReassignTaskOutput, *domain.Recipient, error) {
	unlock := uc.eng.Locks.Lock(in.TaskID)
	defer unlock()

	task, err := shared.GetLiveTask(ctx, uc.eng.Tasks, in.TaskID)
	if err != nil {
		return nil, nil, err
	}
	out := &ReassignTaskOutput{Task: task, Previous: task.Assignee}

	if task.Status.IsTerminal() {
		return out, nil, fmt.Errorf("cannot reassign a %s task: %w", task.Status, domain.ErrInvalidTransition)
	}
	if !CanReassign(actor, task) {
		return out, nil, fmt.Errorf("%s may not reassign this task: %w", actor.ID, domain.ErrNotAuthorized)
	}

	res, err := uc.eng.Resolver.Resolve(ctx, in.Candidate)
	if err != nil {
		return out, nil, err
	}
	if res.Assignee.Equal(task.Assignee) {
		return out, nil, domain.ErrSameAssignee
	}

	pending := domain.StatusPending
	updated, err := uc.eng.Commit(ctx, task.ID, domain.TaskPatch{
		At:                  uc.eng.Clock.Now(),
		Assignee:            &res.Assignee,
		Status:              &pending,
		ResetAcknowledgment: true,
		ExpectVersion:       task.Version,
	})
	if err != nil {
		return out, nil, err
	}
	out.Task = updated
	uc.eng.Transitioned(ctx, task.Status, updated.Status)

	old, reachableBefore := domain.RecipientOf(task.Assignee)
	if err := uc.eng.Record(ctx, domain.Activity{
		TaskID:                updated.ID,
		Action:                domain.ActionReassigned,
		OldValue:              task.Assignee.DisplayName(),
		NewValue:              updated.Assignee.DisplayName(),
		PerformedBy:           actor.ID,
		NotificationAttempted: res.Plan != nil || (reachableBefore && !samePhone(old, res.Plan)),
	}); err != nil {
		return out, nil, err
	}
	uc.eng.Logger.Info(updated.ID, "task", fmt.Sprintf("reassigned from %s to %s", task.Assignee, updated.Assignee))

	return out, res.Plan, nil
}

// CanReassign reports whether actor may reassign task: privileged users,
// the creator and the current internal assignee may.
func CanReassign(actor *domain.User, task *domain.Task) bool {
	return actor.CanManage(task) || task.Assignee.IsUser(actor.ID)
}

// samePhone reports whether both recipients share a phone number.
func samePhone(a domain.Recipient, b *domain.Recipient) bool {
	return b != nil && domain.NormalizePhone(a.Phone) == domain.NormalizePhone(b.Phone)
}
