package shared

import (
	"context"
	"fmt"

	"github.com/runoshun/whatstask/internal/domain"
)

// Engine bundles the collaborators every lifecycle use case needs.
// Fields are ordered to minimize memory padding.
type Engine struct {
	Tasks      domain.TaskRepository
	Activities domain.ActivityRecorder
	Users      domain.UserDirectory
	Projects   domain.ProjectDirectory
	Clock      domain.Clock
	Logger     domain.Logger
	Telemetry  Telemetry
	Resolver   *Resolver
	Dispatcher *Dispatcher
	Locks      *TaskLocks
	Events     *Events
}

// EngineDeps are the ports an Engine is assembled from.
type EngineDeps struct {
	Tasks      domain.TaskRepository
	Activities domain.ActivityRecorder
	Users      domain.UserDirectory
	Projects   domain.ProjectDirectory // nil = project IDs are not checked
	Notifier   domain.Notifier
	Clock      domain.Clock
	Logger     domain.Logger
	Telemetry  Telemetry // nil = NopTelemetry
	Dispatch   DispatcherOptions
}

// NewEngine wires an Engine with a fresh resolver, dispatcher, lock table
// and observer hub.
func NewEngine(deps EngineDeps) *Engine {
	tel := deps.Telemetry
	if tel == nil {
		tel = NopTelemetry{}
	}
	return &Engine{
		Tasks:      deps.Tasks,
		Activities: deps.Activities,
		Users:      deps.Users,
		Projects:   deps.Projects,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
		Telemetry:  tel,
		Resolver:   NewResolver(deps.Users),
		Dispatcher: NewDispatcher(deps.Notifier, deps.Activities, deps.Clock, deps.Logger, tel, deps.Dispatch),
		Locks:      NewTaskLocks(),
		Events:     NewEvents(),
	}
}

// Begin detaches ctx from caller cancellation, since a lifecycle operation
// always runs to completion once issued, and starts the operation span.
func (e *Engine) Begin(ctx context.Context, op, taskID string) (context.Context, func(error)) {
	return e.Telemetry.TrackOperation(context.WithoutCancel(ctx), op, taskID)
}

// Actor returns the acting user.
func (e *Engine) Actor(ctx context.Context, actorID string) (*domain.User, error) {
	return GetActor(ctx, e.Users, actorID)
}

// Record appends an activity stamped with the current time.
func (e *Engine) Record(ctx context.Context, a domain.Activity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = e.Clock.Now()
	}
	if err := e.Activities.Append(ctx, &a); err != nil {
		return fmt.Errorf("record %s: %w", a.Action, err)
	}
	return nil
}

// Commit applies patch to the stored task.
func (e *Engine) Commit(ctx context.Context, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := e.Tasks.Update(ctx, taskID, patch)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Finish dispatches deliveries and notifies observers of the change.
// It runs outside the task lock and returns the advisory warnings.
func (e *Engine) Finish(ctx context.Context, task *domain.Task, action domain.Action, actorID string, deliveries ...Delivery) []string {
	warnings := e.Dispatcher.Dispatch(ctx, actorID, deliveries...)
	e.Events.Publish(TaskChange{Task: task, Action: action, ActorID: actorID})
	return warnings
}

// Transitioned records a status change for telemetry when one happened.
func (e *Engine) Transitioned(ctx context.Context, from, to domain.Status) {
	if from != to {
		e.Telemetry.RecordTransition(ctx, from, to)
	}
}
