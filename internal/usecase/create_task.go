// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// CreateTaskInput contains the parameters for creating a new task.
// Fields are ordered to minimize memory padding.
type CreateTaskInput struct {
	DueDate     *time.Time        // Due date (optional)
	Assignee    *shared.Candidate // Initial assignee (optional)
	ActorID     string            // Acting user (required)
	Title       string            // Task title (required, trimmed length >= 3)
	Description string            // Task description (optional)
	Priority    domain.Priority   // Priority (empty = medium)
	ProjectID   string            // Project grouping (optional)
	Checklist   []string          // Checklist item texts (optional)
	Watchers    []string          // Watcher user IDs (optional)
}

// CreateTaskOutput contains the result of creating a new task.
type CreateTaskOutput struct {
	Task     *domain.Task // The created task
	Warnings []string     // Notification failures (advisory)
}

// CreateTask is the use case for creating a new task.
type CreateTask struct {
	eng *shared.Engine
}

// NewCreateTask creates a new CreateTask use case.
func NewCreateTask(eng *shared.Engine) *CreateTask {
	return &CreateTask{eng: eng}
}

// Execute creates a task, folding an optional initial assignment into the
// same creation. Validation and resolution happen before anything is written.
func (uc *CreateTask) Execute(ctx context.Context, in CreateTaskInput) (_ *CreateTaskOutput, err error) {
	ctx, done := uc.eng.Begin(ctx, "create_task", "")
	defer func() { done(err) }()

	title, err := domain.ValidateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("%q: %w", priority, domain.ErrInvalidPriority)
	}

	actor, err := uc.eng.Actor(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}
	for _, id := range in.Watchers {
		if _, err := shared.GetActor(ctx, uc.eng.Users, id); err != nil {
			return nil, fmt.Errorf("watcher: %w", err)
		}
	}
	projectID := strings.TrimSpace(in.ProjectID)
	if err := shared.CheckProject(ctx, uc.eng.Projects, projectID); err != nil {
		return nil, err
	}

	assignee := domain.Unassigned()
	var plan *domain.Recipient
	if in.Assignee != nil {
		res, resolveErr := uc.eng.Resolver.Resolve(ctx, *in.Assignee)
		if resolveErr != nil {
			return nil, resolveErr
		}
		assignee, plan = res.Assignee, res.Plan
	}

	now := uc.eng.Clock.Now()
	task := &domain.Task{
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     in.DueDate,
		Assignee:    assignee,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      domain.StatusPending,
		Priority:    priority,
		ProjectID:   projectID,
		CreatedBy:   actor.ID,
		Checklist:   newChecklist(in.Checklist),
		Watchers:    updateWatchers(nil, in.Watchers, nil),
	}

	created, err := uc.eng.Tasks.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if err := uc.eng.Record(ctx, domain.Activity{
		TaskID:                created.ID,
		Action:                domain.ActionCreated,
		NewValue:              created.Assignee.DisplayName(),
		Notes:                 created.Title,
		PerformedBy:           actor.ID,
		NotificationAttempted: plan != nil,
	}); err != nil {
		return nil, err
	}
	uc.eng.Logger.Info(created.ID, "task", fmt.Sprintf("created %q assigned to %s", created.Title, created.Assignee))

	var deliveries []shared.Delivery
	if plan != nil {
		deliveries = append(deliveries, shared.NewDelivery(created, *plan, domain.UpdateAssigned, actor.Name()))
	}
	warnings := uc.eng.Finish(ctx, created, domain.ActionCreated, actor.ID, deliveries...)

	return &CreateTaskOutput{Task: created, Warnings: warnings}, nil
}

// newChecklist builds unchecked items from texts, skipping blank ones.
func newChecklist(texts []string) []domain.ChecklistItem {
	var items []domain.ChecklistItem
	for _, text := range texts {
		if text = strings.TrimSpace(text); text != "" {
			items = append(items, domain.ChecklistItem{Text: text})
		}
	}
	return items
}
