package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// EditTaskInput contains the parameters for editing a task.
// All fields except TaskID and ActorID are optional. Only non-nil/non-empty fields will be updated.
// Fields are ordered to minimize memory padding.
type EditTaskInput struct {
	Title           *string          // New title (nil = no change)
	Description     *string          // New description (nil = no change)
	Priority        *domain.Priority // New priority (nil = no change)
	ProjectID       *string          // New project (nil = no change)
	DueDate         *time.Time       // New due date (nil = no change)
	TaskID          string           // Task ID to edit (required)
	ActorID         string           // Acting user (required)
	AddChecklist    []string         // Item texts to append
	ToggleChecklist []int            // Zero-based indexes to flip
	RemoveChecklist []int            // Zero-based indexes to remove (after toggles)
	AddWatchers     []string         // User IDs to add
	RemoveWatchers  []string         // User IDs to remove
	ClearDueDate    bool             // Remove the due date
}

func (in *EditTaskInput) hasChanges() bool {
	return in.Title != nil || in.Description != nil || in.Priority != nil || in.ProjectID != nil ||
		in.DueDate != nil || in.ClearDueDate ||
		len(in.AddChecklist) > 0 || len(in.ToggleChecklist) > 0 || len(in.RemoveChecklist) > 0 ||
		len(in.AddWatchers) > 0 || len(in.RemoveWatchers) > 0
}

// EditTaskOutput contains the result of editing a task.
type EditTaskOutput struct {
	Task     *domain.Task // The updated task
	Changed  []string     // Names of the fields that changed
	Warnings []string
}

// EditTask is the use case for editing an existing task.
// Status and assignee are not editable here; they have their own use cases.
type EditTask struct {
	eng *shared.Engine
}

// NewEditTask creates a new EditTask use case.
func NewEditTask(eng *shared.Engine) *EditTask {
	return &EditTask{eng: eng}
}

// Execute edits a task with the given input. A reachable assignee is sent
// a "modified" notification.
func (uc *EditTask) Execute(ctx context.Context, in EditTaskInput) (_ *EditTaskOutput, err error) {
	ctx, done := uc.eng.Begin(ctx, "edit_task", in.TaskID)
	defer func() { done(err) }()

	// Validate that at least one field is being updated
	if !in.hasChanges() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if in.Priority != nil && !in.Priority.IsValid() {
		return nil, fmt.Errorf("%q: %w", *in.Priority, domain.ErrInvalidPriority)
	}

	actor, err := uc.eng.Actor(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}
	for _, id := range in.AddWatchers {
		if _, err := shared.GetActor(ctx, uc.eng.Users, id); err != nil {
			return nil, fmt.Errorf("watcher: %w", err)
		}
	}
	if in.ProjectID != nil {
		if err := shared.CheckProject(ctx, uc.eng.Projects, strings.TrimSpace(*in.ProjectID)); err != nil {
			return nil, err
		}
	}

	out, err := uc.commit(ctx, actor, in)
	if err != nil {
		return out, err
	}

	var deliveries []shared.Delivery
	if rcpt, ok := domain.RecipientOf(out.Task.Assignee); ok {
		deliveries = append(deliveries, shared.NewDelivery(out.Task, rcpt, domain.UpdateModified, actor.Name()))
	}
	out.Warnings = uc.eng.Finish(ctx, out.Task, domain.ActionUpdated, actor.ID, deliveries...)
	return out, nil
}

func (uc *EditTask) commit(ctx context.Context, actor *domain.User, in EditTaskInput) (*EditTaskOutput, error) {
	unlock := uc.eng.Locks.Lock(in.TaskID)
	defer unlock()

	task, err := shared.GetLiveTask(ctx, uc.eng.Tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	out := &EditTaskOutput{Task: task}

	if !actor.CanManage(task) && !task.Assignee.IsUser(actor.ID) {
		return out, fmt.Errorf("%s may not edit this task: %w", actor.ID, domain.ErrNotAuthorized)
	}

	patch, changed, err := buildEditPatch(task, in)
	if err != nil {
		return out, err
	}
	if len(changed) == 0 {
		return out, domain.ErrNoFieldsToUpdate
	}
	patch.At = uc.eng.Clock.Now()
	patch.ExpectVersion = task.Version

	updated, err := uc.eng.Commit(ctx, task.ID, patch)
	if err != nil {
		return out, err
	}
	out.Task, out.Changed = updated, changed

	if err := uc.eng.Record(ctx, domain.Activity{
		TaskID:                updated.ID,
		Action:                domain.ActionUpdated,
		NewValue:              strings.Join(changed, ", "),
		PerformedBy:           actor.ID,
		NotificationAttempted: updated.Assignee.Reachable(),
	}); err != nil {
		return out, err
	}
	uc.eng.Logger.Info(updated.ID, "task", "updated "+strings.Join(changed, ", "))
	return out, nil
}

// buildEditPatch turns the input into a patch and the list of fields that
// actually differ from task.
func buildEditPatch(task *domain.Task, in EditTaskInput) (domain.TaskPatch, []string, error) {
	var patch domain.TaskPatch
	var changed []string

	if in.Title != nil {
		title, err := domain.ValidateTitle(*in.Title)
		if err != nil {
			return patch, nil, err
		}
		if title != task.Title {
			patch.Title = &title
			changed = append(changed, "title")
		}
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc != task.Description {
			patch.Description = &desc
			changed = append(changed, "description")
		}
	}
	if in.Priority != nil && *in.Priority != task.Priority {
		patch.Priority = in.Priority
		changed = append(changed, "priority")
	}
	if in.ProjectID != nil {
		project := strings.TrimSpace(*in.ProjectID)
		if project != task.ProjectID {
			patch.ProjectID = &project
			changed = append(changed, "project")
		}
	}
	switch {
	case in.ClearDueDate:
		if task.DueDate != nil {
			patch.ClearDueDate = true
			changed = append(changed, "due date")
		}
	case in.DueDate != nil:
		if task.DueDate == nil || !task.DueDate.Equal(*in.DueDate) {
			patch.DueDate = in.DueDate
			changed = append(changed, "due date")
		}
	}

	if len(in.AddChecklist) > 0 || len(in.ToggleChecklist) > 0 || len(in.RemoveChecklist) > 0 {
		items, err := editChecklist(task.Checklist, in.AddChecklist, in.ToggleChecklist, in.RemoveChecklist)
		if err != nil {
			return patch, nil, err
		}
		if !slices.Equal(items, task.Checklist) {
			patch.Checklist = &items
			changed = append(changed, "checklist")
		}
	}

	if len(in.AddWatchers) > 0 || len(in.RemoveWatchers) > 0 {
		watchers := updateWatchers(task.Watchers, in.AddWatchers, in.RemoveWatchers)
		if !slices.Equal(watchers, task.Watchers) {
			patch.Watchers = &watchers
			changed = append(changed, "watchers")
		}
	}

	return patch, changed, nil
}

// editChecklist flips the toggled items, drops the removed ones and appends
// new items. Indexes refer to current.
func editChecklist(current []domain.ChecklistItem, add []string, toggle, remove []int) ([]domain.ChecklistItem, error) {
	items := slices.Clone(current)
	for _, i := range slices.Concat(toggle, remove) {
		if i < 0 || i >= len(items) {
			return nil, fmt.Errorf("item %d of %d: %w", i+1, len(items), domain.ErrChecklistIndex)
		}
	}
	for _, i := range toggle {
		items[i].Completed = !items[i].Completed
	}

	drop := make(map[int]bool, len(remove))
	for _, i := range remove {
		drop[i] = true
	}
	kept := items[:0]
	for i, item := range items {
		if !drop[i] {
			kept = append(kept, item)
		}
	}

	kept = append(kept, newChecklist(add)...)
	if len(kept) == 0 {
		return nil, nil
	}
	return kept, nil
}

// updateWatchers adds and removes watchers from the current set.
// Returns a new sorted slice with duplicates removed.
func updateWatchers(current, add, remove []string) []string {
	// Create a set of watchers to remove
	removeSet := make(map[string]bool, len(remove))
	for _, id := range remove {
		removeSet[id] = true
	}

	// Start with current watchers (excluding ones to remove)
	watcherSet := make(map[string]bool)
	for _, id := range current {
		if !removeSet[id] {
			watcherSet[id] = true
		}
	}

	// Add new watchers
	for _, id := range add {
		if id != "" && !removeSet[id] { // Don't add if it's also being removed
			watcherSet[id] = true
		}
	}

	// Convert back to slice
	if len(watcherSet) == 0 {
		return nil
	}

	result := make([]string, 0, len(watcherSet))
	for id := range watcherSet {
		result = append(result, id)
	}

	slices.Sort(result)
	return result
}
