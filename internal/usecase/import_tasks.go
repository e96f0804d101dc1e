package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// ImportTasksInput contains the parameters for creating tasks from a file.
type ImportTasksInput struct {
	Content string // File content (Markdown with YAML frontmatter)
	ActorID string // Acting user (required)
	DryRun  bool   // If true, parse and validate without creating tasks
}

// ImportTasksOutput contains the result of creating tasks from a file.
type ImportTasksOutput struct {
	Drafts   []domain.TaskDraft // Parsed drafts
	Tasks    []*domain.Task     // Created tasks (empty in dry-run mode)
	Warnings []string           // Notification failures across all tasks
}

// ImportTasks creates one task per draft in a file.
// Every draft is validated before the first task is created.
type ImportTasks struct {
	create   *CreateTask
	resolver *shared.Resolver
	users    domain.UserDirectory
	projects domain.ProjectDirectory
}

// NewImportTasks creates a new ImportTasks use case.
func NewImportTasks(eng *shared.Engine) *ImportTasks {
	return &ImportTasks{
		create:   NewCreateTask(eng),
		resolver: eng.Resolver,
		users:    eng.Users,
		projects: eng.Projects,
	}
}

// Execute parses the content and creates the tasks in file order.
func (uc *ImportTasks) Execute(ctx context.Context, in ImportTasksInput) (*ImportTasksOutput, error) {
	drafts, err := domain.ParseTaskDrafts(in.Content)
	if err != nil {
		return nil, err
	}

	inputs := make([]CreateTaskInput, 0, len(drafts))
	for i, draft := range drafts {
		input, err := uc.toInput(ctx, draft, in.ActorID)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		inputs = append(inputs, input)
	}

	out := &ImportTasksOutput{Drafts: drafts}
	if in.DryRun {
		return out, nil
	}

	for i, input := range inputs {
		created, err := uc.create.Execute(ctx, input)
		if err != nil {
			return out, fmt.Errorf("task %d: %w", i+1, err)
		}
		out.Tasks = append(out.Tasks, created.Task)
		out.Warnings = append(out.Warnings, created.Warnings...)
	}
	return out, nil
}

// toInput converts a draft and checks everything CreateTask would reject.
func (uc *ImportTasks) toInput(ctx context.Context, draft domain.TaskDraft, actorID string) (CreateTaskInput, error) {
	input := CreateTaskInput{
		DueDate:     draft.DueDate,
		ActorID:     actorID,
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
		ProjectID:   draft.Project,
		Checklist:   draft.Checklist,
		Watchers:    draft.Watchers,
	}
	if _, err := domain.ValidateTitle(draft.Title); err != nil {
		return input, err
	}

	var candidate *shared.Candidate
	switch {
	case draft.Assignee != "":
		c := shared.InternalCandidate(draft.Assignee)
		candidate = &c
	case draft.Contact != nil:
		c := shared.ExternalCandidate(draft.Contact.Name, draft.Contact.Phone)
		candidate = &c
	}
	if candidate != nil {
		if _, err := uc.resolver.Resolve(ctx, *candidate); err != nil {
			return input, err
		}
		input.Assignee = candidate
	}

	for _, id := range draft.Watchers {
		if _, err := shared.GetActor(ctx, uc.users, id); err != nil {
			return input, fmt.Errorf("watcher: %w", err)
		}
	}
	if err := shared.CheckProject(ctx, uc.projects, strings.TrimSpace(draft.Project)); err != nil {
		return input, err
	}
	return input, nil
}
