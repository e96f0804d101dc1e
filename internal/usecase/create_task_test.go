package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask_Execute_Unassigned(t *testing.T) {
	// Setup
	f := newFixture(t)
	uc := NewCreateTask(f.eng)

	// Execute
	out, err := uc.Execute(context.Background(), CreateTaskInput{
		ActorID:     "admin",
		Title:       "  Fix leaking tap  ",
		Description: " kitchen ",
		ProjectID:   " retail ",
		Checklist:   []string{"buy washer", " ", "fit washer"},
		Watchers:    []string{"bob", "alice", "bob"},
	})

	// Assert
	require.NoError(t, err)
	task := out.Task
	assert.Equal(t, "Fix leaking tap", task.Title)
	assert.Equal(t, "kitchen", task.Description)
	assert.Equal(t, "retail", task.ProjectID)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, "admin", task.CreatedBy)
	assert.Equal(t, fixtureNow, task.CreatedAt)
	assert.False(t, task.Assignee.IsAssigned())
	assert.Len(t, task.Checklist, 2)
	assert.Equal(t, []string{"alice", "bob"}, task.Watchers)
	assert.Empty(t, out.Warnings)

	assert.Equal(t, []domain.Action{domain.ActionCreated}, f.acts.Actions())
	created := f.acts.Activities[0]
	assert.Equal(t, "Unassigned", created.NewValue)
	assert.False(t, created.NotificationAttempted)
	assert.Empty(t, f.notifier.Messages())
}

func TestCreateTask_Execute_InternalAssignee(t *testing.T) {
	// Setup
	f := newFixture(t)
	uc := NewCreateTask(f.eng)
	due := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	candidate := shared.InternalCandidate("alice")

	// Execute
	out, err := uc.Execute(context.Background(), CreateTaskInput{
		ActorID:  "admin",
		Title:    "Inspect boiler",
		Priority: domain.PriorityUrgent,
		DueDate:  &due,
		Assignee: &candidate,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.InternalAssignee("alice", "Alice", alicePhone), out.Task.Assignee)
	assert.Nil(t, out.Task.AcceptedAt)

	msgs := f.notifier.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, alicePhone, msgs[0].Phone)
	n := msgs[0].Notification
	assert.Equal(t, domain.UpdateAssigned, n.UpdateType)
	assert.Equal(t, "Inspect boiler", n.TaskTitle)
	assert.Equal(t, "Ada Admin", n.PerformedBy)
	assert.Equal(t, domain.PriorityUrgent, n.Priority)
	require.NotNil(t, n.DueDate)
	assert.False(t, n.IsExternal)

	assert.Equal(t, []domain.Action{domain.ActionCreated, domain.ActionNotificationSent}, f.acts.Actions())
	assert.True(t, f.acts.Activities[0].NotificationAttempted)
}

func TestCreateTask_Execute_ExternalAssignee(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateTask(f.eng)
	candidate := shared.ExternalCandidate("  Joe Plumber ", "+1 (555) 010-2000")

	out, err := uc.Execute(context.Background(), CreateTaskInput{
		ActorID:  "alice",
		Title:    "Unblock drain",
		Assignee: &candidate,
	})

	require.NoError(t, err)
	assert.True(t, out.Task.Assignee.IsExternal())
	assert.Equal(t, "Joe Plumber", out.Task.Assignee.Name)
	msgs := f.notifier.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, out.Task.Assignee.Phone, msgs[0].Phone)
	assert.True(t, msgs[0].Notification.IsExternal)
}

func TestCreateTask_Execute_AssigneeWithoutPhone(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateTask(f.eng)
	candidate := shared.InternalCandidate("carol")

	out, err := uc.Execute(context.Background(), CreateTaskInput{ActorID: "admin", Title: "Sweep yard", Assignee: &candidate})

	require.NoError(t, err)
	assert.True(t, out.Task.Assignee.IsUser("carol"))
	assert.Empty(t, f.notifier.Messages())
	assert.False(t, f.acts.Activities[0].NotificationAttempted)
}

func TestCreateTask_Execute_NotificationFailureKeepsTask(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.notifier.FailAll = true
	uc := NewCreateTask(f.eng)
	candidate := shared.InternalCandidate("alice")

	// Execute
	out, err := uc.Execute(context.Background(), CreateTaskInput{ActorID: "admin", Title: "Inspect boiler", Assignee: &candidate})

	// Assert
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "assigned notification to Alice")
	assert.Len(t, f.repo.Tasks, 1)
	assert.Equal(t, 1, f.acts.Count(domain.ActionNotificationFailed))
}

func TestCreateTask_Execute_Rejections(t *testing.T) {
	badContact := shared.ExternalCandidate("J", "12")
	unknown := shared.InternalCandidate("nobody")

	tests := []struct {
		name    string
		input   CreateTaskInput
		wantErr error
	}{
		{"empty title", CreateTaskInput{ActorID: "admin", Title: "   "}, domain.ErrEmptyTitle},
		{"short title", CreateTaskInput{ActorID: "admin", Title: " ab "}, domain.ErrTitleTooShort},
		{"bad priority", CreateTaskInput{ActorID: "admin", Title: "Valid", Priority: "asap"}, domain.ErrInvalidPriority},
		{"missing actor", CreateTaskInput{Title: "Valid"}, domain.ErrMissingActor},
		{"unknown actor", CreateTaskInput{ActorID: "ghost", Title: "Valid"}, domain.ErrUserNotFound},
		{"bad contact", CreateTaskInput{ActorID: "admin", Title: "Valid", Assignee: &badContact}, domain.ErrInvalidExternalContact},
		{"unknown assignee", CreateTaskInput{ActorID: "admin", Title: "Valid", Assignee: &unknown}, domain.ErrUnknownUser},
		{"unknown watcher", CreateTaskInput{ActorID: "admin", Title: "Valid", Watchers: []string{"bob", "ghost"}}, domain.ErrUserNotFound},
		{"unknown project", CreateTaskInput{ActorID: "admin", Title: "Valid", ProjectID: "warehouse"}, domain.ErrProjectNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			uc := NewCreateTask(f.eng)

			out, err := uc.Execute(context.Background(), tt.input)

			assert.Nil(t, out)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsRejection(err))
			assert.Empty(t, f.repo.Tasks)
			assert.Empty(t, f.acts.Activities)
			assert.Empty(t, f.notifier.Messages())
		})
	}
}
