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

func TestAssignTask_Execute_ResetsAcknowledgment(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.putTask("t1", aliceTask, acceptedBy("alice"), withStatus(domain.StatusInProgress))
	uc := NewAssignTask(f.eng)

	// Execute
	out, err := uc.Execute(context.Background(), AssignTaskInput{
		TaskID:    "t1",
		ActorID:   "admin",
		Candidate: shared.InternalCandidate("bob"),
	})

	// Assert
	require.NoError(t, err)
	task := f.stored("t1")
	assert.True(t, task.Assignee.IsUser("bob"))
	assert.Nil(t, task.AcceptedAt)
	assert.Empty(t, task.AcceptedBy)
	assert.Equal(t, domain.StatusInProgress, task.Status, "assign leaves status alone")
	assert.Equal(t, 2, task.Version)
	assert.Equal(t, task, out.Task)

	assigned := f.acts.Activities[0]
	assert.Equal(t, domain.ActionAssigned, assigned.Action)
	assert.Equal(t, "Alice", assigned.OldValue)
	assert.Equal(t, "Bob", assigned.NewValue)

	msgs := f.notifier.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, bobPhone, msgs[0].Phone)
	assert.Equal(t, domain.UpdateAssigned, msgs[0].Notification.UpdateType)
}

func TestAssignTask_Execute_NoPhoneNoNotification(t *testing.T) {
	f := newFixture(t)
	f.putTask("t1")
	uc := NewAssignTask(f.eng)

	_, err := uc.Execute(context.Background(), AssignTaskInput{TaskID: "t1", ActorID: "admin", Candidate: shared.InternalCandidate("carol")})

	require.NoError(t, err)
	assert.Empty(t, f.notifier.Messages())
	assert.Equal(t, []domain.Action{domain.ActionAssigned}, f.acts.Actions())
	assert.False(t, f.acts.Activities[0].NotificationAttempted)
}

func TestAssignTask_Execute_Rejections(t *testing.T) {
	deletedAt := fixtureNow.Add(-time.Minute)

	unassigned := func(t *domain.Task) { t.Assignee = domain.Assignee{} }

	tests := []struct {
		name      string
		actor     string
		task      func(*domain.Task)
		taskID    string
		candidate shared.Candidate
		wantErr   error
	}{
		{"closed task", "admin", withStatus(domain.StatusClosed), "t1", shared.InternalCandidate("bob"), domain.ErrInvalidTransition},
		{"deleted task", "admin", func(t *domain.Task) { t.DeletedAt = &deletedAt }, "t1", shared.InternalCandidate("bob"), domain.ErrUnknownTask},
		{"missing task", "admin", nil, "nope", shared.InternalCandidate("bob"), domain.ErrUnknownTask},
		{"unknown user", "admin", nil, "t1", shared.InternalCandidate("ghost"), domain.ErrUnknownUser},
		{"bad contact", "admin", nil, "t1", shared.ExternalCandidate("Jo", "abc"), domain.ErrInvalidExternalContact},
		{"stranger takes accepted task", "bob", func(t *domain.Task) {
			acceptedBy("alice")(t)
			withStatus(domain.StatusInProgress)(t)
		}, "t1", shared.InternalCandidate("bob"), domain.ErrNotAuthorized},
		{"stranger hands task to another", "carol", nil, "t1", shared.InternalCandidate("bob"), domain.ErrNotAuthorized},
		{"first assignment by non-manager", "carol", unassigned, "t1", shared.InternalCandidate("carol"), domain.ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			mods := []func(*domain.Task){aliceTask}
			if tt.task != nil {
				mods = append(mods, tt.task)
			}
			before := f.putTask("t1", mods...)

			_, err := NewAssignTask(f.eng).Execute(context.Background(), AssignTaskInput{
				TaskID: tt.taskID, ActorID: tt.actor, Candidate: tt.candidate,
			})

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, f.stored("t1"))
			assert.Empty(t, f.acts.Activities)
			assert.Empty(t, f.notifier.Messages())
		})
	}
}

func TestAssignTask_Execute_Permissions(t *testing.T) {
	tests := []struct {
		name  string
		actor string
		task  func(*domain.Task)
	}{
		{"manager reassigns", "mgr", aliceTask},
		{"assignee hands off", "alice", aliceTask},
		{"creator assigns first", "carol", func(t *domain.Task) { t.CreatedBy = "carol" }},
		{"admin assigns first", "admin", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			f := newFixture(t)
			var mods []func(*domain.Task)
			if tt.task != nil {
				mods = append(mods, tt.task)
			}
			f.putTask("t1", mods...)

			// Execute
			_, err := NewAssignTask(f.eng).Execute(context.Background(), AssignTaskInput{
				TaskID: "t1", ActorID: tt.actor, Candidate: shared.InternalCandidate("bob"),
			})

			// Assert
			require.NoError(t, err)
			assert.True(t, f.stored("t1").Assignee.IsUser("bob"))
		})
	}
}
