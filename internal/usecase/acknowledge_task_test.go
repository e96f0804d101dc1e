package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptTask_Execute_Pending(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.putTask("t1", aliceTask)
	uc := NewAcceptTask(f.eng)

	// Execute
	out, err := uc.Execute(context.Background(), AcknowledgeTaskInput{TaskID: "t1", ActorID: "alice", Note: " on my way "})

	// Assert
	require.NoError(t, err)
	task := f.stored("t1")
	assert.Equal(t, domain.StatusInProgress, task.Status)
	require.NotNil(t, task.AcceptedAt)
	assert.Equal(t, fixtureNow, *task.AcceptedAt)
	assert.Equal(t, "alice", task.AcceptedBy)
	assert.Nil(t, task.DeclinedAt)
	assert.Equal(t, task, out.Task)

	rec := f.acts.Activities[0]
	assert.Equal(t, domain.ActionAccepted, rec.Action)
	assert.Equal(t, "pending", rec.OldValue)
	assert.Equal(t, "in_progress", rec.NewValue)
	assert.Equal(t, "on my way", rec.Notes)
	assert.Empty(t, f.notifier.Messages())
}

func TestAcceptTask_Execute_KeepsLaterStatus(t *testing.T) {
	f := newFixture(t)
	f.putTask("t1", aliceTask, withStatus(domain.StatusNeedsApproval))

	_, err := NewAcceptTask(f.eng).Execute(context.Background(), AcknowledgeTaskInput{TaskID: "t1", ActorID: "alice"})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusNeedsApproval, f.stored("t1").Status)
}

func TestAcceptTask_Execute_SecondAcceptRejected(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.putTask("t1", aliceTask)
	uc := NewAcceptTask(f.eng)
	_, err := uc.Execute(context.Background(), AcknowledgeTaskInput{TaskID: "t1", ActorID: "alice"})
	require.NoError(t, err)
	after := f.stored("t1")
	f.clock.Advance(10 * time.Minute)

	// Execute
	out, err := uc.Execute(context.Background(), AcknowledgeTaskInput{TaskID: "t1", ActorID: "alice"})

	// Assert
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, after, out.Task)
	assert.Equal(t, after, f.stored("t1"))
	assert.Equal(t, 1, f.acts.Count(domain.ActionAccepted))
}

func TestDeclineTask_Execute(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.putTask("t1", aliceTask, withStatus(domain.StatusInProgress))

	// Execute
	_, err := NewDeclineTask(f.eng).Execute(context.Background(), AcknowledgeTaskInput{TaskID: "t1", ActorID: "alice", Note: "on leave"})

	// Assert
	require.NoError(t, err)
	task := f.stored("t1")
	assert.Equal(t, domain.StatusPending, task.Status)
	require.NotNil(t, task.DeclinedAt)
	assert.Equal(t, "alice", task.DeclinedBy)
	assert.Nil(t, task.AcceptedAt)
	assert.True(t, task.Assignee.IsUser("alice"), "declining keeps the assignee until reassigned")
	assert.Equal(t, []domain.Action{domain.ActionDeclined}, f.acts.Actions())
}

func TestAcknowledge_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mods   []func(*domain.Task)
		actor  string
		accept bool
	}{
		{"accept by non-assignee", []func(*domain.Task){aliceTask}, "bob", true},
		{"accept by admin", []func(*domain.Task){aliceTask}, "admin", true},
		{"decline by non-assignee", []func(*domain.Task){aliceTask}, "bob", false},
		{"accept unassigned", nil, "alice", true},
		{"accept external", []func(*domain.Task){func(t *domain.Task) { t.Assignee = domain.ExternalAssignee("Joe", "5550102000") }}, "alice", true},
		{"decline after accept", []func(*domain.Task){aliceTask, acceptedBy("alice"), withStatus(domain.StatusInProgress)}, "alice", false},
		{"accept completed", []func(*domain.Task){aliceTask, withStatus(domain.StatusCompleted)}, "alice", true},
		{"decline closed", []func(*domain.Task){aliceTask, withStatus(domain.StatusClosed)}, "alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.putTask("t1", tt.mods...)
			in := AcknowledgeTaskInput{TaskID: "t1", ActorID: tt.actor}

			var err error
			if tt.accept {
				_, err = NewAcceptTask(f.eng).Execute(context.Background(), in)
			} else {
				_, err = NewDeclineTask(f.eng).Execute(context.Background(), in)
			}

			require.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.Equal(t, before, f.stored("t1"))
			assert.Empty(t, f.acts.Activities)
		})
	}
}

func TestAcceptTask_Execute_AfterReassignment(t *testing.T) {
	// A new assignee can accept even though the previous one had accepted.
	f := newFixture(t)
	f.putTask("t1", aliceTask, acceptedBy("alice"), withStatus(domain.StatusInProgress))
	_, err := NewAssignTask(f.eng).Execute(context.Background(), AssignTaskInput{
		TaskID: "t1", ActorID: "admin", Candidate: internal("bob"),
	})
	require.NoError(t, err)

	_, err = NewAcceptTask(f.eng).Execute(context.Background(), AcknowledgeTaskInput{TaskID: "t1", ActorID: "bob"})

	require.NoError(t, err)
	assert.Equal(t, "bob", f.stored("t1").AcceptedBy)
}
