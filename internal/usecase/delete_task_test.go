package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteTask_Execute_Success(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.putTask("t1", aliceTask)
	uc := NewDeleteTask(f.eng)

	// Execute
	out, err := uc.Execute(context.Background(), DeleteTaskInput{TaskID: "t1", ActorID: "admin", Reason: "  duplicate "})

	// Assert
	require.NoError(t, err)
	task := f.stored("t1")
	assert.True(t, task.IsDeleted())
	assert.Equal(t, "admin", task.DeletedBy)
	assert.Equal(t, "duplicate", task.DeleteReason)
	assert.Equal(t, task, out.Task)

	rec := f.acts.Activities[0]
	assert.Equal(t, domain.ActionDeleted, rec.Action)
	assert.Equal(t, "duplicate", rec.Notes)
	assert.Empty(t, f.notifier.Messages())
}

func TestDeleteTask_Execute_Rejections(t *testing.T) {
	deletedAt := fixtureNow.Add(-time.Minute)

	tests := []struct {
		name    string
		mods    []func(*domain.Task)
		actor   string
		reason  string
		wantErr error
	}{
		{"empty reason", nil, "admin", " ", domain.ErrEmptyReason},
		{"assignee is not enough", []func(*domain.Task){aliceTask}, "alice", "x", domain.ErrNotAuthorized},
		{"already deleted", []func(*domain.Task){func(t *domain.Task) { t.DeletedAt = &deletedAt }}, "admin", "x", domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.putTask("t1", tt.mods...)

			_, err := NewDeleteTask(f.eng).Execute(context.Background(), DeleteTaskInput{TaskID: "t1", ActorID: tt.actor, Reason: tt.reason})

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, f.stored("t1"))
			assert.Empty(t, f.acts.Activities)
		})
	}
}

func TestDeleteTask_Execute_CreatorMayDelete(t *testing.T) {
	f := newFixture(t)
	f.putTask("t1", func(t *domain.Task) { t.CreatedBy = "bob" })

	_, err := NewDeleteTask(f.eng).Execute(context.Background(), DeleteTaskInput{TaskID: "t1", ActorID: "bob", Reason: "no longer needed"})

	require.NoError(t, err)
}

func TestDeletedTask_HiddenFromMutations(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.putTask("t1", aliceTask)
	_, err := NewDeleteTask(f.eng).Execute(context.Background(), DeleteTaskInput{TaskID: "t1", ActorID: "admin", Reason: "dup"})
	require.NoError(t, err)
	ctx := context.Background()

	// Execute / Assert
	_, err = NewAcceptTask(f.eng).Execute(ctx, AcknowledgeTaskInput{TaskID: "t1", ActorID: "alice"})
	assert.ErrorIs(t, err, domain.ErrUnknownTask)
	_, err = NewChangeStatus(f.eng).Execute(ctx, ChangeStatusInput{TaskID: "t1", ActorID: "alice", Status: domain.StatusInProgress})
	assert.ErrorIs(t, err, domain.ErrUnknownTask)
	_, err = NewAddComment(f.eng).Execute(ctx, AddCommentInput{TaskID: "t1", ActorID: "alice", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrUnknownTask)

	shown, err := NewShowTask(f.repo, f.acts, f.clock).Execute(ctx, ShowTaskInput{TaskID: "t1"})
	require.NoError(t, err)
	assert.True(t, shown.Task.IsDeleted())
}

func TestRestoreTask_Execute(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.putTask("t1", aliceTask)
	_, err := NewDeleteTask(f.eng).Execute(context.Background(), DeleteTaskInput{TaskID: "t1", ActorID: "admin", Reason: "by mistake"})
	require.NoError(t, err)

	// Execute
	out, err := NewRestoreTask(f.eng).Execute(context.Background(), RestoreTaskInput{TaskID: "t1", ActorID: "mgr"})

	// Assert
	require.NoError(t, err)
	assert.False(t, out.Task.IsDeleted())
	assert.Empty(t, out.Task.DeleteReason)
	assert.Equal(t, []domain.Action{domain.ActionDeleted, domain.ActionRestored}, f.acts.Actions())
	assert.Equal(t, "by mistake", f.acts.Activities[1].OldValue)
}

func TestRestoreTask_Execute_NotDeleted(t *testing.T) {
	f := newFixture(t)
	f.putTask("t1")

	_, err := NewRestoreTask(f.eng).Execute(context.Background(), RestoreTaskInput{TaskID: "t1", ActorID: "admin"})

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
