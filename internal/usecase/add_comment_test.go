package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment_Execute_Success(t *testing.T) {
	// Setup
	f := newFixture(t)
	before := f.putTask("t1", aliceTask)
	uc := NewAddComment(f.eng)

	// Execute
	out, err := uc.Execute(context.Background(), AddCommentInput{TaskID: "t1", ActorID: "bob", Message: "  parts arrive Friday  "})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.ActionCommented, out.Activity.Action)
	assert.Equal(t, "parts arrive Friday", out.Activity.Notes)
	assert.Equal(t, "bob", out.Activity.PerformedBy)
	assert.Equal(t, fixtureNow, out.Activity.CreatedAt)
	assert.Equal(t, before, f.stored("t1"), "comments do not touch the task")
	assert.Equal(t, 1, f.acts.Count(domain.ActionCommented))
}

func TestAddComment_Execute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		in      AddCommentInput
		wantErr error
	}{
		{"empty message", AddCommentInput{TaskID: "t1", ActorID: "bob", Message: " \n "}, domain.ErrEmptyMessage},
		{"unknown task", AddCommentInput{TaskID: "t9", ActorID: "bob", Message: "hi"}, domain.ErrTaskNotFound},
		{"unknown actor", AddCommentInput{TaskID: "t1", ActorID: "ghost", Message: "hi"}, domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.putTask("t1")

			_, err := NewAddComment(f.eng).Execute(context.Background(), tt.in)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.acts.Activities)
		})
	}
}
