package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActivities_Execute(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.putTask("t1", aliceTask)
	f.putTask("t2")
	comment := NewAddComment(f.eng)
	_, err := comment.Execute(context.Background(), AddCommentInput{TaskID: "t1", ActorID: "bob", Message: "first"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = NewAcceptTask(f.eng).Execute(context.Background(), AcknowledgeTaskInput{TaskID: "t1", ActorID: "alice"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = comment.Execute(context.Background(), AddCommentInput{TaskID: "t2", ActorID: "bob", Message: "second"})
	require.NoError(t, err)

	uc := NewListActivities(f.repo, f.acts)

	tests := []struct {
		name string
		in   ListActivitiesInput
		want []string
	}{
		{"newest first", ListActivitiesInput{}, []string{"second", "", "first"}},
		{"by action", ListActivitiesInput{Actions: []domain.Action{domain.ActionCommented}}, []string{"second", "first"}},
		{"by actor", ListActivitiesInput{PerformedBy: "alice"}, []string{""}},
		{"since", ListActivitiesInput{Since: fixtureNow.Add(time.Minute)}, []string{"second", ""}},
		{"limit", ListActivitiesInput{Limit: 1}, []string{"second"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Execute
			out, err := uc.Execute(context.Background(), tt.in)

			// Assert
			require.NoError(t, err)
			got := make([]string, 0, len(out.Activities))
			for _, a := range out.Activities {
				got = append(got, a.Activity.Notes)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
