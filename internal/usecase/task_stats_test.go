package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/whatstask/internal/domain"
)

func TestTaskStats_Execute_Counts(t *testing.T) {
	// Setup
	f := newFixture(t)
	past := fixtureNow.Add(-24 * time.Hour)
	f.putTask("t1", aliceTask, func(t *domain.Task) { t.DueDate = &past })
	f.putTask("t2", aliceTask, withStatus(domain.StatusInProgress))
	f.putTask("t3", withStatus(domain.StatusNeedsApproval))
	f.putTask("t4", withStatus(domain.StatusCompleted), func(t *domain.Task) { t.DueDate = &past })
	f.putTask("t5", withStatus(domain.StatusClosed))
	f.putTask("t6", func(t *domain.Task) {
		t.DeletedAt, t.DeletedBy, t.DeleteReason = &past, "admin", "duplicate"
	})

	uc := NewTaskStats(f.repo, f.clock)

	// Execute
	out, err := uc.Execute(context.Background(), TaskStatsInput{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, out.Stats.Total)
	assert.Equal(t, 1, out.Stats.Pending)
	assert.Equal(t, 1, out.Stats.InProgress)
	assert.Equal(t, 1, out.Stats.NeedsApproval)
	assert.Equal(t, 2, out.Stats.Completed)
	assert.Equal(t, 1, out.Stats.Overdue, "completed tasks are never overdue")

	require.Len(t, out.Groups, len(domain.AllStatuses())+1)
	assert.Equal(t, domain.StatusPending, out.Groups[0].Status)
	assert.Len(t, out.Groups[0].Tasks, 1)
	last := out.Groups[len(out.Groups)-1]
	assert.Equal(t, domain.StatusOverdue, last.Status)
	require.Len(t, last.Tasks, 1)
	assert.Equal(t, "t1", last.Tasks[0].ID)
}

func TestTaskStats_Execute_Filters(t *testing.T) {
	f := newFixture(t)
	f.putTask("t1", aliceTask, func(t *domain.Task) { t.ProjectID = "plant" })
	f.putTask("t2", aliceTask)
	f.putTask("t3", assignedTo("bob", "Bob", bobPhone), func(t *domain.Task) { t.ProjectID = "plant" })

	tests := []struct {
		name string
		in   TaskStatsInput
		want int
	}{
		{name: "assignee", in: TaskStatsInput{AssigneeID: "alice"}, want: 2},
		{name: "project", in: TaskStatsInput{ProjectID: "plant"}, want: 2},
		{name: "both", in: TaskStatsInput{AssigneeID: "bob", ProjectID: "plant"}, want: 1},
		{name: "no match", in: TaskStatsInput{AssigneeID: "carol"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewTaskStats(f.repo, f.clock).Execute(context.Background(), tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Stats.Total)
		})
	}
}

func TestTaskStats_Execute_RepositoryError(t *testing.T) {
	f := newFixture(t)
	f.repo.ListErr = errors.New("disk on fire")

	_, err := NewTaskStats(f.repo, f.clock).Execute(context.Background(), TaskStatsInput{})

	assert.ErrorContains(t, err, "disk on fire")
}
