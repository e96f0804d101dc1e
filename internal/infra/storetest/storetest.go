// Package storetest holds the behavior shared by every task store backend,
// so each backend runs the same checks against its own storage.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/whatstask/internal/domain"
)

// Store is the full set of ports a backend provides.
type Store interface {
	domain.TaskRepository
	domain.ActivityRecorder
	domain.TaskImporter
}

// Factory returns a fresh, initialized store.
type Factory func(t *testing.T) Store

// Base is the reference time for tasks created by the suite. Whole seconds
// so every backend round-trips it exactly.
var Base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// NewTask returns a pending task created by "admin" at Base+offset.
func NewTask(title string, offset time.Duration) *domain.Task {
	at := Base.Add(offset)
	return &domain.Task{
		Title:     title,
		Status:    domain.StatusPending,
		Priority:  domain.PriorityMedium,
		CreatedBy: "admin",
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// Run executes the shared store behavior against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		s := newStore(t)
		due := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
		task := NewTask("Fix the fence", 0)
		task.Description = "north side"
		task.DueDate = &due
		task.ProjectID = "garden"
		task.Assignee = domain.InternalAssignee("alice", "Alice", "15550000002")
		task.Checklist = []domain.ChecklistItem{{Text: "buy nails"}, {Text: "paint", Completed: true}}
		task.Watchers = []string{"bob"}

		created, err := s.Create(ctx, task)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, 1, created.Version)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Fix the fence", got.Title)
		assert.Equal(t, "north side", got.Description)
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.Equal(t, "garden", got.ProjectID)
		assert.True(t, got.CreatedAt.Equal(Base))
		require.NotNil(t, got.DueDate)
		assert.True(t, got.DueDate.Equal(due))
		assert.Equal(t, task.Assignee, got.Assignee)
		assert.Equal(t, task.Checklist, got.Checklist)
		assert.Equal(t, []string{"bob"}, got.Watchers)
	})

	t.Run("CreateKeepsGivenID", func(t *testing.T) {
		s := newStore(t)
		task := NewTask("Given id", 0)
		task.ID = "0190aaaa-0000-7000-8000-000000000001"

		created, err := s.Create(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, task.ID, created.ID)

		_, err = s.Create(ctx, task)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		got, err := s.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("UpdateAppliesPatch", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, NewTask("Patch me", 0))
		require.NoError(t, err)

		status := domain.StatusInProgress
		assignee := domain.ExternalAssignee("Plumber", "15550001111")
		at := Base.Add(time.Hour)
		updated, err := s.Update(ctx, created.ID, domain.TaskPatch{
			At:            at,
			Status:        &status,
			Assignee:      &assignee,
			Accepted:      &domain.Acknowledgment{At: at, By: "plumber"},
			ExpectVersion: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, domain.StatusInProgress, updated.Status)
		assert.True(t, updated.UpdatedAt.Equal(at))

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, assignee, got.Assignee)
		require.NotNil(t, got.AcceptedAt)
		assert.Equal(t, "plumber", got.AcceptedBy)
	})

	t.Run("UpdateVersionConflict", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, NewTask("Conflict", 0))
		require.NoError(t, err)

		title := "Changed"
		_, err = s.Update(ctx, created.ID, domain.TaskPatch{Title: &title, ExpectVersion: 7})
		assert.ErrorIs(t, err, domain.ErrConflict)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Conflict", got.Title)
		assert.Equal(t, 1, got.Version)
	})

	t.Run("UpdateRejectsInvariantBreak", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, NewTask("Unassigned", 0))
		require.NoError(t, err)

		_, err = s.Update(ctx, created.ID, domain.TaskPatch{
			Accepted: &domain.Acknowledgment{At: Base, By: "alice"},
		})
		assert.ErrorIs(t, err, domain.ErrAcknowledgmentConflict)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.AcceptedAt)
		assert.Equal(t, 1, got.Version)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)
		title := "x"
		_, err := s.Update(ctx, "missing", domain.TaskPatch{Title: &title})
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("ClearDueDate", func(t *testing.T) {
		s := newStore(t)
		due := Base.AddDate(0, 0, 2)
		task := NewTask("Due soon", 0)
		task.DueDate = &due
		created, err := s.Create(ctx, task)
		require.NoError(t, err)

		_, err = s.Update(ctx, created.ID, domain.TaskPatch{ClearDueDate: true})
		require.NoError(t, err)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.DueDate)
	})

	t.Run("SoftDeleteAndRestore", func(t *testing.T) {
		s := newStore(t)
		live, err := s.Create(ctx, NewTask("Live", 0))
		require.NoError(t, err)
		gone, err := s.Create(ctx, NewTask("Gone", time.Minute))
		require.NoError(t, err)

		deleted, err := s.SoftDelete(ctx, gone.ID, domain.Deletion{At: Base.Add(time.Hour), By: "admin", Reason: "duplicate"})
		require.NoError(t, err)
		assert.True(t, deleted.IsDeleted())
		assert.Equal(t, "duplicate", deleted.DeleteReason)

		visible, err := s.List(ctx, domain.TaskFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{live.ID}, ids(visible))

		onlyDeleted, err := s.List(ctx, domain.TaskFilter{OnlyDeleted: true})
		require.NoError(t, err)
		assert.Equal(t, []string{gone.ID}, ids(onlyDeleted))

		all, err := s.List(ctx, domain.TaskFilter{IncludeDeleted: true})
		require.NoError(t, err)
		assert.Equal(t, []string{live.ID, gone.ID}, ids(all))

		restored, err := s.Restore(ctx, gone.ID, Base.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, restored.IsDeleted())
		assert.Empty(t, restored.DeletedBy)
		assert.Empty(t, restored.DeleteReason)
		assert.Equal(t, 3, restored.Version)
	})

	t.Run("ListOrderAndPrefix", func(t *testing.T) {
		s := newStore(t)
		second := NewTask("Second", time.Hour)
		second.ID = "bbbb-2"
		first := NewTask("First", 0)
		first.ID = "aaaa-1"
		third := NewTask("Third", 2*time.Hour)
		third.ID = "aaaa-3"
		for _, task := range []*domain.Task{second, first, third} {
			_, err := s.Create(ctx, task)
			require.NoError(t, err)
		}

		all, err := s.List(ctx, domain.TaskFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"aaaa-1", "bbbb-2", "aaaa-3"}, ids(all))

		prefixed, err := s.List(ctx, domain.TaskFilter{IDPrefix: "aaaa"})
		require.NoError(t, err)
		assert.Equal(t, []string{"aaaa-1", "aaaa-3"}, ids(prefixed))
	})

	t.Run("ActivitiesInAppendOrder", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, NewTask("Logged", 0))
		require.NoError(t, err)

		empty, err := s.ListByTask(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, empty)

		for i, action := range []domain.Action{domain.ActionCreated, domain.ActionAssigned, domain.ActionNotificationSent} {
			a := &domain.Activity{
				TaskID:                created.ID,
				Action:                action,
				PerformedBy:           "admin",
				NewValue:              "v",
				CreatedAt:             Base.Add(time.Duration(i) * time.Second),
				NotificationAttempted: action.IsNotification(),
			}
			require.NoError(t, s.Append(ctx, a))
			assert.NotEmpty(t, a.ID)
		}
		require.NoError(t, s.Append(ctx, &domain.Activity{TaskID: "other", Action: domain.ActionCommented, CreatedAt: Base}))

		got, err := s.ListByTask(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, domain.ActionCreated, got[0].Action)
		assert.Equal(t, domain.ActionAssigned, got[1].Action)
		assert.Equal(t, domain.ActionNotificationSent, got[2].Action)
		assert.True(t, got[2].NotificationAttempted)
		assert.True(t, got[1].CreatedAt.Equal(Base.Add(time.Second)))
	})

	t.Run("ImportKeepsVersionAndHistory", func(t *testing.T) {
		s := newStore(t)
		task := NewTask("Imported", 0)
		task.ID = "0190bbbb-0000-7000-8000-000000000002"
		task.Version = 5
		task.Status = domain.StatusCompleted
		history := []domain.Activity{
			{ID: "a1", TaskID: task.ID, Action: domain.ActionCreated, CreatedAt: Base},
			{ID: "a2", TaskID: task.ID, Action: domain.ActionCompleted, CreatedAt: Base.Add(time.Hour)},
		}

		require.NoError(t, s.Import(ctx, task, history))

		got, err := s.Get(ctx, task.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 5, got.Version)
		assert.Equal(t, domain.StatusCompleted, got.Status)

		acts, err := s.ListByTask(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, acts, 2)
		assert.Equal(t, "a1", acts[0].ID)
		assert.Equal(t, "a2", acts[1].ID)
	})

	t.Run("ConcurrentUpdatesAreSerialized", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, NewTask("Busy", 0))
		require.NoError(t, err)

		const writers = 8
		var wg sync.WaitGroup
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				watchers := []string{string(rune('a' + i))}
				_, err := s.Update(ctx, created.ID, domain.TaskPatch{Watchers: &watchers})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 1+writers, got.Version)
	})
}

func ids(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
