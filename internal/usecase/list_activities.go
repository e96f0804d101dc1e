package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
)

// ListActivitiesInput contains the parameters for the activity feed.
// Fields are ordered to minimize memory padding.
type ListActivitiesInput struct {
	Since       time.Time       // Only records at or after this time (zero = all)
	Actions     []domain.Action // Filter by action (empty = all)
	PerformedBy string          // Filter by acting user (optional)
	Limit       int             // Maximum records returned (0 = no limit)
}

// ActivityWithTask pairs a record with the task it belongs to.
type ActivityWithTask struct {
	Task     *domain.Task
	Activity domain.Activity
}

// ListActivitiesOutput contains the feed, newest first.
type ListActivitiesOutput struct {
	Activities []ActivityWithTask
}

// ListActivities builds the recent activity feed across live tasks.
type ListActivities struct {
	tasks      domain.TaskRepository
	activities domain.ActivityRecorder
}

// NewListActivities creates a new ListActivities use case.
func NewListActivities(tasks domain.TaskRepository, activities domain.ActivityRecorder) *ListActivities {
	return &ListActivities{tasks: tasks, activities: activities}
}

// Execute lists activity records matching the given input criteria.
func (uc *ListActivities) Execute(ctx context.Context, in ListActivitiesInput) (*ListActivitiesOutput, error) {
	tasks, err := uc.tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	feed := make([]ActivityWithTask, 0)
	for _, task := range tasks {
		entries, err := uc.activities.ListByTask(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("list activities for %s: %w", task.ID, err)
		}
		for _, a := range entries {
			if len(in.Actions) > 0 && !slices.Contains(in.Actions, a.Action) {
				continue
			}
			if in.PerformedBy != "" && a.PerformedBy != in.PerformedBy {
				continue
			}
			if !in.Since.IsZero() && a.CreatedAt.Before(in.Since) {
				continue
			}
			feed = append(feed, ActivityWithTask{Task: task, Activity: a})
		}
	}

	slices.SortStableFunc(feed, func(a, b ActivityWithTask) int {
		if c := b.Activity.CreatedAt.Compare(a.Activity.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Task.ID, b.Task.ID)
	})
	if in.Limit > 0 && len(feed) > in.Limit {
		feed = feed[:in.Limit]
	}

	return &ListActivitiesOutput{Activities: feed}, nil
}
