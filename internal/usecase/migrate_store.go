package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
)

// MigrateStoreInput contains parameters for MigrateStore.
type MigrateStoreInput struct {
	// SkipActivities migrates tasks without their history.
	SkipActivities bool
}

// MigrateStoreOutput contains migration results.
type MigrateStoreOutput struct {
	Total      int
	Migrated   int
	Skipped    int // Already present and identical
	Activities int // History records copied
}

// MigrateStore copies every task, soft-deleted ones included, and its
// history from one store backend to another.
type MigrateStore struct {
	sourceTasks      domain.TaskRepository
	sourceActivities domain.ActivityRecorder
	dest             domain.TaskRepository
	destImport       domain.TaskImporter
	destInit         domain.StoreInitializer
}

// NewMigrateStore creates a new MigrateStore use case.
func NewMigrateStore(
	sourceTasks domain.TaskRepository,
	sourceActivities domain.ActivityRecorder,
	dest domain.TaskRepository,
	destImport domain.TaskImporter,
	destInit domain.StoreInitializer,
) *MigrateStore {
	return &MigrateStore{
		sourceTasks:      sourceTasks,
		sourceActivities: sourceActivities,
		dest:             dest,
		destImport:       destImport,
		destInit:         destInit,
	}
}

// Execute migrates all tasks. Existing destination tasks are skipped if
// identical; otherwise it fails with ErrMigrationConflict.
func (uc *MigrateStore) Execute(ctx context.Context, in MigrateStoreInput) (*MigrateStoreOutput, error) {
	if uc.sourceTasks == nil || uc.dest == nil || uc.destImport == nil || uc.destInit == nil {
		return nil, errors.New("source or destination store is nil")
	}

	if !uc.destInit.IsInitialized() {
		if err := uc.destInit.Initialize(); err != nil {
			return nil, fmt.Errorf("initialize destination store: %w", err)
		}
	}

	tasks, err := uc.sourceTasks.List(ctx, domain.TaskFilter{IncludeDeleted: true})
	if err != nil {
		return nil, fmt.Errorf("list source tasks: %w", err)
	}

	out := &MigrateStoreOutput{Total: len(tasks)}
	for _, task := range tasks {
		existing, err := uc.dest.Get(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("check destination task %s: %w", task.ID, err)
		}
		if existing != nil {
			if tasksEqual(task, existing) {
				out.Skipped++
				continue
			}
			return nil, fmt.Errorf("%w: task %s", domain.ErrMigrationConflict, task.ID)
		}

		var activities []domain.Activity
		if !in.SkipActivities && uc.sourceActivities != nil {
			activities, err = uc.sourceActivities.ListByTask(ctx, task.ID)
			if err != nil {
				return nil, fmt.Errorf("get source activities for %s: %w", task.ID, err)
			}
		}

		if err := uc.destImport.Import(ctx, task.Clone(), activities); err != nil {
			return nil, fmt.Errorf("import task %s: %w", task.ID, err)
		}
		out.Migrated++
		out.Activities += len(activities)
	}

	return out, nil
}

// tasksEqual compares tasks ignoring timestamp locations, monotonic
// readings and empty-versus-nil slices, which differ between backends.
func tasksEqual(a, b *domain.Task) bool {
	return reflect.DeepEqual(normalizeTimes(a), normalizeTimes(b))
}

func normalizeTimes(t *domain.Task) *domain.Task {
	c := t.Clone()
	c.CreatedAt = c.CreatedAt.UTC().Round(0)
	c.UpdatedAt = c.UpdatedAt.UTC().Round(0)
	for _, p := range []**time.Time{&c.DueDate, &c.AcceptedAt, &c.DeclinedAt, &c.DeletedAt} {
		if *p != nil {
			v := (**p).UTC().Round(0)
			*p = &v
		}
	}
	if len(c.Checklist) == 0 {
		c.Checklist = nil
	}
	if len(c.Watchers) == 0 {
		c.Watchers = nil
	}
	return c
}
