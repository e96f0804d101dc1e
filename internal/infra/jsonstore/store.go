// Package jsonstore provides a JSON file-based implementation of TaskRepository.
package jsonstore

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/idgen"
)

// schemaVersion is written into new store files.
const schemaVersion = 1

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Tasks      map[string]*domain.Task      `json:"tasks"`
	Activities map[string][]domain.Activity `json:"activities"`
	Meta       meta                         `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	SchemaVersion int `json:"schemaVersion"`
}

// Store implements domain.TaskRepository and domain.ActivityRecorder using
// a single JSON file guarded by an flock on a sidecar lock file.
type Store struct {
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file does not need to exist; Initialize creates it.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// Get retrieves a task by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLock(func(data *storeData) error {
		if t, ok := data.Tasks[id]; ok {
			task = t
			task.ID = id
		}
		return nil
	})
	return task, err
}

// Create stores a new task, assigning a UUIDv7 when ID is empty.
func (s *Store) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	created := task.Clone()
	if created.ID == "" {
		created.ID = idgen.New()
	}
	created.Version = 1

	err := s.withLockWrite(func(data *storeData) error {
		if _, exists := data.Tasks[created.ID]; exists {
			return fmt.Errorf("task %s already exists: %w", created.ID, domain.ErrConflict)
		}
		data.Tasks[created.ID] = created.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update merges patch into the stored task under the exclusive lock.
func (s *Store) Update(_ context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	var updated *domain.Task
	err := s.withLockWrite(func(data *storeData) error {
		t, ok := data.Tasks[id]
		if !ok {
			return domain.ErrTaskNotFound
		}
		t.ID = id
		if err := patch.Apply(t); err != nil {
			return err
		}
		updated = t.Clone()
		return nil
	})
	return updated, err
}

// SoftDelete marks a task deleted.
func (s *Store) SoftDelete(ctx context.Context, id string, del domain.Deletion) (*domain.Task, error) {
	return s.Update(ctx, id, domain.TaskPatch{At: del.At, Delete: &del})
}

// Restore clears the deletion marker.
func (s *Store) Restore(ctx context.Context, id string, at time.Time) (*domain.Task, error) {
	return s.Update(ctx, id, domain.TaskPatch{At: at, Restore: true})
}

// List retrieves tasks matching the filter, oldest first.
func (s *Store) List(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.withLock(func(data *storeData) error {
		for id, t := range data.Tasks {
			t.ID = id
			if filter.Matches(t) {
				tasks = append(tasks, t)
			}
		}
		return nil
	})

	sortTasks(tasks)
	return tasks, err
}

// Append stores an activity record, assigning a UUIDv7 when ID is empty.
func (s *Store) Append(_ context.Context, activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = idgen.New()
	}
	return s.withLockWrite(func(data *storeData) error {
		data.Activities[activity.TaskID] = append(data.Activities[activity.TaskID], *activity)
		return nil
	})
}

// ListByTask returns the records of a task in append order.
func (s *Store) ListByTask(_ context.Context, taskID string) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := s.withLock(func(data *storeData) error {
		if a, ok := data.Activities[taskID]; ok {
			activities = a
		} else {
			activities = []domain.Activity{} // Return empty slice, not nil
		}
		return nil
	})
	return activities, err
}

// Import writes a task and its history verbatim, replacing any existing
// copy of the task.
func (s *Store) Import(_ context.Context, task *domain.Task, activities []domain.Activity) error {
	return s.withLockWrite(func(data *storeData) error {
		data.Tasks[task.ID] = task.Clone()
		if len(activities) > 0 {
			data.Activities[task.ID] = slices.Clone(activities)
		}
		return nil
	})
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return nil // Already exists
	}

	data := &storeData{
		Meta:       meta{SchemaVersion: schemaVersion},
		Tasks:      make(map[string]*domain.Task),
		Activities: make(map[string][]domain.Activity),
	}

	return s.write(data)
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
// Nothing is written when fn fails.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	if data.Tasks == nil {
		data.Tasks = make(map[string]*domain.Task)
	}
	if data.Activities == nil {
		data.Activities = make(map[string][]domain.Activity)
	}

	return &data, nil
}

func (s *Store) write(data *storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// sortTasks orders by creation time, then ID.
func sortTasks(tasks []*domain.Task) {
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Ensure Store implements the store ports.
var (
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.ActivityRecorder = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
	_ domain.TaskImporter     = (*Store)(nil)
)
