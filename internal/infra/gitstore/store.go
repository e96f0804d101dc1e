// Package gitstore provides a Git plumbing-based implementation of TaskRepository.
package gitstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/idgen"
)

// Store implements domain.TaskRepository using Git plumbing (refs and blobs).
// Nothing touches the working tree or commit history.
//
// Data structure:
//
//	refs/<namespace>/
//	  initialized     → blob (marker)
//	  tasks/
//	    <id>          → blob (task YAML)
//	  activities/
//	    <id>          → blob (activity list YAML)
type Store struct {
	repo      *git.Repository
	namespace string // e.g., "whatstask"
	mu        sync.RWMutex
}

// activitiesData holds the history of a task.
type activitiesData struct {
	Activities []domain.Activity `yaml:"activities"`
}

// New opens the repository at repoPath, creating it when it does not exist.
func New(repoPath, namespace string) (*Store, error) {
	repo, err := git.PlainOpen(repoPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(repoPath, false)
	}
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	return NewWithRepo(repo, namespace), nil
}

// NewWithRepo creates a new Store with an existing repository instance.
func NewWithRepo(repo *git.Repository, namespace string) *Store {
	return &Store{
		repo:      repo,
		namespace: namespace,
	}
}

// refPrefix returns the ref prefix for this namespace.
func (s *Store) refPrefix() string {
	return "refs/" + s.namespace + "/"
}

// taskRef returns the ref name for a task.
func (s *Store) taskRef(id string) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "tasks/" + id)
}

// activitiesRef returns the ref name for task activities.
func (s *Store) activitiesRef(id string) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "activities/" + id)
}

// initializedRef returns the ref name for the initialized marker.
func (s *Store) initializedRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "initialized")
}

// Get retrieves a task by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLocked(id)
}

func (s *Store) getLocked(id string) (*domain.Task, error) {
	if !s.initializedLocked() {
		return nil, domain.ErrNotInitialized
	}
	ref, err := s.repo.Reference(s.taskRef(id), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("get task ref: %w", err)
	}
	return s.decodeTask(id, ref.Hash())
}

func (s *Store) decodeTask(id string, hash plumbing.Hash) (*domain.Task, error) {
	data, err := s.readBlob(hash)
	if err != nil {
		return nil, fmt.Errorf("read task: %w", err)
	}

	var task domain.Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	task.ID = id
	return &task, nil
}

// Create stores a new task, assigning a UUIDv7 when ID is empty.
func (s *Store) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := task.Clone()
	if created.ID == "" {
		created.ID = idgen.New()
	}
	created.Version = 1

	existing, err := s.getLocked(created.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("task %s already exists: %w", created.ID, domain.ErrConflict)
	}

	if err := s.putTaskLocked(created); err != nil {
		return nil, err
	}
	return created, nil
}

// Update merges patch into the stored task.
func (s *Store) Update(_ context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	if err := patch.Apply(task); err != nil {
		return nil, err
	}
	if err := s.putTaskLocked(task); err != nil {
		return nil, err
	}
	return task, nil
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
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initializedLocked() {
		return nil, domain.ErrNotInitialized
	}

	var tasks []*domain.Task
	prefix := s.refPrefix() + "tasks/"

	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		id, ok := strings.CutPrefix(string(ref.Name()), prefix)
		if !ok || id == "" {
			return nil
		}
		if filter.IDPrefix != "" && !strings.HasPrefix(id, filter.IDPrefix) {
			return nil
		}

		task, decodeErr := s.decodeTask(id, ref.Hash())
		if decodeErr != nil {
			return decodeErr
		}
		if filter.Matches(task) {
			tasks = append(tasks, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return tasks, nil
}

// Append stores an activity record, assigning a UUIDv7 when ID is empty.
func (s *Store) Append(_ context.Context, activity *domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if activity.ID == "" {
		activity.ID = idgen.New()
	}

	activities, err := s.getActivitiesLocked(activity.TaskID)
	if err != nil {
		return err
	}
	return s.putActivitiesLocked(activity.TaskID, append(activities, *activity))
}

// ListByTask returns the records of a task in append order.
func (s *Store) ListByTask(_ context.Context, taskID string) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getActivitiesLocked(taskID)
}

// Import writes a task and its history verbatim.
// If writing the history fails, the task ref is rolled back.
func (s *Store) Import(_ context.Context, task *domain.Task, activities []domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	taskRefName := s.taskRef(task.ID)
	originalTaskRef, _ := s.repo.Reference(taskRefName, true)

	if err := s.putTaskLocked(task); err != nil {
		return err
	}
	if len(activities) == 0 {
		return nil
	}

	if err := s.putActivitiesLocked(task.ID, activities); err != nil {
		if originalTaskRef != nil {
			_ = s.repo.Storer.SetReference(originalTaskRef)
		} else {
			_ = s.repo.Storer.RemoveReference(taskRefName)
		}
		return err
	}
	return nil
}

func (s *Store) putTaskLocked(task *domain.Task) error {
	data, err := yaml.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	hash, err := s.writeBlob(data)
	if err != nil {
		return err
	}

	ref := plumbing.NewHashReference(s.taskRef(task.ID), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set task ref: %w", err)
	}
	return nil
}

// getActivitiesLocked loads activities without locking (caller must hold lock).
func (s *Store) getActivitiesLocked(taskID string) ([]domain.Activity, error) {
	if !s.initializedLocked() {
		return nil, domain.ErrNotInitialized
	}
	ref, err := s.repo.Reference(s.activitiesRef(taskID), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []domain.Activity{}, nil
		}
		return nil, fmt.Errorf("get activities ref: %w", err)
	}

	rawData, err := s.readBlob(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read activities: %w", err)
	}

	var data activitiesData
	if err := yaml.Unmarshal(rawData, &data); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	if data.Activities == nil {
		data.Activities = []domain.Activity{}
	}
	return data.Activities, nil
}

func (s *Store) putActivitiesLocked(taskID string, activities []domain.Activity) error {
	data, err := yaml.Marshal(&activitiesData{Activities: activities})
	if err != nil {
		return fmt.Errorf("marshal activities: %w", err)
	}

	hash, err := s.writeBlob(data)
	if err != nil {
		return err
	}

	ref := plumbing.NewHashReference(s.activitiesRef(taskID), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set activities ref: %w", err)
	}
	return nil
}

// writeBlob writes data to a blob and returns the hash.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}

	if _, writeErr := writer.Write(data); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}

	return hash, nil
}

// readBlob reads the full content of a blob.
func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}
	return data, nil
}

// Initialize creates the initialized marker if it doesn't exist.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.repo.Reference(s.initializedRef(), true)
	if err == nil {
		return nil // Already initialized
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("check initialized ref: %w", err)
	}

	hash, err := s.writeBlob([]byte("initialized"))
	if err != nil {
		return err
	}
	ref := plumbing.NewHashReference(s.initializedRef(), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set initialized ref: %w", err)
	}

	return nil
}

// IsInitialized checks if the store has been initialized.
func (s *Store) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.initializedLocked()
}

func (s *Store) initializedLocked() bool {
	_, err := s.repo.Reference(s.initializedRef(), true)
	return err == nil
}

// Ensure Store implements the store ports.
var (
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.ActivityRecorder = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
	_ domain.TaskImporter     = (*Store)(nil)
)
