package gitstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/storetest"
)

func setupTestRepo(t *testing.T) *git.Repository {
	t.Helper()

	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)
	return repo
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewWithRepo(setupTestRepo(t), "whatstask-test")
	require.NoError(t, store.Initialize())
	return store
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store {
		return newTestStore(t)
	})
}

func TestStore_Initialize(t *testing.T) {
	store := NewWithRepo(setupTestRepo(t), "whatstask-test")
	assert.False(t, store.IsInitialized())

	require.NoError(t, store.Initialize())
	assert.True(t, store.IsInitialized())

	// Second call should be idempotent
	require.NoError(t, store.Initialize())
}

func TestStore_NotInitialized(t *testing.T) {
	store := NewWithRepo(setupTestRepo(t), "whatstask-test")

	_, err := store.Get(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrNotInitialized)

	_, err = store.List(context.Background(), domain.TaskFilter{})
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestStore_WritesRefsUnderNamespace(t *testing.T) {
	// Setup
	repo := setupTestRepo(t)
	store := NewWithRepo(repo, "whatstask-test")
	require.NoError(t, store.Initialize())

	// Execute
	created, err := store.Create(context.Background(), storetest.NewTask("Ref check", 0))
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), &domain.Activity{TaskID: created.ID, Action: domain.ActionCreated}))

	// Assert
	_, err = repo.Reference(plumbing.ReferenceName("refs/whatstask-test/tasks/"+created.ID), true)
	require.NoError(t, err)
	_, err = repo.Reference(plumbing.ReferenceName("refs/whatstask-test/activities/"+created.ID), true)
	require.NoError(t, err)
}

func TestStore_NamespacesAreIsolated(t *testing.T) {
	// Setup
	repo := setupTestRepo(t)
	first := NewWithRepo(repo, "team-a")
	second := NewWithRepo(repo, "team-b")
	require.NoError(t, first.Initialize())
	require.NoError(t, second.Initialize())

	// Execute
	_, err := first.Create(context.Background(), storetest.NewTask("Only in A", 0))
	require.NoError(t, err)

	// Assert
	tasks, err := second.List(context.Background(), domain.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestNew_InitializesMissingRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(dir, 0o750))

	store, err := New(dir, "whatstask")
	require.NoError(t, err)
	require.NoError(t, store.Initialize())

	_, err = os.Stat(filepath.Join(dir, ".git"))
	assert.NoError(t, err)

	reopened, err := New(dir, "whatstask")
	require.NoError(t, err)
	assert.True(t, reopened.IsInitialized())
}
