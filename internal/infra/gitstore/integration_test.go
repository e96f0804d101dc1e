//go:build integration

package gitstore

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/storetest"
)

// testRepoPath creates a temporary git repository with the git command.
func testRepoPath(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	run(t, dir, "git", "init")
	return dir
}

// run executes a command and fails the test if it errors.
func run(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "command failed: %s %v\noutput: %s", name, args, out)
	return string(out)
}

func TestIntegration_RefsVisibleToGit(t *testing.T) {
	dir := testRepoPath(t)
	store, err := New(dir, "whatstask")
	require.NoError(t, err)
	require.NoError(t, store.Initialize())

	created, err := store.Create(context.Background(), storetest.NewTask("Visible", 0))
	require.NoError(t, err)

	out := run(t, dir, "git", "for-each-ref", "--format=%(refname)", "refs/whatstask/")
	assert.Contains(t, out, "refs/whatstask/tasks/"+created.ID)
	assert.Contains(t, out, "refs/whatstask/initialized")

	blob := run(t, dir, "git", "cat-file", "-p", "refs/whatstask/tasks/"+created.ID)
	assert.Contains(t, blob, "title: Visible")
}

func TestIntegration_SurvivesReopen(t *testing.T) {
	dir := testRepoPath(t)
	store, err := New(dir, "whatstask")
	require.NoError(t, err)
	require.NoError(t, store.Initialize())

	created, err := store.Create(context.Background(), storetest.NewTask("Persisted", 0))
	require.NoError(t, err)
	status := domain.StatusInProgress
	_, err = store.Update(context.Background(), created.ID, domain.TaskPatch{Status: &status})
	require.NoError(t, err)

	reopened, err := New(dir, "whatstask")
	require.NoError(t, err)
	got, err := reopened.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	assert.Equal(t, 2, got.Version)
	assert.False(t, strings.Contains(run(t, dir, "git", "status", "--porcelain"), "tasks"))
}
