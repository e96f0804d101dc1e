package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateStore_Execute(t *testing.T) {
	// Setup
	f := newFixture(t)
	deletedAt := fixtureNow
	f.putTask("t1", aliceTask)
	f.putTask("t2", func(t *domain.Task) { t.DeletedAt = &deletedAt; t.DeleteReason = "dup" })
	_, err := NewAddComment(f.eng).Execute(context.Background(), AddCommentInput{TaskID: "t1", ActorID: "bob", Message: "hello"})
	require.NoError(t, err)

	dest := testutil.NewMockTaskRepository()
	destInit := &testutil.MockStoreInitializer{}
	uc := NewMigrateStore(f.repo, f.acts, dest, dest, destInit)

	// Execute
	out, err := uc.Execute(context.Background(), MigrateStoreInput{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &MigrateStoreOutput{Total: 2, Migrated: 2, Activities: 1}, out)
	assert.True(t, destInit.Initialized)
	assert.Equal(t, f.stored("t1"), dest.Tasks["t1"])
	assert.True(t, dest.Tasks["t2"].IsDeleted())
	require.Len(t, dest.Imported["t1"], 1)
	assert.Equal(t, "hello", dest.Imported["t1"][0].Notes)
}

func TestMigrateStore_Execute_SkipsIdentical(t *testing.T) {
	f := newFixture(t)
	task := f.putTask("t1")
	dest := testutil.NewMockTaskRepository()
	same := task.Clone()
	same.CreatedAt = same.CreatedAt.In(time.FixedZone("X", 3600))
	dest.Put(same)

	out, err := NewMigrateStore(f.repo, f.acts, dest, dest, &testutil.MockStoreInitializer{Initialized: true}).
		Execute(context.Background(), MigrateStoreInput{SkipActivities: true})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, 0, out.Migrated)
}

func TestMigrateStore_Execute_Conflict(t *testing.T) {
	f := newFixture(t)
	task := f.putTask("t1")
	dest := testutil.NewMockTaskRepository()
	changed := task.Clone()
	changed.Title = "Something else"
	dest.Put(changed)

	_, err := NewMigrateStore(f.repo, f.acts, dest, dest, &testutil.MockStoreInitializer{}).
		Execute(context.Background(), MigrateStoreInput{})

	assert.ErrorIs(t, err, domain.ErrMigrationConflict)
}

func TestMigrateStore_Execute_ImportError(t *testing.T) {
	f := newFixture(t)
	f.putTask("t1")
	dest := testutil.NewMockTaskRepository()
	dest.ImportErr = errors.New("disk full")

	_, err := NewMigrateStore(f.repo, f.acts, dest, dest, &testutil.MockStoreInitializer{}).
		Execute(context.Background(), MigrateStoreInput{})

	assert.ErrorContains(t, err, "import task t1: disk full")
}

func TestMigrateStore_Execute_NilStores(t *testing.T) {
	_, err := NewMigrateStore(nil, nil, nil, nil, nil).Execute(context.Background(), MigrateStoreInput{})

	assert.Error(t, err)
}
