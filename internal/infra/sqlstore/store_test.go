package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/storetest"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(SQLite, filepath.Join(t.TempDir(), "whatstask.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Initialize())
	return store
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, Postgres), mock
}

func taskJSON(t *testing.T, task *domain.Task) string {
	t.Helper()
	data, err := json.Marshal(task)
	require.NoError(t, err)
	return string(data)
}

func TestSQLiteStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store {
		return newSQLiteStore(t)
	})
}

func TestSQLiteStore_Initialize(t *testing.T) {
	// Setup
	store, err := Open(SQLite, filepath.Join(t.TempDir(), "whatstask.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	assert.False(t, store.IsInitialized())

	// Execute
	require.NoError(t, store.Initialize())

	// Assert
	assert.True(t, store.IsInitialized())
	var versions int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	migrations, err := loadMigrations(SQLite)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), versions)

	// Initialize again should be idempotent
	require.NoError(t, store.Initialize())
}

func TestSQLiteStore_IDPrefixEscapesWildcards(t *testing.T) {
	store := newSQLiteStore(t)
	task := storetest.NewTask("Underscore", 0)
	task.ID = "a_b"
	_, err := store.Create(context.Background(), task)
	require.NoError(t, err)
	other := storetest.NewTask("Other", 0)
	other.ID = "axb"
	_, err = store.Create(context.Background(), other)
	require.NoError(t, err)

	got, err := store.List(context.Background(), domain.TaskFilter{IDPrefix: "a_"})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a_b", got[0].ID)
}

func TestStore_Get_NotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM tasks WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	got, err := store.Get(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_QueryError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM tasks WHERE id = $1")).
		WithArgs("t1").
		WillReturnError(errors.New("connection reset"))

	_, err := store.Get(context.Background(), "t1")

	assert.ErrorContains(t, err, "connection reset")
}

func TestStore_Update_LocksRowAndBumpsVersion(t *testing.T) {
	// Setup
	store, mock := newMockStore(t)
	task := storetest.NewTask("Locked", 0)
	task.ID = "t1"
	task.Version = 3

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM tasks WHERE id = $1 FOR UPDATE")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(taskJSON(t, task)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET version = $1, deleted = $2, data = $3 WHERE id = $4 AND version = $5")).
		WithArgs(4, 0, sqlmock.AnyArg(), "t1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Execute
	title := "Renamed"
	got, err := store.Update(context.Background(), "t1", domain.TaskPatch{Title: &title})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, got.Version)
	assert.Equal(t, "Renamed", got.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Update_RowChangedUnderneath(t *testing.T) {
	// Setup
	store, mock := newMockStore(t)
	task := storetest.NewTask("Raced", 0)
	task.ID = "t1"
	task.Version = 1

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM tasks")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(taskJSON(t, task)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// Execute
	title := "Renamed"
	_, err := store.Update(context.Background(), "t1", domain.TaskPatch{Title: &title})

	// Assert
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Update_RejectedPatchRollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	task := storetest.NewTask("Stale", 0)
	task.ID = "t1"
	task.Version = 2

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM tasks")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(taskJSON(t, task)))
	mock.ExpectRollback()

	title := "Renamed"
	_, err := store.Update(context.Background(), "t1", domain.TaskPatch{Title: &title, ExpectVersion: 1})

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_List_BuildsFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.TaskFilter
		query  string
		args   int
	}{
		{"live", domain.TaskFilter{}, "SELECT data FROM tasks WHERE deleted = 0 ORDER BY created_at, id", 0},
		{"all", domain.TaskFilter{IncludeDeleted: true}, "SELECT data FROM tasks ORDER BY created_at, id", 0},
		{"deleted", domain.TaskFilter{OnlyDeleted: true}, "SELECT data FROM tasks WHERE deleted = 1 ORDER BY created_at, id", 0},
		{"prefix", domain.TaskFilter{IDPrefix: "01"}, `SELECT data FROM tasks WHERE deleted = 0 AND id LIKE $1 ESCAPE '\' ORDER BY created_at, id`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			exp := mock.ExpectQuery("^" + regexp.QuoteMeta(tt.query) + "$")
			if tt.args > 0 {
				exp = exp.WithArgs("01%")
			}
			exp.WillReturnRows(sqlmock.NewRows([]string{"data"}))

			got, err := store.List(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.Empty(t, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_Import_RollsBackOnActivityFailure(t *testing.T) {
	// Setup
	store, mock := newMockStore(t)
	task := storetest.NewTask("Imported", 0)
	task.ID = "t1"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activities (id, task_id, created_at, data) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	// Execute
	err := store.Import(context.Background(), task, []domain.Activity{{ID: "a1", TaskID: "t1", Action: domain.ActionCreated}})

	// Assert
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDialect_Rebind(t *testing.T) {
	q := "SELECT data FROM tasks WHERE id = ? AND version = ?"

	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT data FROM tasks WHERE id = $1 AND version = $2", Postgres.Rebind(q))
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	_, err = DialectFor("mysql")
	assert.Error(t, err)
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		version int
		label   string
		wantErr bool
	}{
		{"valid", "0001_init.sql", 1, "init", false},
		{"multi word", "0012_add_index.sql", 12, "add_index", false},
		{"no suffix", "0001_init.txt", 0, "", true},
		{"no name", "0001.sql", 0, "", true},
		{"zero", "0000_init.sql", 0, "", true},
		{"not a number", "abcd_init.sql", 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, label, err := parseFilename(tt.file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestLoadMigrations_BothDialectsInStep(t *testing.T) {
	lite, err := loadMigrations(SQLite)
	require.NoError(t, err)
	pg, err := loadMigrations(Postgres)
	require.NoError(t, err)

	require.NotEmpty(t, lite)
	require.Len(t, pg, len(lite))
	for i := range lite {
		assert.Equal(t, lite[i].Version, pg[i].Version)
		assert.Equal(t, lite[i].Name, pg[i].Name)
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n CREATE INDEX i ON a (x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"}, got)
}
