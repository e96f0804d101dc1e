// Package sqlstore provides SQL implementations of the task store ports
// for SQLite and PostgreSQL.
//
// Tasks and activities are stored as JSON documents next to the few
// columns needed for ordering and filtering.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/idgen"
)

const (
	busyTimeout  = 5000 // milliseconds
	maxOpenConns = 10
	maxIdleConns = 5
)

// sortableTime is fixed width so created_at columns sort lexically.
const sortableTime = "2006-01-02T15:04:05.000000000Z"

// Store implements the task store ports on a database/sql connection.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to dsn with the dialect's driver. For SQLite dsn may be a
// plain file path.
func Open(d Dialect, dsn string) (*Store, error) {
	if d.Name == SQLite.Name && !strings.HasPrefix(dsn, "file:") {
		dsn = SQLiteDSN(dsn)
	}
	conn, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if d.Name == SQLite.Name {
		// One writer at a time; read-then-write transactions would otherwise
		// fail with SQLITE_BUSY instead of waiting.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(maxOpenConns)
		conn.SetMaxIdleConns(maxIdleConns)
	}

	return New(conn, d), nil
}

// New wraps an existing connection.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, dialect: d}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize applies pending schema migrations.
func (s *Store) Initialize() error {
	return migrateUp(context.Background(), s.db, s.dialect)
}

// IsInitialized reports whether the schema has been created.
func (s *Store) IsInitialized() bool {
	var n int
	err := s.db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM schema_migrations").Scan(&n)
	return err == nil && n > 0
}

// Get retrieves a task by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind("SELECT data FROM tasks WHERE id = ?"), id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// Create stores a new task, assigning a UUIDv7 when ID is empty.
func (s *Store) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	created := task.Clone()
	if created.ID == "" {
		created.ID = idgen.New()
	}
	created.Version = 1

	var exists int
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind("SELECT COUNT(*) FROM tasks WHERE id = ?"), created.ID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check task: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("task %s already exists: %w", created.ID, domain.ErrConflict)
	}

	data, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("marshal task: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		s.dialect.Rebind("INSERT INTO tasks (id, created_at, version, deleted, data) VALUES (?, ?, ?, ?, ?)"),
		created.ID, formatTime(created.CreatedAt), created.Version, boolInt(created.IsDeleted()), string(data))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return created, nil
}

// Update merges patch into the stored task inside a transaction. The
// UPDATE is guarded by the version read, so concurrent writers conflict
// instead of overwriting each other.
func (s *Store) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	var updated *domain.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, s.dialect.Rebind("SELECT data FROM tasks WHERE id = ?"+s.dialect.lockSuffix), id)
		task, err := scanTask(row)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("get task: %w", err)
		}

		prevVersion := task.Version
		if err := patch.Apply(task); err != nil {
			return err
		}

		data, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("marshal task: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			s.dialect.Rebind("UPDATE tasks SET version = ?, deleted = ?, data = ? WHERE id = ? AND version = ?"),
			task.Version, boolInt(task.IsDeleted()), string(data), id, prevVersion)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("task %s changed during update: %w", id, domain.ErrConflict)
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
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
func (s *Store) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := "SELECT data FROM tasks"
	var where []string
	var args []any
	switch {
	case filter.OnlyDeleted:
		where = append(where, "deleted = 1")
	case !filter.IncludeDeleted:
		where = append(where, "deleted = 0")
	}
	if filter.IDPrefix != "" {
		where = append(where, `id LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(filter.IDPrefix)+"%")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Append stores an activity record, assigning a UUIDv7 when ID is empty.
func (s *Store) Append(ctx context.Context, activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = idgen.New()
	}
	return s.insertActivity(ctx, s.db, activity, false)
}

// ListByTask returns the records of a task in append order.
func (s *Store) ListByTask(ctx context.Context, taskID string) ([]domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		s.dialect.Rebind("SELECT data FROM activities WHERE task_id = ? ORDER BY seq"), taskID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	activities := []domain.Activity{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		var a domain.Activity
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

// Import writes a task and its history verbatim in one transaction.
// Activities already present are kept.
func (s *Store) Import(ctx context.Context, task *domain.Task, activities []domain.Activity) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.dialect.Rebind(`
			INSERT INTO tasks (id, created_at, version, deleted, data) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				created_at = EXCLUDED.created_at,
				version = EXCLUDED.version,
				deleted = EXCLUDED.deleted,
				data = EXCLUDED.data`),
			task.ID, formatTime(task.CreatedAt), task.Version, boolInt(task.IsDeleted()), string(data))
		if err != nil {
			return fmt.Errorf("import task: %w", err)
		}
		for i := range activities {
			if err := s.insertActivity(ctx, tx, &activities[i], true); err != nil {
				return err
			}
		}
		return nil
	})
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertActivity(ctx context.Context, ex execer, a *domain.Activity, skipExisting bool) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	query := "INSERT INTO activities (id, task_id, created_at, data) VALUES (?, ?, ?, ?)"
	if skipExisting {
		query += " ON CONFLICT (id) DO NOTHING"
	}
	if _, err := ex.ExecContext(ctx, s.dialect.Rebind(query), a.ID, a.TaskID, formatTime(a.CreatedAt), string(data)); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// withTx executes fn within a transaction, rolling back when fn fails.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var raw string
	if err := row.Scan(&raw); err != nil {
		return nil, err
	}
	var task domain.Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sortableTime)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Ensure Store implements the store ports.
var (
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.ActivityRecorder = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
	_ domain.TaskImporter     = (*Store)(nil)
)
