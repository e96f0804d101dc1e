package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error

	// IsInitialized reports whether the store exists.
	IsInitialized() bool
}

// TaskRepository manages task persistence. It is the single source of truth
// for task state; Update applies a TaskPatch as one atomic field merge.
type TaskRepository interface {
	// Get retrieves a task by ID. Returns nil if not found.
	Get(ctx context.Context, id string) (*Task, error)

	// Create stores a new task, assigning its ID when empty.
	Create(ctx context.Context, task *Task) (*Task, error)

	// Update merges patch into the stored task and returns the result.
	// Returns ErrTaskNotFound if the task does not exist and ErrConflict
	// if patch.ExpectVersion does not match.
	Update(ctx context.Context, id string, patch TaskPatch) (*Task, error)

	// List retrieves tasks matching the filter ordered by creation time.
	List(ctx context.Context, filter TaskFilter) ([]*Task, error)

	// SoftDelete marks a task deleted without removing it.
	SoftDelete(ctx context.Context, id string, del Deletion) (*Task, error)

	// Restore clears the soft-delete marker.
	Restore(ctx context.Context, id string, at time.Time) (*Task, error)
}

// TaskFilter specifies store-level criteria for listing tasks.
// View filters (status, due date, search...) live in the query package.
type TaskFilter struct {
	IDPrefix       string // Only tasks whose ID starts with this prefix
	IncludeDeleted bool   // Include soft-deleted tasks
	OnlyDeleted    bool   // Only soft-deleted tasks
}

// Matches reports whether t passes the filter.
func (f TaskFilter) Matches(t *Task) bool {
	if f.IDPrefix != "" && (len(t.ID) < len(f.IDPrefix) || t.ID[:len(f.IDPrefix)] != f.IDPrefix) {
		return false
	}
	if f.OnlyDeleted {
		return t.IsDeleted()
	}
	return f.IncludeDeleted || !t.IsDeleted()
}

// TaskImporter writes a task and its history verbatim, keeping IDs,
// versions and timestamps. Used to move data between store backends.
type TaskImporter interface {
	Import(ctx context.Context, task *Task, activities []Activity) error
}

// ActivityRecorder appends immutable activity records.
type ActivityRecorder interface {
	// Append stores a record, assigning its ID when empty.
	Append(ctx context.Context, activity *Activity) error

	// ListByTask returns the records of a task in append order.
	ListByTask(ctx context.Context, taskID string) ([]Activity, error)
}

// UserDirectory provides read-only access to registered users.
type UserDirectory interface {
	// GetByID returns the user or nil if not found.
	GetByID(ctx context.Context, id string) (*User, error)

	// List returns all users.
	List(ctx context.Context) ([]User, error)
}

// UserWriter adds or replaces users in the directory.
type UserWriter interface {
	Put(ctx context.Context, user User) error
}

// ProjectDirectory provides read-only access to registered projects.
type ProjectDirectory interface {
	// GetByID returns the project or nil if not found.
	GetByID(ctx context.Context, id string) (*Project, error)

	// List returns all projects ordered by ID.
	List(ctx context.Context) ([]Project, error)
}

// ProjectWriter adds or replaces projects in the directory.
type ProjectWriter interface {
	Put(ctx context.Context, project Project) error
}

// Notifier delivers a message to a phone-addressed recipient.
type Notifier interface {
	// Send delivers n to phone. A non-nil error means the message was not sent.
	Send(ctx context.Context, phone string, n Notification) error
}

// Logger writes operational log entries, optionally scoped to a task.
type Logger interface {
	Debug(taskID, category, msg string)
	Info(taskID, category, msg string)
	Warn(taskID, category, msg string)
	Error(taskID, category, msg string)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (workspace + global).
	Load() (*Config, error)
}

// ConfigManager manages configuration files.
type ConfigManager interface {
	// GetDataConfigInfo returns information about the data directory config file.
	GetDataConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitDataConfig writes the config template into the data directory.
	// Returns ErrConfigExists if the file already exists.
	InitDataConfig(cfg *Config) error

	// InitGlobalConfig writes the config template into the global config directory.
	InitGlobalConfig(cfg *Config) error
}
