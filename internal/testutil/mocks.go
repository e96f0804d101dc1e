// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Advance moves the clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.NowTime = m.NowTime.Add(d)
}

// MockTaskRepository is a test double for domain.TaskRepository.
// It applies patches with TaskPatch.Apply, so version checks and
// invariants behave like the real stores.
// Fields are ordered to minimize memory padding.
type MockTaskRepository struct {
	Tasks     map[string]*domain.Task
	GetErr    error
	CreateErr error
	UpdateErr error
	ListErr   error
	ImportErr error
	Imported  map[string][]domain.Activity
	order     []string
	Updates   int
	NextIDN   int
	mu        sync.Mutex
}

// NewMockTaskRepository creates a new MockTaskRepository with initialized maps.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{
		Tasks:   make(map[string]*domain.Task),
		NextIDN: 1,
	}
}

// Put stores a task as-is, bypassing Create.
func (m *MockTaskRepository) Put(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tasks[task.ID]; !ok {
		m.order = append(m.order, task.ID)
	}
	m.Tasks[task.ID] = task.Clone()
}

// Get retrieves a copy of a task by ID.
func (m *MockTaskRepository) Get(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	task, ok := m.Tasks[id]
	if !ok {
		return nil, nil
	}
	return task.Clone(), nil
}

// Create stores a new task, assigning "task-N" IDs when empty.
func (m *MockTaskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	t := task.Clone()
	if t.ID == "" {
		t.ID = fmt.Sprintf("task-%d", m.NextIDN)
		m.NextIDN++
	}
	t.Version = 1
	m.Tasks[t.ID] = t
	m.order = append(m.order, t.ID)
	return t.Clone(), nil
}

// Update applies a patch.
func (m *MockTaskRepository) Update(_ context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	task, ok := m.Tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if err := patch.Apply(task); err != nil {
		return nil, err
	}
	m.Updates++
	return task.Clone(), nil
}

// List returns tasks in creation order.
func (m *MockTaskRepository) List(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	tasks := make([]*domain.Task, 0, len(m.order))
	for _, id := range m.order {
		if t := m.Tasks[id]; filter.Matches(t) {
			tasks = append(tasks, t.Clone())
		}
	}
	return tasks, nil
}

// SoftDelete marks a task deleted.
func (m *MockTaskRepository) SoftDelete(ctx context.Context, id string, del domain.Deletion) (*domain.Task, error) {
	return m.Update(ctx, id, domain.TaskPatch{At: del.At, Delete: &del})
}

// Restore clears the deletion marker.
func (m *MockTaskRepository) Restore(ctx context.Context, id string, at time.Time) (*domain.Task, error) {
	return m.Update(ctx, id, domain.TaskPatch{At: at, Restore: true})
}

// Import stores task verbatim and keeps its activities in Imported.
func (m *MockTaskRepository) Import(_ context.Context, task *domain.Task, activities []domain.Activity) error {
	if m.ImportErr != nil {
		return m.ImportErr
	}
	m.Put(task)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Imported == nil {
		m.Imported = make(map[string][]domain.Activity)
	}
	m.Imported[task.ID] = slices.Clone(activities)
	return nil
}

// MockActivityRecorder is a test double for domain.ActivityRecorder.
type MockActivityRecorder struct {
	AppendErr  error
	Activities []domain.Activity
	mu         sync.Mutex
}

// NewMockActivityRecorder creates an empty recorder.
func NewMockActivityRecorder() *MockActivityRecorder {
	return &MockActivityRecorder{}
}

// Append stores a record.
func (m *MockActivityRecorder) Append(_ context.Context, a *domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	if a.ID == "" {
		a.ID = fmt.Sprintf("act-%d", len(m.Activities)+1)
	}
	m.Activities = append(m.Activities, *a)
	return nil
}

// ListByTask returns the records of a task in append order.
func (m *MockActivityRecorder) ListByTask(_ context.Context, taskID string) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Activity
	for _, a := range m.Activities {
		if a.TaskID == taskID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Actions returns the actions recorded so far, in order.
func (m *MockActivityRecorder) Actions() []domain.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Action, 0, len(m.Activities))
	for _, a := range m.Activities {
		out = append(out, a.Action)
	}
	return out
}

// Count returns the number of records with the given action.
func (m *MockActivityRecorder) Count(action domain.Action) int {
	return len(slices.DeleteFunc(m.Actions(), func(a domain.Action) bool { return a != action }))
}

// MockUserDirectory is a test double for domain.UserDirectory.
type MockUserDirectory struct {
	Users  map[string]*domain.User
	GetErr error
	PutErr error
}

// NewMockUserDirectory creates a directory holding users.
func NewMockUserDirectory(users ...domain.User) *MockUserDirectory {
	m := &MockUserDirectory{Users: make(map[string]*domain.User)}
	for i := range users {
		u := users[i]
		m.Users[u.ID] = &u
	}
	return m
}

// GetByID returns a copy of the user or nil.
func (m *MockUserDirectory) GetByID(_ context.Context, id string) (*domain.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

// List returns users sorted by ID.
func (m *MockUserDirectory) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(m.Users))
	for _, u := range m.Users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Put adds or replaces a user.
func (m *MockUserDirectory) Put(_ context.Context, user domain.User) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.Users[user.ID] = &user
	return nil
}

// MockProjectDirectory is a test double for domain.ProjectDirectory and
// domain.ProjectWriter.
type MockProjectDirectory struct {
	Projects map[string]domain.Project
	GetErr   error
	PutErr   error
}

// NewMockProjectDirectory creates a directory holding projects.
func NewMockProjectDirectory(projects ...domain.Project) *MockProjectDirectory {
	m := &MockProjectDirectory{Projects: make(map[string]domain.Project)}
	for _, p := range projects {
		m.Projects[p.ID] = p
	}
	return m
}

// GetByID returns a copy of the project or nil.
func (m *MockProjectDirectory) GetByID(_ context.Context, id string) (*domain.Project, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.Projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// List returns projects sorted by ID.
func (m *MockProjectDirectory) List(_ context.Context) ([]domain.Project, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	out := make([]domain.Project, 0, len(m.Projects))
	for _, p := range m.Projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Put adds or replaces a project.
func (m *MockProjectDirectory) Put(_ context.Context, project domain.Project) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.Projects[project.ID] = project
	return nil
}

// SentMessage is a notification captured by MockNotifier.
type SentMessage struct {
	Phone        string
	Notification domain.Notification
}

// ErrMockSendFailed is returned by MockNotifier when failing.
var ErrMockSendFailed = errors.New("mock send failed")

// MockNotifier is a test double for domain.Notifier.
// Fields are ordered to minimize memory padding.
type MockNotifier struct {
	FailPhones map[string]bool // Phones whose sends fail
	Delay      time.Duration   // Wait before returning (honours ctx)
	Sent       []SentMessage
	mu         sync.Mutex
	FailAll    bool
}

// NewMockNotifier creates a notifier that accepts every message.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{FailPhones: make(map[string]bool)}
}

// Send records the message or fails as configured.
func (m *MockNotifier) Send(ctx context.Context, phone string, n domain.Notification) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll || m.FailPhones[phone] {
		return ErrMockSendFailed
	}
	m.Sent = append(m.Sent, SentMessage{Phone: phone, Notification: n})
	return nil
}

// Messages returns a snapshot of the sent messages.
func (m *MockNotifier) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Sent)
}

// LogEntry is a line captured by MockLogger.
type LogEntry struct {
	Level    string
	TaskID   string
	Category string
	Msg      string
}

// MockLogger is a test double for domain.Logger.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

func (m *MockLogger) add(level, taskID, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Debug records a debug entry.
func (m *MockLogger) Debug(taskID, category, msg string) { m.add("debug", taskID, category, msg) }

// Info records an info entry.
func (m *MockLogger) Info(taskID, category, msg string) { m.add("info", taskID, category, msg) }

// Warn records a warn entry.
func (m *MockLogger) Warn(taskID, category, msg string) { m.add("warn", taskID, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(taskID, category, msg string) { m.add("error", taskID, category, msg) }

// MockStoreInitializer is a test double for domain.StoreInitializer.
type MockStoreInitializer struct {
	InitErr     error
	Initialized bool
}

// Initialize marks the store initialized.
func (m *MockStoreInitializer) Initialize() error {
	if m.InitErr != nil {
		return m.InitErr
	}
	m.Initialized = true
	return nil
}

// IsInitialized returns the configured value.
func (m *MockStoreInitializer) IsInitialized() bool {
	return m.Initialized
}

// MockConfigManager is a test double for domain.ConfigManager.
type MockConfigManager struct {
	InitDataErr      error
	InitGlobalErr    error
	DataConfigInfo   domain.ConfigInfo
	GlobalConfigInfo domain.ConfigInfo
	InitDataCalled   bool
	InitGlobalCalled bool
}

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{}
}

// GetDataConfigInfo returns the configured info.
func (m *MockConfigManager) GetDataConfigInfo() domain.ConfigInfo {
	return m.DataConfigInfo
}

// GetGlobalConfigInfo returns the configured info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// InitDataConfig records the call.
func (m *MockConfigManager) InitDataConfig(_ *domain.Config) error {
	m.InitDataCalled = true
	return m.InitDataErr
}

// InitGlobalConfig records the call.
func (m *MockConfigManager) InitGlobalConfig(_ *domain.Config) error {
	m.InitGlobalCalled = true
	return m.InitGlobalErr
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config *domain.Config
	Err    error
}

// NewMockConfigLoader creates a loader returning the default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{Config: domain.NewDefaultConfig()}
}

// Load returns the configured config.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Config, nil
}

// MockStore combines the mock repository, recorder and initializer into a
// full store backend.
type MockStore struct {
	*MockTaskRepository
	*MockActivityRecorder
	*MockStoreInitializer
}

// NewMockStore creates an initialized, empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		MockTaskRepository:   NewMockTaskRepository(),
		MockActivityRecorder: NewMockActivityRecorder(),
		MockStoreInitializer: &MockStoreInitializer{Initialized: true},
	}
}
