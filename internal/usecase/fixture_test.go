package usecase

import (
	"testing"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/testutil"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// Phones of the registered test users.
const (
	adminPhone = "15550000001"
	alicePhone = "15550000002"
	bobPhone   = "15550000003"
)

var fixtureNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// fixture bundles an engine with inspectable mocks.
type fixture struct {
	eng      *shared.Engine
	repo     *testutil.MockTaskRepository
	acts     *testutil.MockActivityRecorder
	users    *testutil.MockUserDirectory
	projects *testutil.MockProjectDirectory
	notifier *testutil.MockNotifier
	clock    *testutil.MockClock
	logger   *testutil.MockLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: testutil.NewMockTaskRepository(),
		acts: testutil.NewMockActivityRecorder(),
		users: testutil.NewMockUserDirectory(
			domain.User{ID: "admin", FullName: "Ada Admin", Role: domain.RoleAdmin, PhoneNumber: adminPhone},
			domain.User{ID: "mgr", FullName: "Max Manager", Role: domain.RoleManager},
			domain.User{ID: "alice", FullName: "Alice", Role: domain.RoleUser, PhoneNumber: alicePhone},
			domain.User{ID: "bob", FullName: "Bob", Role: domain.RoleUser, PhoneNumber: bobPhone},
			domain.User{ID: "carol", FullName: "Carol", Role: domain.RoleUser},
		),
		projects: testutil.NewMockProjectDirectory(
			domain.Project{ID: "plant", Name: "Pump station", Owner: "mgr"},
			domain.Project{ID: "retail", Name: "Shop floor"},
		),
		notifier: testutil.NewMockNotifier(),
		clock:    &testutil.MockClock{NowTime: fixtureNow},
		logger:   &testutil.MockLogger{},
	}
	f.eng = shared.NewEngine(shared.EngineDeps{
		Tasks:      f.repo,
		Activities: f.acts,
		Users:      f.users,
		Projects:   f.projects,
		Notifier:   f.notifier,
		Clock:      f.clock,
		Logger:     f.logger,
	})
	return f
}

// putTask stores a pending task created by admin and applies mods.
func (f *fixture) putTask(id string, mods ...func(*domain.Task)) *domain.Task {
	task := &domain.Task{
		ID:        id,
		Title:     "Replace pump seal",
		Status:    domain.StatusPending,
		Priority:  domain.PriorityMedium,
		CreatedBy: "admin",
		CreatedAt: fixtureNow.Add(-time.Hour),
		UpdatedAt: fixtureNow.Add(-time.Hour),
		Version:   1,
	}
	for _, mod := range mods {
		mod(task)
	}
	f.repo.Put(task)
	return task
}

// stored returns the current stored copy of a task.
func (f *fixture) stored(id string) *domain.Task {
	return f.repo.Tasks[id].Clone()
}

func assignedTo(userID, name, phone string) func(*domain.Task) {
	return func(t *domain.Task) {
		t.Assignee = domain.InternalAssignee(userID, name, phone)
	}
}

func withStatus(s domain.Status) func(*domain.Task) {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func acceptedBy(userID string) func(*domain.Task) {
	return func(t *domain.Task) {
		at := fixtureNow.Add(-30 * time.Minute)
		t.AcceptedAt, t.AcceptedBy = &at, userID
	}
}

func aliceTask(t *domain.Task) {
	assignedTo("alice", "Alice", alicePhone)(t)
}

func internal(userID string) shared.Candidate {
	return shared.InternalCandidate(userID)
}
