package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/gitstore"
	"github.com/runoshun/whatstask/internal/infra/jsonstore"
	"github.com/runoshun/whatstask/internal/infra/notifier"
	"github.com/runoshun/whatstask/internal/infra/sqlstore"
	"github.com/runoshun/whatstask/internal/infra/whatsapp"
	"github.com/runoshun/whatstask/internal/testutil"
	"github.com/runoshun/whatstask/internal/usecase"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o600))
}

func TestNew_DefaultsToJSONStore(t *testing.T) {
	// Setup
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := filepath.Join(t.TempDir(), domain.DefaultDataDirName)

	// Execute
	c, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	// Assert
	assert.IsType(t, &jsonstore.Store{}, c.Tasks)
	assert.Equal(t, dir, c.Config.DataDir)
	assert.Equal(t, domain.NotifyLog, c.AppConfig.Notify.Backend)
	assert.IsType(t, shared.NopTelemetry{}, c.Telemetry)
	assert.NotNil(t, c.Engine)
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	writeConfig(t, dir, "[store]\nbackend = \"mongo\"\n")

	_, err := New(dir)

	assert.Error(t, err)
}

func TestNew_NotifierFailureAfterStoreOpen(t *testing.T) {
	// Setup
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	writeConfig(t, dir, "[store]\nbackend = \"sqlite\"\n\n[notify.rate_limit]\nper_minute = 10\nbackend = \"redis\"\n")

	// Execute
	c, err := New(dir)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis_addr")
	assert.Nil(t, c)

	writeConfig(t, dir, "[store]\nbackend = \"sqlite\"\n")
	c, err = New(dir)
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}

func TestRelease(t *testing.T) {
	// Setup
	var closed []string
	closer := func(name string, err error) func() error {
		return func() error {
			closed = append(closed, name)
			return err
		}
	}
	storeErr := errors.New("store busy")
	setupErr := errors.New("notifier failed")

	// Execute
	err := release(setupErr, closer("store", storeErr), closer("logger", nil))

	// Assert
	assert.Equal(t, []string{"store", "logger"}, closed)
	require.ErrorIs(t, err, setupErr)
	require.ErrorIs(t, err, storeErr)
}

func TestContainer_EndToEnd(t *testing.T) {
	// Setup
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	writeConfig(t, dir, "[store]\nbackend = \"sqlite\"\n")
	c, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	_, err = c.InitStoreUseCase().Execute(ctx, usecase.InitStoreInput{
		DataDir: dir,
		Admin:   domain.User{ID: "admin", FullName: "Ada", Role: domain.RoleAdmin},
	})
	require.NoError(t, err)

	// Execute
	_, err = c.AddProjectUseCase().Execute(ctx, usecase.AddProjectInput{
		ActorID: "admin",
		Project: domain.Project{ID: "boiler-room", Name: "Boiler room"},
	})
	require.NoError(t, err)

	created, err := c.CreateTaskUseCase().Execute(ctx, usecase.CreateTaskInput{
		ActorID:   "admin",
		Title:     "Check the boiler",
		ProjectID: "boiler-room",
	})
	require.NoError(t, err)

	listed, err := c.ListTasksUseCase().Execute(ctx, usecase.ListTasksInput{})
	require.NoError(t, err)
	shown, err := c.ShowProjectUseCase().Execute(ctx, usecase.ShowProjectInput{ProjectID: "boiler-room"})
	require.NoError(t, err)

	// Assert
	assert.IsType(t, &sqlstore.Store{}, c.Tasks)
	require.Len(t, listed.Tasks, 1)
	assert.Equal(t, created.Task.ID, listed.Tasks[0].ID)
	assert.Equal(t, domain.StatusPending, listed.Tasks[0].Status)
	assert.FileExists(t, filepath.Join(dir, "projects.yaml"))
	assert.Equal(t, 1, shown.Stats.Total)

	_, err = c.CreateTaskUseCase().Execute(ctx, usecase.CreateTaskInput{
		ActorID:   "admin",
		Title:     "Check the chimney",
		ProjectID: "roof",
	})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	cfg := domain.NewDefaultConfig()

	tests := []struct {
		want    any
		name    string
		backend string
		dsn     string
		wantErr bool
	}{
		{name: "json", backend: domain.StoreJSON, want: &jsonstore.Store{}},
		{name: "empty means json", backend: "", want: &jsonstore.Store{}},
		{name: "git", backend: domain.StoreGit, want: &gitstore.Store{}},
		{name: "sqlite", backend: domain.StoreSQLite, want: &sqlstore.Store{}},
		{name: "postgres", backend: domain.StorePostgres, dsn: "postgres://localhost/whatstask?sslmode=disable", want: &sqlstore.Store{}},
		{name: "postgres without dsn", backend: domain.StorePostgres, wantErr: true},
		{name: "unknown", backend: "mongo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *cfg
			c.Store.DSN = tt.dsn

			store, closeFn, err := OpenStore(&c, tt.backend, dir)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = closeFn() })
			assert.IsType(t, tt.want, store)
		})
	}
}

func TestNewNotifier(t *testing.T) {
	tests := []struct {
		want    any
		name    string
		backend string
		perMin  int
		wantErr bool
	}{
		{name: "log limited", backend: domain.NotifyLog, perMin: 10, want: &notifier.RateLimited{}},
		{name: "log unlimited", backend: domain.NotifyLog, want: &notifier.Log{}},
		{name: "whatsapp unlimited", backend: domain.NotifyWhatsApp, want: &whatsapp.Client{}},
		{name: "none", backend: domain.NotifyNone, perMin: 10, want: notifier.Nop{}},
		{name: "unknown", backend: "sms", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.NewDefaultConfig()
			cfg.Notify.Backend = tt.backend
			cfg.Notify.RateLimit.PerMinute = tt.perMin

			n, err := NewNotifier(cfg, &testutil.MockLogger{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, n)
		})
	}
}

func TestContainer_MigrateStoreUseCase(t *testing.T) {
	// Setup
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()
	_, err = c.InitStoreUseCase().Execute(ctx, usecase.InitStoreInput{
		DataDir: dir,
		Admin:   domain.User{ID: "admin", FullName: "Ada", Role: domain.RoleAdmin},
	})
	require.NoError(t, err)
	_, err = c.CreateTaskUseCase().Execute(ctx, usecase.CreateTaskInput{ActorID: "admin", Title: "Move me"})
	require.NoError(t, err)

	// Execute
	uc, closeDest, err := c.MigrateStoreUseCase(domain.StoreSQLite)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeDest() })
	out, err := uc.Execute(ctx, usecase.MigrateStoreInput{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, out.Migrated)
	assert.FileExists(t, filepath.Join(dir, "whatstask.db"))

	_, _, err = c.MigrateStoreUseCase(domain.StoreJSON)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}
