// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/config"
	"github.com/runoshun/whatstask/internal/infra/gitstore"
	"github.com/runoshun/whatstask/internal/infra/jsonstore"
	"github.com/runoshun/whatstask/internal/infra/logging"
	"github.com/runoshun/whatstask/internal/infra/notifier"
	"github.com/runoshun/whatstask/internal/infra/projectdir"
	"github.com/runoshun/whatstask/internal/infra/ratelimit"
	"github.com/runoshun/whatstask/internal/infra/sqlstore"
	"github.com/runoshun/whatstask/internal/infra/telemetry"
	"github.com/runoshun/whatstask/internal/infra/userdir"
	"github.com/runoshun/whatstask/internal/infra/whatsapp"
	"github.com/runoshun/whatstask/internal/usecase"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// Store is a task store backend: tasks, their history, setup and bulk import.
type Store interface {
	domain.TaskRepository
	domain.ActivityRecorder
	domain.StoreInitializer
	domain.TaskImporter
}

// Config holds the application paths.
type Config struct {
	DataDir string // Path to the data directory (.whatstask)
}

// Users is a readable and writable user directory.
type Users interface {
	domain.UserDirectory
	domain.UserWriter
}

// Projects is a readable and writable project directory.
type Projects interface {
	domain.ProjectDirectory
	domain.ProjectWriter
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Tasks            domain.TaskRepository
	Activities       domain.ActivityRecorder
	StoreInitializer domain.StoreInitializer
	Importer         domain.TaskImporter
	Users            Users
	Projects         Projects
	Notifier         domain.Notifier
	Clock            domain.Clock
	ConfigLoader     domain.ConfigLoader
	ConfigManager    domain.ConfigManager
	Telemetry        shared.Telemetry

	// Pointer fields
	Logger    *logging.Logger
	AppConfig *domain.Config
	Engine    *shared.Engine

	closers []func() error

	// Configuration
	Config Config
}

// New creates a new Container for the data directory dir.
func New(dir string) (*Container, error) {
	cfg := Config{DataDir: dir}

	configLoader := config.NewLoader(cfg.DataDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.DataDir, logging.ParseLevel(appConfig.Log.Level))

	store, closeStore, err := OpenStore(appConfig, appConfig.Store.Backend, cfg.DataDir)
	if err != nil {
		return nil, release(err, logger.Close)
	}

	n, err := NewNotifier(appConfig, logger)
	if err != nil {
		return nil, release(err, closeStore, logger.Close)
	}

	tel, shutdown, err := telemetry.New(context.Background(), appConfig.Telemetry)
	if err != nil {
		return nil, release(err, closeStore, logger.Close)
	}

	c := NewWithDeps(cfg, appConfig, store, userdir.New(appConfig.UsersPath(cfg.DataDir)), n, domain.RealClock{}, logger, tel)
	c.ConfigLoader = configLoader
	c.ConfigManager = config.NewManager(cfg.DataDir)
	c.closers = append(c.closers,
		func() error { return shutdown(context.Background()) },
		closeStore,
		logger.Close,
	)
	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, store Store, users Users, n domain.Notifier,
	clock domain.Clock, logger *logging.Logger, tel shared.Telemetry) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	if tel == nil {
		tel = shared.NopTelemetry{}
	}
	var log domain.Logger = nopLogger{}
	if logger != nil {
		log = logger
	}

	projects := projectdir.New(appConfig.ProjectsPath(cfg.DataDir))

	engine := shared.NewEngine(shared.EngineDeps{
		Tasks:      store,
		Activities: store,
		Users:      users,
		Projects:   projects,
		Notifier:   n,
		Clock:      clock,
		Logger:     log,
		Telemetry:  tel,
		Dispatch: shared.DispatcherOptions{
			Mode:    appConfig.Notify.Mode,
			Workers: appConfig.Notify.Workers,
			Timeout: appConfig.Notify.Timeout,
		},
	})

	return &Container{
		Tasks:            store,
		Activities:       store,
		StoreInitializer: store,
		Importer:         store,
		Users:            users,
		Projects:         projects,
		Notifier:         n,
		Clock:            clock,
		Telemetry:        tel,
		Logger:           logger,
		AppConfig:        appConfig,
		Engine:           engine,
		Config:           cfg,
	}
}

// release runs every closer after a failed setup and joins their errors
// onto err.
func release(err error, closers ...func() error) error {
	errs := []error{err}
	for _, fn := range closers {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}

// Close drains pending notifications and releases every resource.
func (c *Container) Close() error {
	if c.Engine != nil {
		c.Engine.Dispatcher.Wait()
	}
	var errs []error
	for _, fn := range c.closers {
		errs = append(errs, fn())
	}
	c.closers = nil
	return errors.Join(errs...)
}

// OpenStore opens the store backend named by backend using the paths and
// connection settings in cfg. The returned function closes it.
func OpenStore(cfg *domain.Config, backend, dataDir string) (Store, func() error, error) {
	noClose := func() error { return nil }
	switch backend {
	case domain.StoreJSON, "":
		return jsonstore.New(storePath(cfg, backend, dataDir)), noClose, nil
	case domain.StoreGit:
		s, err := gitstore.New(storePath(cfg, backend, dataDir), cfg.Store.Namespace)
		if err != nil {
			return nil, nil, err
		}
		return s, noClose, nil
	case domain.StoreSQLite:
		s, err := sqlstore.Open(sqlstore.SQLite, storePath(cfg, backend, dataDir))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case domain.StorePostgres:
		if cfg.Store.DSN == "" {
			return nil, nil, fmt.Errorf("store backend postgres requires [store].dsn: %w", domain.ErrValidationFailed)
		}
		s, err := sqlstore.Open(sqlstore.Postgres, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q: %w", backend, domain.ErrValidationFailed)
	}
}

// storePath resolves the path for backend. The configured path only
// applies to the configured backend.
func storePath(cfg *domain.Config, backend, dataDir string) string {
	if backend == cfg.Store.Backend {
		return cfg.StorePath(dataDir)
	}
	other := *cfg
	other.Store.Backend = backend
	other.Store.Path = ""
	return other.StorePath(dataDir)
}

// NewNotifier builds the notifier chain selected by [notify].
func NewNotifier(cfg *domain.Config, logger domain.Logger) (domain.Notifier, error) {
	var base domain.Notifier
	switch cfg.Notify.Backend {
	case domain.NotifyWhatsApp:
		base = whatsapp.NewClient(whatsapp.FromConfig(cfg))
	case domain.NotifyLog, "":
		base = notifier.NewLog(logger, whatsapp.RenderMessage)
	case domain.NotifyNone:
		return notifier.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q: %w", cfg.Notify.Backend, domain.ErrValidationFailed)
	}

	limiter, err := ratelimit.New(cfg.Notify.RateLimit)
	if err != nil {
		return nil, err
	}
	return notifier.NewRateLimited(base, limiter), nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, string) {}
func (nopLogger) Info(string, string, string)  {}
func (nopLogger) Warn(string, string, string)  {}
func (nopLogger) Error(string, string, string) {}

// UseCase factory methods

// InitStoreUseCase returns a new InitStore use case.
func (c *Container) InitStoreUseCase() *usecase.InitStore {
	return usecase.NewInitStore(c.StoreInitializer, c.Users, c.Users)
}

// CreateTaskUseCase returns a new CreateTask use case.
func (c *Container) CreateTaskUseCase() *usecase.CreateTask {
	return usecase.NewCreateTask(c.Engine)
}

// AssignTaskUseCase returns a new AssignTask use case.
func (c *Container) AssignTaskUseCase() *usecase.AssignTask {
	return usecase.NewAssignTask(c.Engine)
}

// ReassignTaskUseCase returns a new ReassignTask use case.
func (c *Container) ReassignTaskUseCase() *usecase.ReassignTask {
	return usecase.NewReassignTask(c.Engine)
}

// AcceptTaskUseCase returns a new AcceptTask use case.
func (c *Container) AcceptTaskUseCase() *usecase.AcceptTask {
	return usecase.NewAcceptTask(c.Engine)
}

// DeclineTaskUseCase returns a new DeclineTask use case.
func (c *Container) DeclineTaskUseCase() *usecase.DeclineTask {
	return usecase.NewDeclineTask(c.Engine)
}

// ChangeStatusUseCase returns a new ChangeStatus use case.
func (c *Container) ChangeStatusUseCase() *usecase.ChangeStatus {
	return usecase.NewChangeStatus(c.Engine)
}

// EditTaskUseCase returns a new EditTask use case.
func (c *Container) EditTaskUseCase() *usecase.EditTask {
	return usecase.NewEditTask(c.Engine)
}

// AddCommentUseCase returns a new AddComment use case.
func (c *Container) AddCommentUseCase() *usecase.AddComment {
	return usecase.NewAddComment(c.Engine)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Engine)
}

// RestoreTaskUseCase returns a new RestoreTask use case.
func (c *Container) RestoreTaskUseCase() *usecase.RestoreTask {
	return usecase.NewRestoreTask(c.Engine)
}

// ImportTasksUseCase returns a new ImportTasks use case.
func (c *Container) ImportTasksUseCase() *usecase.ImportTasks {
	return usecase.NewImportTasks(c.Engine)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Tasks, c.Clock)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Tasks, c.Activities, c.Clock)
}

// TaskStatsUseCase returns a new TaskStats use case.
func (c *Container) TaskStatsUseCase() *usecase.TaskStats {
	return usecase.NewTaskStats(c.Tasks, c.Clock)
}

// ListActivitiesUseCase returns a new ListActivities use case.
func (c *Container) ListActivitiesUseCase() *usecase.ListActivities {
	return usecase.NewListActivities(c.Tasks, c.Activities)
}

// AddUserUseCase returns a new AddUser use case.
func (c *Container) AddUserUseCase() *usecase.AddUser {
	return usecase.NewAddUser(c.Users, c.Users)
}

// AddProjectUseCase returns a new AddProject use case.
func (c *Container) AddProjectUseCase() *usecase.AddProject {
	return usecase.NewAddProject(c.Users, c.Projects, c.Projects)
}

// ListProjectsUseCase returns a new ListProjects use case.
func (c *Container) ListProjectsUseCase() *usecase.ListProjects {
	return usecase.NewListProjects(c.Projects, c.Tasks, c.Clock)
}

// ShowProjectUseCase returns a new ShowProject use case.
func (c *Container) ShowProjectUseCase() *usecase.ShowProject {
	return usecase.NewShowProject(c.Projects, c.Tasks, c.Clock)
}

// ShowLogsUseCase returns a new ShowLogs use case.
func (c *Container) ShowLogsUseCase() *usecase.ShowLogs {
	return usecase.NewShowLogs(c.Tasks, c.Config.DataDir)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}

// MigrateStoreUseCase opens the destination backend and returns a
// MigrateStore use case copying the current store into it. The returned
// function closes the destination.
func (c *Container) MigrateStoreUseCase(destBackend string) (*usecase.MigrateStore, func() error, error) {
	if destBackend == c.AppConfig.Store.Backend {
		return nil, nil, fmt.Errorf("destination backend %q is the current backend: %w", destBackend, domain.ErrValidationFailed)
	}
	dest, closeDest, err := OpenStore(c.AppConfig, destBackend, c.Config.DataDir)
	if err != nil {
		return nil, nil, err
	}
	return usecase.NewMigrateStore(c.Tasks, c.Activities, dest, dest, dest), closeDest, nil
}
