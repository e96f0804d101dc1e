package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// ConfigFileName is the name of the config file in both the data directory
// and the global config directory.
const ConfigFileName = "config.toml"

// DefaultDataDirName is the data directory created by 'whatstask init'.
const DefaultDataDirName = ".whatstask"

// Store backends.
const (
	StoreJSON     = "json"
	StoreGit      = "git"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Notifier backends.
const (
	NotifyWhatsApp = "whatsapp"
	NotifyLog      = "log"
	NotifyNone     = "none"
)

// Notification dispatch modes.
const (
	DispatchSync  = "sync"
	DispatchAsync = "async"
)

// Config represents the application configuration.
type Config struct {
	Store     StoreConfig     // [store]
	Users     UsersConfig     // [users]
	Projects  ProjectsConfig  // [projects]
	Notify    NotifyConfig    // [notify]
	WhatsApp  WhatsAppConfig  // [whatsapp]
	Log       LogConfig       // [log]
	Telemetry TelemetryConfig // [telemetry]
	Warnings  []string        // Unknown keys and other non-fatal issues
}

// StoreConfig selects and configures the task store.
type StoreConfig struct {
	Backend   string // json, git, sqlite, postgres
	Path      string // File path for json/sqlite, repository path for git
	DSN       string // Connection string for postgres
	Namespace string // Ref namespace for git
}

// UsersConfig locates the user directory.
type UsersConfig struct {
	File string // YAML file with registered users
}

// ProjectsConfig locates the project directory.
type ProjectsConfig struct {
	File string // YAML file with registered projects
}

// NotifyConfig configures notification dispatch.
type NotifyConfig struct {
	Backend     string          // whatsapp, log, none
	Mode        string          // sync, async
	Workers     int             // Worker count in async mode
	Timeout     time.Duration   // Per-send timeout
	MaxAttempts int             // Delivery attempts for retryable failures
	Backoff     time.Duration   // Base delay between attempts
	RateLimit   RateLimitConfig // [notify.rate_limit]
}

// RateLimitConfig bounds messages per recipient.
type RateLimitConfig struct {
	PerMinute int    // 0 disables limiting
	Burst     int    // Bucket capacity
	Backend   string // memory, redis
	RedisAddr string
	RedisDB   int
}

// WhatsAppConfig configures the WhatsApp Cloud API client.
type WhatsAppConfig struct {
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	AccessToken   string
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string // debug, info, warn, error
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	ServiceName string
}

// NewDefaultConfig returns a config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:   StoreJSON,
			Namespace: "whatstask",
		},
		Notify: NotifyConfig{
			Backend:     NotifyLog,
			Mode:        DispatchSync,
			Workers:     4,
			Timeout:     10 * time.Second,
			MaxAttempts: 3,
			Backoff:     time.Second,
			RateLimit: RateLimitConfig{
				PerMinute: 20,
				Burst:     5,
				Backend:   "memory",
			},
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:    "https://graph.facebook.com",
			APIVersion: "v19.0",
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4317",
			ServiceName: "whatstask",
		},
	}
}

// StorePath returns the store file for file-based backends, defaulting
// into dataDir.
func (c *Config) StorePath(dataDir string) string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	switch c.Store.Backend {
	case StoreSQLite:
		return filepath.Join(dataDir, "whatstask.db")
	case StoreGit:
		return dataDir
	default:
		return filepath.Join(dataDir, "tasks.json")
	}
}

// UsersPath returns the user directory file, defaulting into dataDir.
func (c *Config) UsersPath(dataDir string) string {
	if c.Users.File != "" {
		return c.Users.File
	}
	return filepath.Join(dataDir, "users.yaml")
}

// ProjectsPath returns the project directory file, defaulting into dataDir.
func (c *Config) ProjectsPath(dataDir string) string {
	if c.Projects.File != "" {
		return c.Projects.File
	}
	return filepath.Join(dataDir, "projects.yaml")
}

// GlobalConfigDir returns the global config directory under configHome.
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, "whatstask")
}

// LogsDir returns the log directory inside dataDir.
func LogsDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}

// ConfigInfo describes a config file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// RenderConfigTemplate renders the commented config file written by
// 'whatstask config init', using cfg for the default values.
func RenderConfigTemplate(cfg *Config) string {
	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		// Should never happen with valid data
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}

// GlobalLogPath returns the path of the log file shared by all tasks.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(LogsDir(dataDir), "whatstask.log")
}

// TaskLogPath returns the path of a task's own log file.
func TaskLogPath(dataDir, taskID string) string {
	return filepath.Join(LogsDir(dataDir), "task-"+taskID+".log")
}
