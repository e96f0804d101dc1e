// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/whatstask/internal/domain"
)

// EnvWhatsAppToken overrides [whatsapp].access_token.
const EnvWhatsAppToken = "WHATSTASK_WHATSAPP_TOKEN"

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	getenv        func(string) string
	dataDir       string // Path to the data directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/whatstask)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return NewLoaderWithGlobalDir(dataDir, DefaultGlobalConfigDir())
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
		getenv:        os.Getenv,
	}
}

// DefaultGlobalConfigDir returns the default global config directory.
func DefaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration.
// Precedence: defaults <- global file <- data directory file <- environment.
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	var paths []string
	if l.globalConfDir != "" {
		paths = append(paths, filepath.Join(l.globalConfDir, domain.ConfigFileName))
	}
	if l.dataDir != "" {
		paths = append(paths, filepath.Join(l.dataDir, domain.ConfigFileName))
	}

	for _, path := range paths {
		if err := l.applyFile(cfg, path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
	}

	if token := l.getenv(EnvWhatsAppToken); token != "" {
		cfg.WhatsApp.AccessToken = token
	}

	sort.Strings(cfg.Warnings)
	return cfg, nil
}

// applyFile merges the keys present in path into cfg.
func (l *Loader) applyFile(cfg *domain.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if err := applyRaw(cfg, raw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// setter stores a raw TOML value into the config. ok=false means the value
// had the wrong type or an unknown enum value.
type setter func(cfg *domain.Config, v any) (ok bool)

// sections maps each known section to its keys.
var sections = map[string]map[string]setter{
	"store": {
		"backend":   enumValue(func(c *domain.Config) *string { return &c.Store.Backend }, domain.StoreJSON, domain.StoreGit, domain.StoreSQLite, domain.StorePostgres),
		"path":      stringValue(func(c *domain.Config) *string { return &c.Store.Path }),
		"dsn":       stringValue(func(c *domain.Config) *string { return &c.Store.DSN }),
		"namespace": stringValue(func(c *domain.Config) *string { return &c.Store.Namespace }),
	},
	"users": {
		"file": stringValue(func(c *domain.Config) *string { return &c.Users.File }),
	},
	"projects": {
		"file": stringValue(func(c *domain.Config) *string { return &c.Projects.File }),
	},
	"notify": {
		"backend":      enumValue(func(c *domain.Config) *string { return &c.Notify.Backend }, domain.NotifyWhatsApp, domain.NotifyLog, domain.NotifyNone),
		"mode":         enumValue(func(c *domain.Config) *string { return &c.Notify.Mode }, domain.DispatchSync, domain.DispatchAsync),
		"workers":      intValue(func(c *domain.Config) *int { return &c.Notify.Workers }),
		"timeout":      durationValue(func(c *domain.Config) *time.Duration { return &c.Notify.Timeout }),
		"max_attempts": intValue(func(c *domain.Config) *int { return &c.Notify.MaxAttempts }),
		"backoff":      durationValue(func(c *domain.Config) *time.Duration { return &c.Notify.Backoff }),
	},
	"notify.rate_limit": {
		"per_minute": intValue(func(c *domain.Config) *int { return &c.Notify.RateLimit.PerMinute }),
		"burst":      intValue(func(c *domain.Config) *int { return &c.Notify.RateLimit.Burst }),
		"backend":    enumValue(func(c *domain.Config) *string { return &c.Notify.RateLimit.Backend }, "memory", "redis"),
		"redis_addr": stringValue(func(c *domain.Config) *string { return &c.Notify.RateLimit.RedisAddr }),
		"redis_db":   intValue(func(c *domain.Config) *int { return &c.Notify.RateLimit.RedisDB }),
	},
	"whatsapp": {
		"base_url":        stringValue(func(c *domain.Config) *string { return &c.WhatsApp.BaseURL }),
		"api_version":     stringValue(func(c *domain.Config) *string { return &c.WhatsApp.APIVersion }),
		"phone_number_id": stringValue(func(c *domain.Config) *string { return &c.WhatsApp.PhoneNumberID }),
		"access_token":    stringValue(func(c *domain.Config) *string { return &c.WhatsApp.AccessToken }),
	},
	"log": {
		"level": enumValue(func(c *domain.Config) *string { return &c.Log.Level }, "debug", "info", "warn", "error"),
	},
	"telemetry": {
		"enabled":      boolValue(func(c *domain.Config) *bool { return &c.Telemetry.Enabled }),
		"endpoint":     stringValue(func(c *domain.Config) *string { return &c.Telemetry.Endpoint }),
		"insecure":     boolValue(func(c *domain.Config) *bool { return &c.Telemetry.Insecure }),
		"service_name": stringValue(func(c *domain.Config) *string { return &c.Telemetry.ServiceName }),
	},
}

// applyRaw walks the decoded TOML document. Unknown sections and keys
// become warnings; values of the wrong type or outside an enum are errors.
func applyRaw(cfg *domain.Config, raw map[string]any) error {
	var errs []error
	var walk func(section string, m map[string]any)
	walk = func(section string, m map[string]any) {
		keys := sections[section]
		for k, v := range m {
			if set, ok := keys[k]; ok {
				if !set(cfg, v) {
					errs = append(errs, fmt.Errorf("invalid value for [%s].%s: %v", section, k, v))
				}
				continue
			}
			if sub, ok := v.(map[string]any); ok {
				name := section + "." + k
				if _, known := sections[name]; known {
					walk(name, sub)
					continue
				}
			}
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown key in [%s]: %s", section, k))
		}
	}

	for section, value := range raw {
		m, isTable := value.(map[string]any)
		if _, known := sections[section]; !known || !isTable {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		walk(section, m)
	}

	slices.SortFunc(errs, func(a, b error) int { return strings.Compare(a.Error(), b.Error()) })
	return errors.Join(errs...)
}

func stringValue(field func(*domain.Config) *string) setter {
	return func(cfg *domain.Config, v any) bool {
		s, ok := v.(string)
		if ok {
			*field(cfg) = s
		}
		return ok
	}
}

func enumValue(field func(*domain.Config) *string, allowed ...string) setter {
	return func(cfg *domain.Config, v any) bool {
		s, ok := v.(string)
		if !ok || !slices.Contains(allowed, s) {
			return false
		}
		*field(cfg) = s
		return true
	}
}

func intValue(field func(*domain.Config) *int) setter {
	return func(cfg *domain.Config, v any) bool {
		n, ok := v.(int64)
		if !ok || n < 0 {
			return false
		}
		*field(cfg) = int(n)
		return true
	}
}

func boolValue(field func(*domain.Config) *bool) setter {
	return func(cfg *domain.Config, v any) bool {
		b, ok := v.(bool)
		if ok {
			*field(cfg) = b
		}
		return ok
	}
}

func durationValue(field func(*domain.Config) *time.Duration) setter {
	return func(cfg *domain.Config, v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return false
		}
		*field(cfg) = d
		return true
	}
}
