// Package logging provides file-based logging for whatstask.
// It outputs logs to both a global log file (<data-dir>/logs/whatstask.log)
// and task-specific log files (<data-dir>/logs/task-<id>.log).
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/runoshun/whatstask/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// timeFormat is used for the time column of log files.
const timeFormat = "2006-01-02 15:04:05"

// Logger writes zerolog entries to log files.
// Fields are ordered to minimize memory padding.
type Logger struct {
	global  *zerolog.Logger
	files   []*os.File
	tasks   map[string]*zerolog.Logger
	now     func() time.Time
	dataDir string
	mu      sync.Mutex
	level   zerolog.Level
}

// New creates a new Logger that writes to the data directory's log folder.
// If dataDir is empty, logging is disabled (returns a no-op logger).
func New(dataDir string, level zerolog.Level) *Logger {
	return &Logger{
		dataDir: dataDir,
		level:   level,
		tasks:   make(map[string]*zerolog.Logger),
		now:     time.Now,
	}
}

// ParseLevel parses a log level string, defaulting to info.
func ParseLevel(levelStr string) zerolog.Level {
	switch levelStr {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup points the process-wide zerolog logger at w with the given level.
// Component loggers created afterwards inherit it.
func Setup(w io.Writer, level zerolog.Level) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: timeFormat}).
		Level(level).
		With().Timestamp().Logger()
}

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

func (l *Logger) open(path string) (*zerolog.Logger, error) {
	if err := os.MkdirAll(domain.LogsDir(l.dataDir), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	// Log files are append-only and readable by the group sharing the data dir
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.files = append(l.files, f)

	w := zerolog.ConsoleWriter{
		Out:           f,
		NoColor:       true,
		TimeFormat:    timeFormat,
		PartsOrder:    []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, "task", "category", zerolog.MessageFieldName},
		FieldsExclude: []string{"task", "category"},
	}
	logger := zerolog.New(w).Level(l.level)
	return &logger, nil
}

// ensureGlobal opens or returns the global log.
func (l *Logger) ensureGlobal() (*zerolog.Logger, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.global != nil {
		return l.global, nil
	}
	logger, err := l.open(domain.GlobalLogPath(l.dataDir))
	if err != nil {
		return nil, err
	}
	l.global = logger
	return logger, nil
}

// ensureTask opens or returns a task log.
func (l *Logger) ensureTask(taskID string) (*zerolog.Logger, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if logger, ok := l.tasks[taskID]; ok {
		return logger, nil
	}
	logger, err := l.open(domain.TaskLogPath(l.dataDir, taskID))
	if err != nil {
		return nil, err
	}
	l.tasks[taskID] = logger
	return logger, nil
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
	}
	l.files = nil
	l.global = nil
	clear(l.tasks)
	return lastErr
}

// log writes an entry to the global log and, when taskID is set, to the
// task's own log as well.
func (l *Logger) log(level zerolog.Level, taskID, category, msg string) {
	if l.dataDir == "" {
		return // Logging disabled
	}
	if level < l.level {
		return
	}

	scope := "global"
	if taskID != "" {
		scope = "task-" + taskID
	}
	now := l.now()

	write := func(logger *zerolog.Logger) {
		logger.WithLevel(level).
			Time(zerolog.TimestampFieldName, now).
			Str("task", "["+scope+"]").
			Str("category", "["+category+"]").
			Msg(msg)
	}

	if global, err := l.ensureGlobal(); err == nil {
		write(global)
	}
	if taskID != "" {
		if task, err := l.ensureTask(taskID); err == nil {
			write(task)
		}
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(taskID, category, msg string) {
	l.log(zerolog.DebugLevel, taskID, category, msg)
}

// Info logs an info message.
func (l *Logger) Info(taskID, category, msg string) {
	l.log(zerolog.InfoLevel, taskID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskID, category, msg string) {
	l.log(zerolog.WarnLevel, taskID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskID, category, msg string) {
	l.log(zerolog.ErrorLevel, taskID, category, msg)
}
