package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// ErrNoLogFile is returned when a task has no log file yet.
var ErrNoLogFile = errors.New("no log file")

// ShowLogsInput contains the parameters for showing a task log.
type ShowLogsInput struct {
	TaskID string // Task ID to show logs for (empty = global log)
	Lines  int    // Number of lines to display from the end (0 = all)
}

// ShowLogsOutput contains the result of showing a task log.
type ShowLogsOutput struct {
	LogPath string // Path to the log file
	Content string // Log file content
}

// ShowLogs is the use case for viewing operational logs.
type ShowLogs struct {
	tasks   domain.TaskRepository
	dataDir string
}

// NewShowLogs creates a new ShowLogs use case.
func NewShowLogs(tasks domain.TaskRepository, dataDir string) *ShowLogs {
	return &ShowLogs{
		tasks:   tasks,
		dataDir: dataDir,
	}
}

// Execute reads and returns the log content.
func (uc *ShowLogs) Execute(ctx context.Context, in ShowLogsInput) (*ShowLogsOutput, error) {
	logPath := domain.GlobalLogPath(uc.dataDir)
	if in.TaskID != "" {
		task, err := shared.GetTask(ctx, uc.tasks, in.TaskID)
		if err != nil {
			return nil, err
		}
		logPath = domain.TaskLogPath(uc.dataDir, task.ID)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", logPath, ErrNoLogFile)
		}
		return nil, fmt.Errorf("read log file: %w", err)
	}

	// If lines is specified, get only the last N lines
	result := strings.TrimRight(string(content), "\n")
	if in.Lines > 0 {
		lines := strings.Split(result, "\n")
		if len(lines) > in.Lines {
			lines = lines[len(lines)-in.Lines:]
		}
		result = strings.Join(lines, "\n")
	}

	return &ShowLogsOutput{
		LogPath: logPath,
		Content: result,
	}, nil
}
