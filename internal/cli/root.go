// Package cli provides the command-line interface for whatstask.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/tui"
)

// Command group IDs.
const (
	groupSetup     = "setup"
	groupTask      = "task"
	groupLifecycle = "lifecycle"
	groupView      = "view"
)

// launchBoardFunc is a function variable for launching the board, allowing it to be mocked in tests.
var launchBoardFunc = launchBoard

// NewRootCommand creates the root command for whatstask.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var dataDir string
	var actor string

	root := &cobra.Command{
		Use:   "whatstask",
		Short: "Task assignment with WhatsApp notifications",
		Long: `whatstask tracks tasks through their lifecycle and assigns them to
registered users or external WhatsApp contacts.

Assignees are notified over WhatsApp when a task is assigned, reassigned
or modified. Every change is kept in the task's activity history.

The acting user is taken from --as or WHATSTASK_USER.
Running without a subcommand opens the interactive board.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchBoardFunc(c, actorID(cmd))
		},
	}

	// --dir is resolved before the container is built; it is declared here
	// so that cobra accepts it and lists it in help.
	root.PersistentFlags().StringVar(&dataDir, "dir", "", "Data directory (env "+EnvDataDir+")")
	root.PersistentFlags().StringVar(&actor, "as", "", "Acting user ID (env "+EnvUser+")")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupLifecycle, Title: "Assignment & Lifecycle:"},
		&cobra.Group{ID: groupView, Title: "Views:"},
	)

	grouped := func(id string, cmds ...*cobra.Command) {
		for _, cmd := range cmds {
			cmd.GroupID = id
			root.AddCommand(cmd)
		}
	}

	grouped(groupSetup,
		newInitCommand(c),
		newConfigCommand(c),
		newUsersCommand(c),
		newProjectsCommand(c),
		newMigrateCommand(c),
	)
	grouped(groupTask,
		newNewCommand(c),
		newImportCommand(c),
		newEditCommand(c),
		newCommentCommand(c),
		newRmCommand(c),
		newRestoreCommand(c),
	)
	grouped(groupLifecycle,
		newAssignCommand(c),
		newReassignCommand(c),
		newAcceptCommand(c),
		newDeclineCommand(c),
		newStatusCommand(c),
	)
	grouped(groupView,
		newListCommand(c),
		newShowCommand(c),
		newStatsCommand(c),
		newActivityCommand(c),
		newLogsCommand(c),
		newBoardCommand(c),
	)

	return root
}

// launchBoard runs the interactive board.
func launchBoard(c *app.Container, actor string) error {
	if c == nil {
		return fmt.Errorf("whatstask is not configured")
	}
	return tui.Run(c, actor)
}
