package cli

import (
	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
)

// newBoardCommand creates the board command.
func newBoardCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive task board",
		Long: `Open the interactive board. Tasks are shown by status column with the
overdue column last. Select a task to accept, decline or advance it.

This is also what runs when whatstask is started without a subcommand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchBoardFunc(c, actorID(cmd))
		},
	}
}
