package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/usecase"
)

// newLogsCommand creates the logs command.
func newLogsCommand(c *app.Container) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs [id]",
		Short: "Show operational logs",
		Long: `Show the operational log. With a task ID, show the log of that task,
including the notifications sent for it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.ShowLogsInput{Lines: lines}
			if len(args) == 1 {
				taskID, err := resolveTaskID(cmd, c, args[0])
				if err != nil {
					return err
				}
				in.TaskID = taskID
			}

			out, err := c.ShowLogsUseCase().Execute(cmd.Context(), in)
			if errors.Is(err, usecase.ErrNoLogFile) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No log entries yet")
				return nil
			}
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Content)
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Show only the last N lines")

	return cmd
}
