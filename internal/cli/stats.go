package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/usecase"
)

// newStatsCommand creates the stats command.
func newStatsCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Assignee string
		Project  string
		JSON     bool
	}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Long: `Show dashboard counts over live tasks.

Completed includes closed tasks. Overdue tasks are also counted under
their stored status.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.TaskStatsUseCase().Execute(cmd.Context(), usecase.TaskStatsInput{
				AssigneeID: opts.Assignee,
				ProjectID:  opts.Project,
			})
			if err != nil {
				return err
			}

			if opts.JSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out.Stats)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			s := out.Stats
			_, _ = fmt.Fprintf(tw, "Total:\t%d\n", s.Total)
			_, _ = fmt.Fprintf(tw, "Pending:\t%d\n", s.Pending)
			_, _ = fmt.Fprintf(tw, "In Progress:\t%d\n", s.InProgress)
			_, _ = fmt.Fprintf(tw, "Needs Approval:\t%d\n", s.NeedsApproval)
			_, _ = fmt.Fprintf(tw, "Completed:\t%d\n", s.Completed)
			_, _ = fmt.Fprintf(tw, "Overdue:\t%d\n", s.Overdue)
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "Only count tasks of this user")
	cmd.Flags().StringVar(&opts.Project, "project", "", "Only count tasks of this project")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output JSON")

	return cmd
}
