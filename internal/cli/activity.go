package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase"
)

// newActivityCommand creates the activity command.
func newActivityCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Since   string
		Actions []string
		By      string
		Limit   int
	}

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent activity across tasks",
		Long: `Show the activity feed of all live tasks, newest first.

Examples:
  whatstask activity --since today
  whatstask activity --action notification_failed
  whatstask activity --by alice -n 50`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := usecase.ListActivitiesInput{
				PerformedBy: opts.By,
				Limit:       opts.Limit,
			}
			if opts.Since != "" {
				since, err := parseDate(opts.Since, c.Clock.Now())
				if err != nil {
					return err
				}
				in.Since = since
			}
			for _, a := range opts.Actions {
				in.Actions = append(in.Actions, domain.Action(a))
			}

			out, err := c.ListActivitiesUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TIME\tTASK\tACTION\tBY\tDETAIL")
			for _, item := range out.Activities {
				a := item.Activity
				by := a.PerformedBy
				if by == "" {
					by = "-"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					a.CreatedAt.Format(time.DateTime), truncate(item.Task.Title, 30), a.Action, by,
					strings.TrimSpace(activityValue(a)))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.Since, "since", "", "Only records since a date")
	cmd.Flags().StringSliceVar(&opts.Actions, "action", nil, "Filter by action (can specify multiple)")
	cmd.Flags().StringVar(&opts.By, "by", "", "Filter by acting user")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum records (0 for all)")

	return cmd
}

// activityValue renders the value change or notes of a record.
func activityValue(a domain.Activity) string {
	switch {
	case a.OldValue != "" && a.NewValue != "":
		return a.OldValue + " → " + a.NewValue
	case a.NewValue != "":
		return a.NewValue
	default:
		return a.Notes
	}
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
