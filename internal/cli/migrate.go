package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/usecase"
)

// newMigrateCommand creates the migrate command.
func newMigrateCommand(c *app.Container) *cobra.Command {
	var opts struct {
		To             string
		SkipActivities bool
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy tasks to another store backend",
		Long: `Copy every task and its activity history from the configured store into
another backend. Destination settings ([store] path and dsn) are read
from the configuration. Tasks already present and identical are skipped,
so the command can be run again after a partial failure.

After migrating, set [store] backend to the destination.

Examples:
  # Move from the JSON file to SQLite
  whatstask migrate --to sqlite

  # Move to PostgreSQL (requires [store] dsn)
  whatstask migrate --to postgres`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			to := strings.ToLower(strings.TrimSpace(opts.To))
			if to == "" {
				return fmt.Errorf("required flag(s) \"to\" not set")
			}

			uc, closeDest, err := c.MigrateStoreUseCase(to)
			if err != nil {
				return err
			}
			defer func() { _ = closeDest() }()

			out, err := uc.Execute(cmd.Context(), usecase.MigrateStoreInput{SkipActivities: opts.SkipActivities})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d/%d tasks to %s (skipped %d, %d activity records)\n",
				out.Migrated, out.Total, to, out.Skipped, out.Activities)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "Destination backend: json, git, sqlite, postgres")
	cmd.Flags().BoolVar(&opts.SkipActivities, "skip-activities", false, "Copy tasks only")

	return cmd
}
