package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/query"
	"github.com/runoshun/whatstask/internal/usecase"
)

// newProjectsCommand creates the projects command.
func newProjectsCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage projects",
		Long: `List, register and inspect the projects tasks are grouped under.

A task's --project must name a registered project.`,
	}

	cmd.AddCommand(newProjectsListCommand(c))
	cmd.AddCommand(newProjectsAddCommand(c))
	cmd.AddCommand(newProjectsShowCommand(c))

	return cmd
}

func newProjectsListCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects with task counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListProjectsUseCase().Execute(cmd.Context(), usecase.ListProjectsInput{})
			if err != nil {
				return err
			}
			if len(out.Projects) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No projects registered")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tOWNER\tTASKS\tDONE\tOVERDUE")
			for _, row := range out.Projects {
				name, owner := row.Project.DisplayName(), row.Project.Owner
				if !row.Registered {
					name += " (unregistered)"
				}
				if owner == "" {
					owner = "-"
				}
				s := row.Stats
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d%%\t%d\n",
					row.Project.ID, name, owner, s.Total, s.Progress(), s.Overdue)
			}
			return tw.Flush()
		},
	}
}

func newProjectsAddCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Name        string
		Description string
		Owner       string
	}

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register or update a project",
		Long: `Register a project, or update an existing one. Only admins and managers
may add projects. IDs are lowercase slugs such as "plant" or "north-depot".

Examples:
  whatstask projects add plant --name "Pump station" --owner alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.AddProjectUseCase().Execute(cmd.Context(), usecase.AddProjectInput{
				ActorID: actorID(cmd),
				Project: domain.Project{
					ID:          args[0],
					Name:        opts.Name,
					Description: opts.Description,
					Owner:       opts.Owner,
				},
			})
			if err != nil {
				return err
			}

			verb := "Added"
			if out.Replace {
				verb = "Updated"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s project %s (%s)\n", verb, out.Project.ID, out.Project.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Short description")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "Owning user ID (default: you)")

	return cmd
}

func newProjectsShowCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project's progress and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ShowProjectUseCase().Execute(cmd.Context(), usecase.ShowProjectInput{ProjectID: args[0]})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(w).Encode(struct {
					Project  domain.Project `json:"project"`
					Stats    query.Stats    `json:"stats"`
					Progress int            `json:"progress"`
				}{out.Project, out.Stats, out.Progress})
			}

			_, _ = fmt.Fprintf(w, "# %s (%s)\n\n", out.Project.DisplayName(), out.Project.ID)
			if out.Project.Description != "" {
				_, _ = fmt.Fprintf(w, "%s\n\n", out.Project.Description)
			}
			if out.Project.Owner != "" {
				_, _ = fmt.Fprintf(w, "Owner: %s\n", out.Project.Owner)
			}
			s := out.Stats
			_, _ = fmt.Fprintf(w, "Progress: %s %d%% (%d of %d done, %d overdue)\n\n",
				progressBar(out.Progress, 20), out.Progress, s.Completed, s.Total, s.Overdue)

			if len(out.Tasks) == 0 {
				_, _ = fmt.Fprintln(w, "No tasks")
				return nil
			}
			printTaskList(w, out.Tasks, c.Clock.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

// progressBar draws pct as a fixed-width bar like [#####-----].
func progressBar(pct, width int) string {
	filled := min(max(pct*width/100, 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
