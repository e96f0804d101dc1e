package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/usecase"
)

// newImportCommand creates the import command.
func newImportCommand(c *app.Container) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create tasks from a Markdown file",
		Long: `Create one task per block of a Markdown file. Each block starts with
YAML frontmatter and is followed by the task description. Use "-" to read
from stdin. Every block is validated before any task is created.

File format:
  ---
  title: Replace pump seal
  priority: high
  assignee: alice
  due: 2026-03-14
  checklist: [Order part, Fit seal]
  ---
  The seal on pump 2 is leaking.

  ---
  title: Deliver boxes
  contact: {name: Joe Courier, phone: "+351912345678"}
  ---`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content []byte
			var err error
			if args[0] == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			out, err := c.ImportTasksUseCase().Execute(cmd.Context(), usecase.ImportTasksInput{
				Content: string(content),
				ActorID: actorID(cmd),
				DryRun:  dryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if dryRun {
				_, _ = fmt.Fprintf(w, "Would create %d task(s):\n", len(out.Drafts))
				for _, d := range out.Drafts {
					_, _ = fmt.Fprintf(w, "  - %s\n", d.Title)
				}
				return nil
			}
			for _, task := range out.Tasks {
				_, _ = fmt.Fprintf(w, "Created task %s: %s\n", task.ID, task.Title)
			}
			printWarnings(cmd.ErrOrStderr(), out.Warnings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate without creating tasks")

	return cmd
}
