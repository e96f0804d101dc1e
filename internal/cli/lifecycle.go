package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase"
)

// newAssignCommand creates the assign command.
func newAssignCommand(c *app.Container) *cobra.Command {
	var assignee assigneeFlags

	cmd := &cobra.Command{
		Use:   "assign <id>",
		Short: "Assign a task to a user or external contact",
		Long: `Assign a task to a registered user (--user) or to an external WhatsApp
contact (--name and --phone). The status is kept and any previous
acknowledgment is cleared. The new assignee is notified.

Examples:
  whatstask assign 0195f0c2 --user alice
  whatstask assign 0195f0c2 --name "Joe Courier" --phone +351912345678`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cand, err := assignee.candidate()
			if err != nil {
				return err
			}
			if cand == nil {
				return fmt.Errorf("an assignee is required (--user or --name/--phone): %w", domain.ErrValidationFailed)
			}

			taskID, err := resolveTaskID(cmd, c, args[0])
			if err != nil {
				return err
			}

			out, err := c.AssignTaskUseCase().Execute(cmd.Context(), usecase.AssignTaskInput{
				TaskID:    taskID,
				ActorID:   actorID(cmd),
				Candidate: *cand,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Assigned task %s to %s\n", out.Task.ID, out.Task.Assignee.DisplayName())
			printWarnings(cmd.ErrOrStderr(), out.Warnings)
			return nil
		},
	}

	assignee.register(cmd, "assign")

	return cmd
}

// newReassignCommand creates the reassign command.
func newReassignCommand(c *app.Container) *cobra.Command {
	var assignee assigneeFlags

	cmd := &cobra.Command{
		Use:   "reassign <id>",
		Short: "Hand a task to a different assignee",
		Long: `Reassign a task. The task goes back to 'pending' and waits for the new
assignee to accept it. Both the new and the previous assignee are notified.

Examples:
  whatstask reassign 0195f0c2 --user bob`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cand, err := assignee.candidate()
			if err != nil {
				return err
			}
			if cand == nil {
				return fmt.Errorf("an assignee is required (--user or --name/--phone): %w", domain.ErrValidationFailed)
			}

			taskID, err := resolveTaskID(cmd, c, args[0])
			if err != nil {
				return err
			}

			out, err := c.ReassignTaskUseCase().Execute(cmd.Context(), usecase.ReassignTaskInput{
				TaskID:    taskID,
				ActorID:   actorID(cmd),
				Candidate: *cand,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reassigned task %s from %s to %s\n",
				out.Task.ID, out.Previous.DisplayName(), out.Task.Assignee.DisplayName())
			printWarnings(cmd.ErrOrStderr(), out.Warnings)
			return nil
		},
	}

	assignee.register(cmd, "reassign to")

	return cmd
}

// newAcceptCommand creates the accept command.
func newAcceptCommand(c *app.Container) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "accept <id>",
		Short: "Accept a task assigned to you",
		Long: `Accept a task as its assignee. A pending task moves to 'in_progress'.

Examples:
  WHATSTASK_USER=alice whatstask accept 0195f0c2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := resolveTaskID(cmd, c, args[0])
			if err != nil {
				return err
			}

			out, err := c.AcceptTaskUseCase().Execute(cmd.Context(), usecase.AcknowledgeTaskInput{
				TaskID:  taskID,
				ActorID: actorID(cmd),
				Note:    note,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Accepted task %s (%s)\n", out.Task.ID, out.Task.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&note, "note", "m", "", "Note for the activity record")

	return cmd
}

// newDeclineCommand creates the decline command.
func newDeclineCommand(c *app.Container) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "decline <id>",
		Short: "Decline a task assigned to you",
		Long: `Decline a task as its assignee. The task stays assigned until a manager
reassigns it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := resolveTaskID(cmd, c, args[0])
			if err != nil {
				return err
			}

			out, err := c.DeclineTaskUseCase().Execute(cmd.Context(), usecase.AcknowledgeTaskInput{
				TaskID:  taskID,
				ActorID: actorID(cmd),
				Note:    note,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Declined task %s\n", out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&note, "note", "m", "", "Reason for declining")

	return cmd
}

// newStatusCommand creates the status command.
func newStatusCommand(c *app.Container) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change a task's status",
		Long: `Move a task to another status.

Allowed transitions:
  pending        -> in_progress
  in_progress    -> pending, needs_approval, completed
  needs_approval -> in_progress, completed
  completed      -> closed

Only the assignee, an admin or a manager may complete a task. Other
attempts are recorded and leave the task unchanged.

Examples:
  whatstask status 0195f0c2 needs_approval
  whatstask status 0195f0c2 completed -m "Checked on site"`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 1 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			out := make([]string, 0, len(domain.AllStatuses()))
			for _, s := range domain.AllStatuses() {
				out = append(out, string(s))
			}
			return out, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := resolveTaskID(cmd, c, args[0])
			if err != nil {
				return err
			}

			out, err := c.ChangeStatusUseCase().Execute(cmd.Context(), usecase.ChangeStatusInput{
				TaskID:  taskID,
				ActorID: actorID(cmd),
				Status:  domain.Status(args[1]),
				Note:    note,
			})
			if err != nil {
				return err
			}

			if out.Rejected {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Only the assignee or a manager can complete task %s; the attempt was recorded\n", out.Task.ID)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", out.Task.ID, out.Task.Status.Display())
			return nil
		},
	}

	cmd.Flags().StringVarP(&note, "note", "m", "", "Note for the activity record")

	return cmd
}
