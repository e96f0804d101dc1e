package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/runoshun/whatstask/internal/app"
	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/query"
	"github.com/runoshun/whatstask/internal/usecase"
)

// newNewCommand creates the new command for creating tasks.
func newNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Priority    string
		Due         string
		Project     string
		Checklist   []string
		Watchers    []string
	}
	var assignee assigneeFlags

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task",
		Long: `Create a new task.

The task starts in status 'pending'. When an assignee is given the task
is assigned right away and the assignee is notified over WhatsApp.

Examples:
  # Create an unassigned task
  whatstask new --title "Replace pump seal"

  # Create and assign to a registered user
  whatstask new --title "Replace pump seal" --user alice --due tomorrow

  # Create and assign to an external contact
  whatstask new --title "Deliver boxes" --name "Joe Courier" --phone +351912345678

  # Create with a checklist
  whatstask new --title "Open shop" --check "Unlock door" --check "Start till"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Title == "" {
				return fmt.Errorf("required flag(s) \"title\" not set")
			}

			cand, err := assignee.candidate()
			if err != nil {
				return err
			}

			input := usecase.CreateTaskInput{
				ActorID:     actorID(cmd),
				Title:       opts.Title,
				Description: opts.Description,
				Priority:    domain.Priority(opts.Priority),
				ProjectID:   opts.Project,
				Checklist:   opts.Checklist,
				Watchers:    opts.Watchers,
				Assignee:    cand,
			}
			if opts.Due != "" {
				due, err := parseDate(opts.Due, c.Clock.Now())
				if err != nil {
					return err
				}
				input.DueDate = &due
			}

			out, err := c.CreateTaskUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", out.Task.ID)
			if out.Task.Assignee.IsAssigned() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Assigned to %s\n", out.Task.Assignee.DisplayName())
			}
			printWarnings(cmd.ErrOrStderr(), out.Warnings)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&opts.Description, "body", "", "Task description")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "Priority: low, medium, high, urgent (default medium)")
	cmd.Flags().StringVar(&opts.Due, "due", "", "Due date: YYYY-MM-DD, today, tomorrow or +Nd")
	cmd.Flags().StringVar(&opts.Project, "project", "", "Project the task belongs to")
	cmd.Flags().StringArrayVar(&opts.Checklist, "check", nil, "Checklist item (can specify multiple)")
	cmd.Flags().StringArrayVar(&opts.Watchers, "watcher", nil, "Watcher user ID (can specify multiple)")
	assignee.register(cmd, "assign")

	return cmd
}

// newListCommand creates the list command for listing tasks.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Filter  query.Filter
		Where   string
		Deleted bool
		All     bool
		JSON    bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `Display a list of tasks in creation order.

Soft-deleted tasks are hidden. Use --all to include them or --deleted to
show only them.

Filters are combined with AND. Every filter accepts "all" as a no-op.
  --status     pending, in_progress, needs_approval, completed, closed, overdue
  --due        today, tomorrow, this_week, next_week, overdue, no_due_date
  --created    today, this_week, this_month, last_week, last_month
  --checklist  with_checklist, without_checklist
  --assignee   user ID or "unassigned"

--where takes an expression over task fields, for example:
  whatstask list --where 'priority == "urgent" && !overdue'
  whatstask list --where 'checklist_ratio < 0.5 && external'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListTasksUseCase().Execute(cmd.Context(), usecase.ListTasksInput{
				Filter:         opts.Filter,
				Where:          opts.Where,
				IncludeDeleted: opts.All,
				OnlyDeleted:    opts.Deleted,
			})
			if err != nil {
				return err
			}

			if opts.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out.Tasks)
			}
			printTaskList(cmd.OutOrStdout(), out.Tasks, c.Clock.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Filter.Search, "search", "", "Case-insensitive text search")
	cmd.Flags().StringVar(&opts.Filter.Status, "status", "", "Filter by status (or overdue)")
	cmd.Flags().StringVar(&opts.Filter.Priority, "priority", "", "Filter by priority")
	cmd.Flags().StringVar(&opts.Filter.Project, "project", "", "Filter by project")
	cmd.Flags().StringVar(&opts.Filter.Assignee, "assignee", "", "Filter by assignee user ID or 'unassigned'")
	cmd.Flags().StringVar(&opts.Filter.DueDate, "due", "", "Filter by due date window")
	cmd.Flags().StringVar(&opts.Filter.CreatedDate, "created", "", "Filter by creation window")
	cmd.Flags().StringVar(&opts.Filter.Checklist, "checklist", "", "Filter by checklist presence")
	cmd.Flags().StringVar(&opts.Where, "where", "", "Filter expression")
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Include deleted tasks")
	cmd.Flags().BoolVar(&opts.Deleted, "deleted", false, "Show only deleted tasks")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output JSON")

	return cmd
}

// printTaskList prints tasks as an aligned table.
func printTaskList(w io.Writer, tasks []*domain.Task, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	// Header
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tASSIGNEE\tTITLE")

	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	n := prefixLen(ids)

	// Rows
	for _, task := range tasks {
		status := string(task.Status)
		if task.IsOverdue(now) {
			status += " (overdue)"
		}
		if task.IsDeleted() {
			status += " [deleted]"
		}
		assignee := "-"
		if task.Assignee.IsAssigned() {
			assignee = task.Assignee.DisplayName()
			if task.Assignee.IsExternal() {
				assignee += " (ext)"
			}
		}
		title := task.Title
		if done, total := task.ChecklistProgress(); total > 0 {
			title += fmt.Sprintf(" [%d/%d]", done, total)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(task.ID, n), status, task.Priority, formatDate(task.DueDate), assignee, title)
	}
}

// newShowCommand creates the show command for displaying task details.
func newShowCommand(c *app.Container) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details and history",
		Long: `Display detailed information about a task, followed by its activity
history in the order it happened. The ID may be any unique prefix.

Output is rendered as Markdown. Use --raw for the unrendered Markdown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := resolveTaskID(cmd, c, args[0])
			if err != nil {
				return err
			}

			out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: taskID})
			if err != nil {
				return err
			}

			md := taskMarkdown(out)
			if raw {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
			if err != nil {
				return fmt.Errorf("create renderer: %w", err)
			}
			rendered, err := r.Render(md)
			if err != nil {
				return fmt.Errorf("render task: %w", err)
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print Markdown without rendering")

	return cmd
}

// taskMarkdown formats a task and its history as Markdown.
func taskMarkdown(out *usecase.ShowTaskOutput) string {
	task := out.Task
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", task.Title)
	fmt.Fprintf(&b, "- **ID:** `%s`\n", task.ID)
	status := task.Status.Display()
	if out.Overdue {
		status += " (overdue)"
	}
	fmt.Fprintf(&b, "- **Status:** %s\n", status)
	fmt.Fprintf(&b, "- **Priority:** %s\n", task.Priority)
	fmt.Fprintf(&b, "- **Assignee:** %s\n", task.Assignee.String())
	switch {
	case task.AcceptedAt != nil:
		fmt.Fprintf(&b, "- **Accepted:** %s by %s\n", task.AcceptedAt.Format(time.DateTime), task.AcceptedBy)
	case task.DeclinedAt != nil:
		fmt.Fprintf(&b, "- **Declined:** %s by %s\n", task.DeclinedAt.Format(time.DateTime), task.DeclinedBy)
	}
	fmt.Fprintf(&b, "- **Due:** %s\n", formatDate(task.DueDate))
	if task.ProjectID != "" {
		fmt.Fprintf(&b, "- **Project:** %s\n", task.ProjectID)
	}
	if len(task.Watchers) > 0 {
		fmt.Fprintf(&b, "- **Watchers:** %s\n", strings.Join(task.Watchers, ", "))
	}
	fmt.Fprintf(&b, "- **Created:** %s by %s\n", task.CreatedAt.Format(time.DateTime), task.CreatedBy)
	if task.IsDeleted() {
		fmt.Fprintf(&b, "- **Deleted:** %s by %s (%s)\n", task.DeletedAt.Format(time.DateTime), task.DeletedBy, task.DeleteReason)
	}

	if task.Description != "" {
		fmt.Fprintf(&b, "\n## Description\n\n%s\n", task.Description)
	}

	if len(task.Checklist) > 0 {
		done, total := task.ChecklistProgress()
		fmt.Fprintf(&b, "\n## Checklist (%d/%d)\n\n", done, total)
		for _, item := range task.Checklist {
			mark := " "
			if item.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, item.Text)
		}
	}

	if len(out.Activities) > 0 {
		b.WriteString("\n## History\n\n")
		for _, a := range out.Activities {
			fmt.Fprintf(&b, "- %s **%s**%s\n", a.CreatedAt.Format(time.DateTime), a.Action, activityDetail(a))
		}
	}
	return b.String()
}

// activityDetail renders the optional parts of an activity line.
func activityDetail(a domain.Activity) string {
	var parts []string
	if a.PerformedBy != "" {
		parts = append(parts, "by "+a.PerformedBy)
	}
	switch {
	case a.OldValue != "" && a.NewValue != "":
		parts = append(parts, a.OldValue+" → "+a.NewValue)
	case a.NewValue != "":
		parts = append(parts, a.NewValue)
	}
	if a.Notes != "" {
		parts = append(parts, "“"+a.Notes+"”")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, ", ")
}

// newEditCommand creates the edit command for modifying tasks.
func newEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title           string
		Description     string
		Priority        string
		Project         string
		Due             string
		AddChecklist    []string
		ToggleChecklist []int
		RemoveChecklist []int
		AddWatchers     []string
		RemoveWatchers  []string
		ClearDue        bool
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task fields",
		Long: `Edit an existing task.

Only the flags that are given change. Checklist indexes are 1-based as
shown by 'whatstask show'. The assignee is notified when the task changes.

Examples:
  whatstask edit 0195f0c2 --title "Replace both pump seals"
  whatstask edit 0195f0c2 --due +3d --priority high
  whatstask edit 0195f0c2 --check "Order parts" --toggle 1
  whatstask edit 0195f0c2 --clear-due`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := resolveTaskID(cmd, c, args[0])
			if err != nil {
				return err
			}

			input := usecase.EditTaskInput{
				TaskID:          taskID,
				ActorID:         actorID(cmd),
				AddChecklist:    opts.AddChecklist,
				ToggleChecklist: zeroBased(opts.ToggleChecklist),
				RemoveChecklist: zeroBased(opts.RemoveChecklist),
				AddWatchers:     opts.AddWatchers,
				RemoveWatchers:  opts.RemoveWatchers,
				ClearDueDate:    opts.ClearDue,
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				input.Title = &opts.Title
			}
			if flags.Changed("body") {
				input.Description = &opts.Description
			}
			if flags.Changed("priority") {
				p := domain.Priority(opts.Priority)
				input.Priority = &p
			}
			if flags.Changed("project") {
				input.ProjectID = &opts.Project
			}
			if flags.Changed("due") {
				due, err := parseDate(opts.Due, c.Clock.Now())
				if err != nil {
					return err
				}
				input.DueDate = &due
			}

			out, err := c.EditTaskUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			if len(out.Changed) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No changes to task %s\n", out.Task.ID)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s: %s\n", out.Task.ID, strings.Join(out.Changed, ", "))
			printWarnings(cmd.ErrOrStderr(), out.Warnings)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "New title")
	cmd.Flags().StringVar(&opts.Description, "body", "", "New description")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "New priority")
	cmd.Flags().StringVar(&opts.Project, "project", "", "New project")
	cmd.Flags().StringVar(&opts.Due, "due", "", "New due date")
	cmd.Flags().BoolVar(&opts.ClearDue, "clear-due", false, "Remove the due date")
	cmd.Flags().StringArrayVar(&opts.AddChecklist, "check", nil, "Append a checklist item")
	cmd.Flags().IntSliceVar(&opts.ToggleChecklist, "toggle", nil, "Toggle checklist item by number")
	cmd.Flags().IntSliceVar(&opts.RemoveChecklist, "uncheck-remove", nil, "Remove checklist item by number")
	cmd.Flags().StringArrayVar(&opts.AddWatchers, "add-watcher", nil, "Add a watcher")
	cmd.Flags().StringArrayVar(&opts.RemoveWatchers, "remove-watcher", nil, "Remove a watcher")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")

	return cmd
}

// zeroBased converts 1-based item numbers to indexes.
func zeroBased(nums []int) []int {
	if len(nums) == 0 {
		return nil
	}
	out := make([]int, len(nums))
	for i, n := range nums {
		out[i] = n - 1
	}
	return out
}

// newCommentCommand creates the comment command.
func newCommentCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <id> <message>",
		Short: "Add a comment to a task",
		Long: `Add a comment to a task's activity history.

Examples:
  whatstask comment 0195f0c2 "Parts arrive on Monday"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := resolveTaskID(cmd, c, args[0])
			if err != nil {
				return err
			}

			_, err = c.AddCommentUseCase().Execute(cmd.Context(), usecase.AddCommentInput{
				TaskID:  taskID,
				ActorID: actorID(cmd),
				Message: args[1],
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Commented on task %s\n", taskID)
			return nil
		},
	}
}

// newRmCommand creates the rm command for soft-deleting tasks.
func newRmCommand(c *app.Container) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Long: `Soft-delete a task. The task and its history are kept and can be
brought back with 'whatstask restore'. A reason is required.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := resolveTaskID(cmd, c, args[0])
			if err != nil {
				return err
			}

			out, err := c.DeleteTaskUseCase().Execute(cmd.Context(), usecase.DeleteTaskInput{
				TaskID:  taskID,
				ActorID: actorID(cmd),
				Reason:  reason,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Why the task is deleted (required)")

	return cmd
}

// newRestoreCommand creates the restore command.
func newRestoreCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a deleted task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := resolveTaskID(cmd, c, args[0])
			if err != nil {
				return err
			}

			out, err := c.RestoreTaskUseCase().Execute(cmd.Context(), usecase.RestoreTaskInput{
				TaskID:  taskID,
				ActorID: actorID(cmd),
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Restored task %s\n", out.Task.ID)
			return nil
		},
	}
}
