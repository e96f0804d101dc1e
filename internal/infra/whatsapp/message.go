package whatsapp

import (
	"fmt"
	"strings"

	"github.com/runoshun/whatstask/internal/domain"
)

// dueLayout formats due dates in message bodies.
const dueLayout = "Mon 2 Jan 2006"

// RenderMessage returns the text body sent for n.
func RenderMessage(n domain.Notification) string {
	var b strings.Builder
	greeting := "Hello"
	if n.RecipientName != "" {
		greeting += " " + n.RecipientName
	}
	b.WriteString(greeting + ",\n\n")

	switch n.UpdateType {
	case domain.UpdateAssigned:
		fmt.Fprintf(&b, "You have been assigned a new task: *%s*", n.TaskTitle)
		if n.PerformedBy != "" {
			fmt.Fprintf(&b, " by %s", n.PerformedBy)
		}
		b.WriteString(".")
	case domain.UpdateReassigned:
		fmt.Fprintf(&b, "The task *%s* has been reassigned to you", n.TaskTitle)
		if n.PerformedBy != "" {
			fmt.Fprintf(&b, " by %s", n.PerformedBy)
		}
		b.WriteString(".")
	case domain.UpdateReassignedAway:
		fmt.Fprintf(&b, "The task *%s* has been reassigned", n.TaskTitle)
		if n.NewAssignee != "" {
			fmt.Fprintf(&b, " to %s", n.NewAssignee)
		}
		if n.PerformedBy != "" {
			fmt.Fprintf(&b, " by %s", n.PerformedBy)
		}
		b.WriteString(". No further action is needed from you.")
		return b.String()
	case domain.UpdateModified:
		fmt.Fprintf(&b, "The task *%s* assigned to you has been updated.", n.TaskTitle)
	default:
		fmt.Fprintf(&b, "Update on task *%s*.", n.TaskTitle)
	}

	if n.Priority != "" {
		fmt.Fprintf(&b, "\nPriority: %s", n.Priority)
	}
	if n.DueDate != nil {
		fmt.Fprintf(&b, "\nDue: %s", n.DueDate.Format(dueLayout))
	}
	if n.IsExternal {
		b.WriteString("\n\nReply to this message if you have questions.")
	} else {
		fmt.Fprintf(&b, "\n\nRun `whatstask accept %s` to accept it.", n.TaskID)
	}
	return b.String()
}
