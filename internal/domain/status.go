package domain

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending       Status = "pending"        // Created or handed back, awaiting acknowledgment
	StatusInProgress    Status = "in_progress"    // Assignee is working on it
	StatusNeedsApproval Status = "needs_approval" // Work done, waiting for sign-off
	StatusCompleted     Status = "completed"      // Done
	StatusClosed        Status = "closed"         // Archived, no further changes

	// StatusOverdue is a synthetic status used only for filtering.
	// It is never stored on a task.
	StatusOverdue Status = "overdue"
)

// AllStatuses returns all valid stored status values in board order.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusInProgress,
		StatusNeedsApproval,
		StatusCompleted,
		StatusClosed,
	}
}

// transitions defines the allowed status transitions.
// Flow: pending → in_progress → needs_approval → completed → closed
//
//	↑            │  ↑              │
//	└────────────┘  └──────────────┘
var transitions = map[Status][]Status{
	StatusPending:       {StatusInProgress},
	StatusInProgress:    {StatusPending, StatusNeedsApproval, StatusCompleted},
	StatusNeedsApproval: {StatusInProgress, StatusCompleted},
	StatusCompleted:     {StatusClosed},
	StatusClosed:        {},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one transition.
func (s Status) NextStatuses() []Status {
	allowed := transitions[s]
	out := make([]Status, len(allowed))
	copy(out, allowed)
	return out
}

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusClosed
}

// IsDone returns true for completed and closed tasks.
// Done tasks are never considered overdue.
func (s Status) IsDone() bool {
	return s == StatusCompleted || s == StatusClosed
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusNeedsApproval:
		return "Needs Approval"
	case StatusCompleted:
		return "Completed"
	case StatusClosed:
		return "Closed"
	case StatusOverdue:
		return "Overdue"
	default:
		return string(s)
	}
}

// IsValid returns true if the status is a known stored value.
// The synthetic overdue status is not valid for storage.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusNeedsApproval, StatusCompleted, StatusClosed:
		return true
	default:
		return false
	}
}

// Priority represents task urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// AllPriorities returns all valid priorities from lowest to highest.
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// IsValid returns true if the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Rank orders priorities for sorting (higher is more urgent).
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	default:
		return -1
	}
}
