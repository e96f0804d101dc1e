package domain

import "time"

// UpdateType tells the recipient why a notification was sent.
type UpdateType string

const (
	UpdateAssigned       UpdateType = "assigned"
	UpdateReassigned     UpdateType = "reassigned"
	UpdateReassignedAway UpdateType = "reassigned_away"
	UpdateModified       UpdateType = "modified"
)

// Notification is the payload handed to a Notifier.
// Fields are ordered to minimize memory padding.
type Notification struct {
	DueDate       *time.Time
	TaskID        string
	TaskTitle     string
	Priority      Priority
	UpdateType    UpdateType
	RecipientName string
	PerformedBy   string // Display name of the acting user
	NewAssignee   string // Set for reassigned_away
	IsExternal    bool
}

// Recipient is a reachable notification target.
type Recipient struct {
	Phone      string
	Name       string
	IsExternal bool
}

// RecipientOf returns the notification target for an assignee, if reachable.
func RecipientOf(a Assignee) (Recipient, bool) {
	if !a.Reachable() {
		return Recipient{}, false
	}
	return Recipient{Phone: a.Phone, Name: a.DisplayName(), IsExternal: a.IsExternal()}, true
}
