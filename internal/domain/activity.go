package domain

import "time"

// Action tags what an activity record describes.
type Action string

const (
	ActionCreated                  Action = "created"
	ActionAssigned                 Action = "assigned"
	ActionReassigned               Action = "reassigned"
	ActionAccepted                 Action = "accepted"
	ActionDeclined                 Action = "declined"
	ActionStatusChanged            Action = "status_changed"
	ActionCompleted                Action = "completed"
	ActionCompletedByAdmin         Action = "completed_by_admin"
	ActionCompletionAttemptBlocked Action = "completion_attempt_by_non_assignee"
	ActionCommented                Action = "commented"
	ActionUpdated                  Action = "updated"
	ActionDeleted                  Action = "deleted"
	ActionRestored                 Action = "restored"
	ActionNotificationSent         Action = "notification_sent"
	ActionNotificationFailed       Action = "notification_failed"
)

// IsNotification reports whether the action records a notification outcome.
func (a Action) IsNotification() bool {
	return a == ActionNotificationSent || a == ActionNotificationFailed
}

// Activity is an immutable record of something that happened to a task.
// Fields are ordered to minimize memory padding.
type Activity struct {
	CreatedAt             time.Time `json:"createdAt" yaml:"createdAt"`
	ID                    string    `json:"id" yaml:"id"`
	TaskID                string    `json:"taskID" yaml:"taskID"`
	Action                Action    `json:"action" yaml:"action"`
	OldValue              string    `json:"oldValue,omitempty" yaml:"oldValue,omitempty"`
	NewValue              string    `json:"newValue,omitempty" yaml:"newValue,omitempty"`
	Notes                 string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	PerformedBy           string    `json:"performedBy,omitempty" yaml:"performedBy,omitempty"`
	NotificationAttempted bool      `json:"notificationAttempted" yaml:"notificationAttempted"`
}
