// Package domain contains core business entities and interfaces.
package domain

import (
	"slices"
	"strings"
	"time"
)

// MinTitleLength is the minimum trimmed length of a task title.
const MinTitleLength = 3

// Task represents a unit of work tracked by whatstask.
// Fields are ordered to minimize memory padding.
type Task struct {
	CreatedAt    time.Time       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt" yaml:"updatedAt"`
	DueDate      *time.Time      `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	AcceptedAt   *time.Time      `json:"acceptedAt,omitempty" yaml:"acceptedAt,omitempty"`
	DeclinedAt   *time.Time      `json:"declinedAt,omitempty" yaml:"declinedAt,omitempty"`
	DeletedAt    *time.Time      `json:"deletedAt,omitempty" yaml:"deletedAt,omitempty"`
	Assignee     Assignee        `json:"assignee" yaml:"assignee"`
	ID           string          `json:"id" yaml:"id"`
	Title        string          `json:"title" yaml:"title"`
	Description  string          `json:"description,omitempty" yaml:"description,omitempty"`
	Status       Status          `json:"status" yaml:"status"`
	Priority     Priority        `json:"priority" yaml:"priority"`
	ProjectID    string          `json:"projectID,omitempty" yaml:"projectID,omitempty"`
	CreatedBy    string          `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	AcceptedBy   string          `json:"acceptedBy,omitempty" yaml:"acceptedBy,omitempty"`
	DeclinedBy   string          `json:"declinedBy,omitempty" yaml:"declinedBy,omitempty"`
	DeletedBy    string          `json:"deletedBy,omitempty" yaml:"deletedBy,omitempty"`
	DeleteReason string          `json:"deleteReason,omitempty" yaml:"deleteReason,omitempty"`
	Checklist    []ChecklistItem `json:"checklist,omitempty" yaml:"checklist,omitempty"`
	Watchers     []string        `json:"watchers,omitempty" yaml:"watchers,omitempty"`
	Version      int             `json:"version" yaml:"version"`
}

// ChecklistItem is one entry of a task checklist. Order is meaningful.
type ChecklistItem struct {
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// IsDeleted returns true if the task has been soft-deleted.
func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// IsAcknowledged returns true if the current assignee accepted or declined.
func (t *Task) IsAcknowledged() bool {
	return t.AcceptedAt != nil || t.DeclinedAt != nil
}

// IsOverdue reports whether the due date lies on a day before now's day
// and the task is not done. Both days are taken in now's location.
// Overdue is always derived, never stored.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status.IsDone() {
		return false
	}
	return DayOf(t.DueDate.In(now.Location())).Before(DayOf(now))
}

// ChecklistProgress returns the number of completed items and the total.
func (t *Task) ChecklistProgress() (done, total int) {
	for _, item := range t.Checklist {
		if item.Completed {
			done++
		}
	}
	return done, len(t.Checklist)
}

// ChecklistRatio returns the completed fraction of the checklist (0 when empty).
func (t *Task) ChecklistRatio() float64 {
	done, total := t.ChecklistProgress()
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

// HasWatcher reports whether userID watches the task.
func (t *Task) HasWatcher(userID string) bool {
	return slices.Contains(t.Watchers, userID)
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.DueDate = cloneTime(t.DueDate)
	c.AcceptedAt = cloneTime(t.AcceptedAt)
	c.DeclinedAt = cloneTime(t.DeclinedAt)
	c.DeletedAt = cloneTime(t.DeletedAt)
	c.Checklist = slices.Clone(t.Checklist)
	c.Watchers = slices.Clone(t.Watchers)
	return &c
}

// CheckInvariants verifies the acknowledgment invariants:
// accepted and declined are exclusive, and neither is set without an assignee.
func (t *Task) CheckInvariants() error {
	if t.AcceptedAt != nil && t.DeclinedAt != nil {
		return ErrAcknowledgmentConflict
	}
	if !t.Assignee.IsAssigned() && t.IsAcknowledged() {
		return ErrAcknowledgmentConflict
	}
	return t.Assignee.Validate()
}

// ValidateTitle trims a title and checks its minimum length.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrEmptyTitle
	}
	if len([]rune(trimmed)) < MinTitleLength {
		return "", ErrTitleTooShort
	}
	return trimmed, nil
}

// DayOf returns the calendar date of t (in t's own location) as UTC midnight.
// Due dates are calendar dates, so comparisons go through DayOf.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
