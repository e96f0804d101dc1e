package domain

import (
	"fmt"
	"slices"
	"time"
)

// Acknowledgment records who accepted or declined an assignment and when.
type Acknowledgment struct {
	At time.Time
	By string
}

// Deletion records a soft-delete.
type Deletion struct {
	At     time.Time
	By     string
	Reason string
}

// TaskPatch is a field-level delta applied atomically by a TaskRepository.
// Nil pointers leave the field untouched.
// Fields are ordered to minimize memory padding.
type TaskPatch struct {
	At                  time.Time // UpdatedAt to stamp
	Title               *string
	Description         *string
	Status              *Status
	Priority            *Priority
	ProjectID           *string
	DueDate             *time.Time
	Assignee            *Assignee
	Accepted            *Acknowledgment
	Declined            *Acknowledgment
	Checklist           *[]ChecklistItem
	Watchers            *[]string
	Delete              *Deletion
	ExpectVersion       int // 0 = no optimistic check
	ClearDueDate        bool
	ResetAcknowledgment bool
	Restore             bool
}

// IsEmpty returns true if the patch changes nothing.
func (p *TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.ProjectID == nil && p.DueDate == nil && !p.ClearDueDate && p.Assignee == nil &&
		p.Accepted == nil && p.Declined == nil && !p.ResetAcknowledgment &&
		p.Checklist == nil && p.Watchers == nil && p.Delete == nil && !p.Restore
}

// Apply merges the patch into t in place. It checks the expected version,
// bumps Version, and refuses results that break the task invariants.
// On error t is left untouched.
func (p *TaskPatch) Apply(t *Task) error {
	if p.ExpectVersion != 0 && p.ExpectVersion != t.Version {
		return fmt.Errorf("task %s at version %d, expected %d: %w", t.ID, t.Version, p.ExpectVersion, ErrConflict)
	}

	next := t.Clone()
	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return ErrInvalidStatus
		}
		next.Status = *p.Status
	}
	if p.Priority != nil {
		if !p.Priority.IsValid() {
			return ErrInvalidPriority
		}
		next.Priority = *p.Priority
	}
	if p.ProjectID != nil {
		next.ProjectID = *p.ProjectID
	}
	if p.ClearDueDate {
		next.DueDate = nil
	} else if p.DueDate != nil {
		next.DueDate = cloneTime(p.DueDate)
	}
	if p.Assignee != nil {
		next.Assignee = *p.Assignee
	}
	if p.ResetAcknowledgment {
		next.AcceptedAt, next.AcceptedBy = nil, ""
		next.DeclinedAt, next.DeclinedBy = nil, ""
	}
	if p.Accepted != nil {
		at := p.Accepted.At
		next.AcceptedAt, next.AcceptedBy = &at, p.Accepted.By
	}
	if p.Declined != nil {
		at := p.Declined.At
		next.DeclinedAt, next.DeclinedBy = &at, p.Declined.By
	}
	if p.Checklist != nil {
		next.Checklist = slices.Clone(*p.Checklist)
	}
	if p.Watchers != nil {
		next.Watchers = slices.Clone(*p.Watchers)
	}
	if p.Delete != nil {
		at := p.Delete.At
		next.DeletedAt, next.DeletedBy, next.DeleteReason = &at, p.Delete.By, p.Delete.Reason
	}
	if p.Restore {
		next.DeletedAt, next.DeletedBy, next.DeleteReason = nil, "", ""
	}

	if err := next.CheckInvariants(); err != nil {
		return err
	}

	if !p.At.IsZero() {
		next.UpdatedAt = p.At
	}
	next.Version++
	*t = *next
	return nil
}
