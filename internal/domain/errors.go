package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every rejection returned by a use case wraps one of these.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrUnknownUser        = errors.New("unknown user")
	ErrUnknownTask        = errors.New("unknown task")
	ErrNotificationFailed = errors.New("notification failed")
)

// Domain errors.
var (
	ErrEmptyTitle             = fmt.Errorf("title cannot be empty: %w", ErrValidationFailed)
	ErrTitleTooShort          = fmt.Errorf("title must be at least %d characters: %w", MinTitleLength, ErrValidationFailed)
	ErrInvalidExternalContact = fmt.Errorf("invalid external contact: %w", ErrValidationFailed)
	ErrInvalidStatus          = fmt.Errorf("invalid status: %w", ErrValidationFailed)
	ErrInvalidPriority        = fmt.Errorf("invalid priority: %w", ErrValidationFailed)
	ErrEmptyReason            = fmt.Errorf("delete reason cannot be empty: %w", ErrValidationFailed)
	ErrEmptyMessage           = fmt.Errorf("message cannot be empty: %w", ErrValidationFailed)
	ErrNoFieldsToUpdate       = fmt.Errorf("no fields to update: %w", ErrValidationFailed)
	ErrSameAssignee           = fmt.Errorf("task is already assigned to this assignee: %w", ErrValidationFailed)
	ErrChecklistIndex         = fmt.Errorf("checklist item out of range: %w", ErrValidationFailed)
	ErrMissingActor           = fmt.Errorf("acting user is required: %w", ErrValidationFailed)
	ErrAcknowledgmentConflict = fmt.Errorf("accepted and declined cannot both be set: %w", ErrInvalidTransition)
	ErrTaskNotFound           = fmt.Errorf("task not found: %w", ErrUnknownTask)
	ErrUserNotFound           = fmt.Errorf("user not found: %w", ErrUnknownUser)
	ErrProjectNotFound        = fmt.Errorf("project not found: %w", ErrValidationFailed)
	ErrInvalidProjectID       = fmt.Errorf("project id must be a lowercase slug: %w", ErrValidationFailed)
	ErrAmbiguousTaskID        = fmt.Errorf("ambiguous task id prefix: %w", ErrValidationFailed)
	ErrConflict               = errors.New("task was modified concurrently")
	ErrNotInitialized         = errors.New("whatstask not initialized (run 'whatstask init' first)")
	ErrAlreadyInitialized     = errors.New("whatstask already initialized")
	ErrConfigExists           = errors.New("config file already exists")
	ErrMigrationConflict      = errors.New("destination task differs from source")
	ErrConfigNil              = errors.New("config is nil")
	ErrInvalidRole            = fmt.Errorf("invalid role: %w", ErrValidationFailed)
)

// ErrorKind classifies errors for callers that branch on failure type.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindValidationFailed   ErrorKind = "validation_failed"
	KindInvalidTransition  ErrorKind = "invalid_transition"
	KindNotAuthorized      ErrorKind = "not_authorized"
	KindUnknownUser        ErrorKind = "unknown_user"
	KindUnknownTask        ErrorKind = "unknown_task"
	KindNotificationFailed ErrorKind = "notification_failed"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
)

// Classify maps err to its ErrorKind. Unrecognized errors are internal faults.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidationFailed):
		return KindValidationFailed
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrNotAuthorized):
		return KindNotAuthorized
	case errors.Is(err, ErrUnknownUser):
		return KindUnknownUser
	case errors.Is(err, ErrUnknownTask):
		return KindUnknownTask
	case errors.Is(err, ErrNotificationFailed):
		return KindNotificationFailed
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}

// IsRejection reports whether err is a local, non-fatal rejection
// (as opposed to an infrastructure fault).
func IsRejection(err error) bool {
	switch Classify(err) {
	case KindValidationFailed, KindInvalidTransition, KindNotAuthorized, KindUnknownUser, KindUnknownTask, KindConflict:
		return true
	default:
		return false
	}
}
