package domain

import "fmt"

// AssigneeKind tags the variant held by an Assignee.
type AssigneeKind string

const (
	AssigneeUnassigned AssigneeKind = ""         // Nobody is responsible
	AssigneeInternal   AssigneeKind = "internal" // Registered user
	AssigneeExternal   AssigneeKind = "external" // WhatsApp-only contact
)

// Assignee is the party currently responsible for a task.
// It is a tagged union: Kind decides which fields are meaningful.
// Internal assignees carry the user ID plus a snapshot of the user's
// name and phone taken at assignment time; external assignees carry only
// a name and phone. Use the constructors; the zero value is Unassigned.
type Assignee struct {
	Kind   AssigneeKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	UserID string       `json:"userID,omitempty" yaml:"userID,omitempty"`
	Name   string       `json:"name,omitempty" yaml:"name,omitempty"`
	Phone  string       `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// Unassigned returns the empty assignee.
func Unassigned() Assignee {
	return Assignee{}
}

// InternalAssignee returns an assignee pointing at a registered user.
func InternalAssignee(userID, name, phone string) Assignee {
	return Assignee{Kind: AssigneeInternal, UserID: userID, Name: name, Phone: phone}
}

// ExternalAssignee returns an assignee for a WhatsApp-only contact.
func ExternalAssignee(name, phone string) Assignee {
	return Assignee{Kind: AssigneeExternal, Name: name, Phone: phone}
}

// IsAssigned reports whether anyone holds the task.
func (a Assignee) IsAssigned() bool {
	return a.Kind == AssigneeInternal || a.Kind == AssigneeExternal
}

// IsInternal reports whether the assignee is a registered user.
func (a Assignee) IsInternal() bool {
	return a.Kind == AssigneeInternal
}

// IsExternal reports whether the assignee is an external contact.
func (a Assignee) IsExternal() bool {
	return a.Kind == AssigneeExternal
}

// IsUser reports whether the assignee is the internal user with the given ID.
func (a Assignee) IsUser(userID string) bool {
	return a.Kind == AssigneeInternal && userID != "" && a.UserID == userID
}

// Reachable reports whether a WhatsApp message can be sent to the assignee.
func (a Assignee) Reachable() bool {
	return a.IsAssigned() && a.Phone != ""
}

// DisplayName returns the name shown in lists and activity records.
func (a Assignee) DisplayName() string {
	switch a.Kind {
	case AssigneeInternal, AssigneeExternal:
		if a.Name != "" {
			return a.Name
		}
		return a.UserID
	default:
		return "Unassigned"
	}
}

// Equal reports whether both values denote the same party.
// Internal assignees compare by user ID, external ones by phone.
func (a Assignee) Equal(b Assignee) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case AssigneeInternal:
		return a.UserID == b.UserID
	case AssigneeExternal:
		return NormalizePhone(a.Phone) == NormalizePhone(b.Phone)
	default:
		return true
	}
}

// Validate checks that only the fields of the tagged variant are set.
func (a Assignee) Validate() error {
	switch a.Kind {
	case AssigneeUnassigned:
		if a.UserID != "" || a.Name != "" || a.Phone != "" {
			return fmt.Errorf("unassigned assignee carries data: %w", ErrValidationFailed)
		}
	case AssigneeInternal:
		if a.UserID == "" {
			return fmt.Errorf("internal assignee without user id: %w", ErrValidationFailed)
		}
	case AssigneeExternal:
		if a.UserID != "" {
			return fmt.Errorf("external assignee with user id: %w", ErrValidationFailed)
		}
		if a.Name == "" || a.Phone == "" {
			return fmt.Errorf("external assignee requires name and phone: %w", ErrValidationFailed)
		}
	default:
		return fmt.Errorf("unknown assignee kind %q: %w", a.Kind, ErrValidationFailed)
	}
	return nil
}

// String implements fmt.Stringer.
func (a Assignee) String() string {
	switch a.Kind {
	case AssigneeInternal:
		return fmt.Sprintf("%s (user %s)", a.DisplayName(), a.UserID)
	case AssigneeExternal:
		return fmt.Sprintf("%s (%s, external)", a.DisplayName(), a.Phone)
	default:
		return a.DisplayName()
	}
}
