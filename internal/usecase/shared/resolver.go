package shared

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/runoshun/whatstask/internal/domain"
)

// MinContactNameLength is the minimum trimmed length of an external name.
const MinContactNameLength = 2

// Candidate is a requested assignee before resolution.
type Candidate struct {
	Kind   domain.AssigneeKind // AssigneeInternal or AssigneeExternal
	UserID string              // Internal only
	Name   string              // External only
	Phone  string              // External only
}

// InternalCandidate requests assignment to a registered user.
func InternalCandidate(userID string) Candidate {
	return Candidate{Kind: domain.AssigneeInternal, UserID: userID}
}

// ExternalCandidate requests assignment to a WhatsApp-only contact.
func ExternalCandidate(name, phone string) Candidate {
	return Candidate{Kind: domain.AssigneeExternal, Name: name, Phone: phone}
}

// Resolution is a canonical assignee plus the notification plan for it.
type Resolution struct {
	Plan     *domain.Recipient // nil when the assignee has no WhatsApp channel
	Assignee domain.Assignee
}

// Resolver turns candidates into canonical assignees.
type Resolver struct {
	users domain.UserDirectory
}

// NewResolver creates a Resolver backed by the user directory.
func NewResolver(users domain.UserDirectory) *Resolver {
	return &Resolver{users: users}
}

// Resolve validates c and returns its canonical form. It never writes.
func (r *Resolver) Resolve(ctx context.Context, c Candidate) (Resolution, error) {
	var a domain.Assignee
	switch c.Kind {
	case domain.AssigneeInternal:
		if c.UserID == "" {
			return Resolution{}, fmt.Errorf("user id is required: %w", domain.ErrValidationFailed)
		}
		user, err := r.users.GetByID(ctx, c.UserID)
		if err != nil {
			return Resolution{}, fmt.Errorf("get user: %w", err)
		}
		if user == nil {
			return Resolution{}, fmt.Errorf("%s: %w", c.UserID, domain.ErrUserNotFound)
		}
		phone := domain.NormalizePhone(user.PhoneNumber)
		if !domain.ValidPhone(phone) {
			phone = ""
		}
		a = domain.InternalAssignee(user.ID, user.Name(), phone)

	case domain.AssigneeExternal:
		name := norm.NFC.String(strings.TrimSpace(c.Name))
		if utf8.RuneCountInString(name) < MinContactNameLength {
			return Resolution{}, fmt.Errorf("name must be at least %d characters: %w",
				MinContactNameLength, domain.ErrInvalidExternalContact)
		}
		phone := domain.NormalizePhone(c.Phone)
		if !domain.ValidPhone(phone) {
			return Resolution{}, fmt.Errorf("phone %q must have %d-%d digits: %w",
				c.Phone, domain.MinPhoneDigits, domain.MaxPhoneDigits, domain.ErrInvalidExternalContact)
		}
		a = domain.ExternalAssignee(name, phone)

	default:
		return Resolution{}, fmt.Errorf("assignee kind %q: %w", c.Kind, domain.ErrValidationFailed)
	}

	res := Resolution{Assignee: a}
	if rcpt, ok := domain.RecipientOf(a); ok {
		res.Plan = &rcpt
	}
	return res, nil
}
