package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/usecase/shared"
)

// AddUserInput contains the parameters for registering a user.
type AddUserInput struct {
	User    domain.User // User to add or replace
	ActorID string      // Acting user, must be an admin
}

// AddUserOutput contains the registered user.
type AddUserOutput struct {
	User    domain.User
	Replace bool // True if a user with the same ID existed
}

// AddUser registers or updates a user in the directory.
type AddUser struct {
	users  domain.UserDirectory
	writer domain.UserWriter
}

// NewAddUser creates a new AddUser use case.
func NewAddUser(users domain.UserDirectory, writer domain.UserWriter) *AddUser {
	return &AddUser{users: users, writer: writer}
}

// Execute validates and stores the user. Only admins may manage users.
func (uc *AddUser) Execute(ctx context.Context, in AddUserInput) (*AddUserOutput, error) {
	actor, err := shared.GetActor(ctx, uc.users, in.ActorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%s may not manage users: %w", actor.ID, domain.ErrNotAuthorized)
	}

	user := in.User
	if err := validateUser(&user); err != nil {
		return nil, err
	}
	existing, err := uc.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := uc.writer.Put(ctx, user); err != nil {
		return nil, fmt.Errorf("put user: %w", err)
	}
	return &AddUserOutput{User: user, Replace: existing != nil}, nil
}

// validateUser trims and checks a user in place. The phone is stored normalized.
func validateUser(u *domain.User) error {
	u.ID = strings.TrimSpace(u.ID)
	u.FullName = strings.TrimSpace(u.FullName)
	if u.ID == "" {
		return fmt.Errorf("user id is required: %w", domain.ErrValidationFailed)
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if !u.Role.IsValid() {
		return fmt.Errorf("%q: %w", u.Role, domain.ErrInvalidRole)
	}
	if u.PhoneNumber != "" {
		if !domain.ValidPhone(u.PhoneNumber) {
			return fmt.Errorf("phone %q: %w", u.PhoneNumber, domain.ErrValidationFailed)
		}
		u.PhoneNumber = domain.NormalizePhone(u.PhoneNumber)
	}
	return nil
}
