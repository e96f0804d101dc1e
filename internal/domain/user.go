package domain

// Role is a user's permission level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// IsValid returns true if the role is a known value.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleUser
}

// IsPrivileged returns true for roles allowed to act on other people's tasks.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleManager
}

// User is a registered account as seen by the task core (read-only).
// Fields are ordered to minimize memory padding.
type User struct {
	ID          string `json:"id" yaml:"id"`
	FullName    string `json:"fullName" yaml:"full_name"`
	Role        Role   `json:"role" yaml:"role"`
	PhoneNumber string `json:"phoneNumber,omitempty" yaml:"phone_number,omitempty"`
	IsExternal  bool   `json:"isExternal,omitempty" yaml:"is_external,omitempty"`
}

// CanManage reports whether the user may reassign or delete t.
// Privileged users and the task creator may; the current internal assignee
// may reassign as well (handled by the caller).
func (u *User) CanManage(t *Task) bool {
	return u.Role.IsPrivileged() || (t.CreatedBy != "" && t.CreatedBy == u.ID)
}

// Name returns the display name, falling back to the ID.
func (u *User) Name() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.ID
}
