package domain

import "github.com/google/uuid"

// Role is the caller's privilege level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// CanResolveRefunds reports whether the role may list and resolve refund requests.
func (r Role) CanResolveRefunds() bool {
	return r == RoleAdmin || r == RoleOwner
}

// Contact is what the notifier needs to reach a user.
type Contact struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}
