// internal/users/domain.go
package users

import (
	"time"

	"github.com/google/uuid"
)

// Role gates what a user may do in the administrative UI.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleReader    Role = "reader"
)

// User represents a library user: staff or borrower.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Campus    string    `json:"campus"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credential holds a user's login secret. Never serialized.
type Credential struct {
	UserID       uuid.UUID `json:"user_id"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
}

// UserRegisteredChange is journaled when a user is created.
type UserRegisteredChange struct {
	ID     uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   Role      `json:"role"`
	Campus string    `json:"campus"`
}

// UserRoleChangedChange is journaled when a user's role is changed.
type UserRoleChangedChange struct {
	ID      uuid.UUID `json:"id"`
	NewRole Role      `json:"new_role"`
}
