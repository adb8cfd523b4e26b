// internal/users/service.go
package users

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the users service.
type Service interface {
	RegisterUser(ctx context.Context, email, name, password, campus string, role Role) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, newRole Role) error
}
