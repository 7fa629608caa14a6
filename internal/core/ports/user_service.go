package ports

import (
	"context"

	"github.com/storerating/rating-platform/internal/core/domain"
)

// CreateUserInput carries an administrator-initiated account creation.
// Role is raw client input; the service normalizes it.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Role     string
}

// ChangePasswordInput carries a self-service password change.
type ChangePasswordInput struct {
	UserID      string
	OldPassword string
	NewPassword string
}

// UserService defines the user-management use cases. Authorization (who may
// call what) is enforced by the transport layer before these run.
type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (string, error)
	ListUsers(ctx context.Context) ([]domain.PublicUser, error)
	GetUser(ctx context.Context, id string) (*domain.PublicUser, error)
	UpdateRole(ctx context.Context, id, role string) error
	ChangeOwnPassword(ctx context.Context, input ChangePasswordInput) error
}
