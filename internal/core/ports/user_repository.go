package ports

import (
	"context"
	"time"

	"github.com/storerating/rating-platform/internal/core/domain"
)

// UserRepository is the credential store. Implementations must enforce email
// uniqueness themselves and report a collision as domain.ErrDuplicateEmail, so
// that concurrent registrations of the same email yield exactly one success.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns all users ordered by creation time, newest first.
	List(ctx context.Context) ([]*domain.User, error)
	// UpdateRole and UpdatePassword return domain.ErrUserNotFound when no row matches id.
	UpdateRole(ctx context.Context, id string, role domain.Role, updatedAt time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}
