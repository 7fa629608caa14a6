package ports

import (
	"context"

	"github.com/storerating/rating-platform/internal/core/domain"
)

// RegisterInput carries a public self-registration. There is deliberately no
// role field: self-registered accounts are always domain.RoleUser.
type RegisterInput struct {
	Name     string
	Email    string
	Address  string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string
	User  domain.PublicUser
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}
