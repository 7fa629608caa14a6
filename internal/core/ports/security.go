package ports

import (
	"context"

	"github.com/storerating/rating-platform/internal/core/domain"
)

// PasswordHasher performs one-way salted hashing.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify never fails loudly: a malformed digest simply does not match.
	Verify(plain, digest string) bool
}

// TokenValidator is the read side of TokenIssuer, all the auth middleware needs.
type TokenValidator interface {
	Validate(token string) (domain.Identity, error)
}

// TokenIssuer mints and checks signed, time-bound bearer tokens.
type TokenIssuer interface {
	TokenValidator
	Issue(userID string, role domain.Role) (string, error)
}

// LoginThrottle limits repeated failed logins for the same key (the submitted email).
type LoginThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
