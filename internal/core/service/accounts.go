package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storerating/rating-platform/internal/core/domain"
	"github.com/storerating/rating-platform/internal/core/ports"
)

// minPasswordLength applies to password changes.
const minPasswordLength = 6

// accounts holds what both services need to create and re-hash credentials.
type accounts struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

type newAccount struct {
	Name     string
	Email    string
	Address  string
	Password string
	Role     domain.Role
}

// create validates and persists a new user. Uniqueness of the email is left to
// the repository so that concurrent duplicates cannot both succeed.
func (a *accounts) create(ctx context.Context, in newAccount) (*domain.User, error) {
	if err := requireFields(
		"name", in.Name,
		"email", in.Email,
		"address", in.Address,
		"password", in.Password,
	); err != nil {
		return nil, err
	}

	hash, err := a.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Address:      in.Address,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, a.internal(err, "insert user")
	}
	return user, nil
}

func (a *accounts) hashPassword(plain string) (string, error) {
	hash, err := a.hasher.Hash(plain)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return "", err
		}
		return "", a.internal(err, "hash password")
	}
	return hash, nil
}

// internal logs the storage or infrastructure cause and hides it from callers.
func (a *accounts) internal(err error, op string) error {
	a.log.Error().Err(err).Str("op", op).Msg("user store operation failed")
	return domain.ErrInternal
}

// requireFields takes name/value pairs and rejects blank values.
func requireFields(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
