package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storerating/rating-platform/internal/core/domain"
	"github.com/storerating/rating-platform/internal/core/ports"
)

// dummyPassword is hashed once at construction; logins for unknown emails are
// verified against it so both failure branches cost one bcrypt comparison.
const dummyPassword = "not-a-real-password"

// AuthService implements registration and login.
type AuthService struct {
	accounts
	tokens    ports.TokenIssuer
	throttle  ports.LoginThrottle
	dummyHash string
}

// NewAuthService wires the auth use cases. throttle may be nil.
func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	s := &AuthService{
		accounts: accounts{repo: repo, hasher: hasher, log: log, now: time.Now},
		tokens:   tokens,
		throttle: throttle,
	}
	if hash, err := hasher.Hash(dummyPassword); err == nil {
		s.dummyHash = hash
	} else {
		log.Warn().Err(err).Msg("could not prepare dummy password hash")
	}
	return s
}

// Register creates a USER account. Any role the caller might want is ignored.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	user, err := s.create(ctx, newAccount{
		Name:     in.Name,
		Email:    in.Email,
		Address:  in.Address,
		Password: in.Password,
		Role:     domain.RoleUser,
	})
	if err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user.ID, nil
}

// Login authenticates by email and password. An unknown email and a wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: please provide email and password", domain.ErrValidation)
	}

	if !s.allowAttempt(ctx, email) {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, s.internal(err, "find user by email")
		}
		s.hasher.Verify(password, s.dummyHash)
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, s.internal(err, "issue token")
	}

	s.resetFailures(ctx, email)
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")

	return &ports.LoginResult{Token: token, User: user.Public()}, nil
}

// The throttle is advisory: when its backend fails the attempt is allowed.

func (s *AuthService) allowAttempt(ctx context.Context, email string) bool {
	if s.throttle == nil {
		return true
	}
	ok, err := s.throttle.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
		return true
	}
	return ok
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Fail(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login throttle record failed")
	}
}

func (s *AuthService) resetFailures(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login throttle reset failed")
	}
}
