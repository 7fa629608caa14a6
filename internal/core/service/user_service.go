package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/storerating/rating-platform/internal/core/domain"
	"github.com/storerating/rating-platform/internal/core/ports"
)

// UserService implements administrator user management and self-service
// password changes.
type UserService struct {
	accounts
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{accounts: accounts{repo: repo, hasher: hasher, log: log, now: time.Now}}
}

// CreateUser creates an account with any of the enumerated roles.
func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (string, error) {
	if err := requireFields("role", in.Role); err != nil {
		return "", err
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return "", err
	}

	user, err := s.create(ctx, newAccount{
		Name:     in.Name,
		Email:    in.Email,
		Address:  in.Address,
		Password: in.Password,
		Role:     role,
	})
	if err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user created by admin")
	return user.ID, nil
}

// ListUsers returns every user, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.internal(err, "list users")
	}

	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.PublicUser, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

// UpdateRole replaces the role of user id. There is no guard against demoting
// the last ADMIN; such demotions are only logged.
func (s *UserService) UpdateRole(ctx context.Context, id, rawRole string) error {
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return err
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if current.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		s.log.Warn().Str("user_id", id).Str("new_role", string(role)).Msg("administrator demoted")
	}

	if err := s.repo.UpdateRole(ctx, id, role, s.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return s.internal(err, "update role")
	}

	s.log.Info().Str("user_id", id).Str("role", string(role)).Msg("user role updated")
	return nil
}

// ChangeOwnPassword verifies the old password and stores a hash of the new one.
func (s *UserService) ChangeOwnPassword(ctx context.Context, in ports.ChangePasswordInput) error {
	if in.OldPassword == "" || in.NewPassword == "" {
		return fmt.Errorf("%w: please provide both old and new passwords", domain.ErrValidation)
	}
	if utf8.RuneCountInString(in.NewPassword) < minPasswordLength {
		return fmt.Errorf("%w: new password must be at least %d characters long", domain.ErrValidation, minPasswordLength)
	}

	user, err := s.find(ctx, in.UserID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(in.OldPassword, user.PasswordHash) {
		return domain.ErrIncorrectPassword
	}

	hash, err := s.hashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash, s.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return s.internal(err, "update password")
	}

	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// EnsureAdmin creates an ADMIN account for email unless one with that email
// already exists. It reports whether an account was created. Self-registration
// can only produce USERs, so this is how a fresh deployment gets its first admin.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password, address string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, s.internal(err, "find bootstrap admin")
	}

	user, err := s.create(ctx, newAccount{
		Name:     name,
		Email:    email,
		Address:  address,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("bootstrap administrator created")
	return true, nil
}

func (s *UserService) find(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, s.internal(err, "find user by id")
	}
	return user, nil
}
