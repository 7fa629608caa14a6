package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storerating/rating-platform/internal/api/metrics"
	"github.com/storerating/rating-platform/internal/core/domain"
	"github.com/storerating/rating-platform/internal/core/ports"
)

// Keys under which Auth stores the caller on the echo context.
const (
	KeyIdentity = "identity"
	KeyUserID   = "user_id"
	KeyRole     = "role"
)

type identityKey struct{}

// Auth validates the bearer token and attaches the caller's identity to both
// the echo context and the request context. The next handler never runs when
// validation fails.
func Auth(tokens ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return reject(domain.ErrMissingToken)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return reject(fmt.Errorf("%w: expected a bearer token", domain.ErrInvalidToken))
			}

			identity, err := tokens.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				return reject(fmt.Errorf("%w: %w", domain.ErrInvalidToken, err))
			}

			c.Set(KeyIdentity, identity)
			c.Set(KeyUserID, identity.UserID)
			c.Set(KeyRole, identity.Role)
			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), identity)))

			return next(c)
		}
	}
}

func reject(err error) error {
	metrics.TokenRejectionsTotal.WithLabelValues(metrics.TokenRejectionReason(err)).Inc()
	return err
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity attached by Auth, if any.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(domain.Identity)
	return identity, ok
}
