package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/storerating/rating-platform/internal/api/middleware"
	"github.com/storerating/rating-platform/internal/core/domain"
)

// ctxIdentity returns the caller attached by the Auth middleware. A missing
// identity means the route was registered without Auth.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := c.Get(middleware.KeyIdentity).(domain.Identity)
	if !ok || identity.UserID == "" {
		return domain.Identity{}, domain.ErrMissingToken
	}
	return identity, nil
}
