package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/storerating/rating-platform/internal/api/metrics"
	"github.com/storerating/rating-platform/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after Auth; a request
// without an attached role is forbidden.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(KeyRole).(domain.Role)
			if _, ok := allowed[role]; !ok {
				metrics.AccessDeniedTotal.WithLabelValues(c.Path(), string(role)).Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
