// Package metrics defines the custom Prometheus metrics for the rating
// platform API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Call MustRegister once per registry at startup, before the HTTP server
// starts. The collectors are package level, so every registry they are added
// to reports the same counts.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/storerating/rating-platform/internal/core/domain"
)

const namespace = "ratings"

// ── Authentication ────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: see Outcome (e.g. "success", "invalid_credentials", "throttled")
var LoginsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts self-registrations.
// Label:
//   - result: see Outcome (e.g. "success", "duplicate_email", "invalid")
var RegistrationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of self-registration attempts, by result.",
	},
	[]string{"result"},
)

// TokenRejectionsTotal counts requests refused by the bearer token guard.
// Label:
//   - reason: "missing", "scheme", "expired", "signature" or "malformed"
var TokenRejectionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of requests rejected for a missing or invalid bearer token.",
	},
	[]string{"reason"},
)

// AccessDeniedTotal counts authenticated requests refused for their role.
// Labels:
//   - route: the matched route path (e.g. "/users/:id/role")
//   - role:  the caller's role
var AccessDeniedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests rejected by role-based access control.",
	},
	[]string{"route", "role"},
)

// ── User management ───────────────────────────────────────────────────────────

// UsersCreatedTotal counts accounts created by administrators.
// Label:
//   - role: the role assigned to the new account
var UsersCreatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created by administrators, by role.",
	},
	[]string{"role"},
)

// RoleUpdatesTotal counts successful role changes.
// Label:
//   - role: the new role
var RoleUpdatesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_updates_total",
		Help:      "Total number of user role updates, by new role.",
	},
	[]string{"role"},
)

// PasswordChangesTotal counts self-service password changes.
// Label:
//   - result: see Outcome
var PasswordChangesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_changes_total",
		Help:      "Total number of password change attempts, by result.",
	},
	[]string{"result"},
)

// Collectors lists every custom metric.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		LoginsTotal,
		RegistrationsTotal,
		TokenRejectionsTotal,
		AccessDeniedTotal,
		UsersCreatedTotal,
		RoleUpdatesTotal,
		PasswordChangesTotal,
	}
}

// MustRegister adds all custom metrics to reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(Collectors()...)
}

// Outcome turns an operation error into a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidRole):
		return "invalid"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrIncorrectPassword):
		return "incorrect_password"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// TokenRejectionReason classifies a token validation failure.
func TokenRejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return "missing"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed"
	default:
		return "scheme"
	}
}
