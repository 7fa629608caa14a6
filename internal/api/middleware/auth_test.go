package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/storerating/rating-platform/internal/core/domain"
	"github.com/storerating/rating-platform/internal/infrastructure/security"
)

func newIssuer() *security.JWTIssuer {
	return security.NewJWTIssuer("secret", time.Hour)
}

func runAuth(t *testing.T, authHeader string, next echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return rec, Auth(newIssuer())(next)(c)
}

func mustNotRun(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	signed, err := newIssuer().Issue("user-1", domain.RoleStoreOwner)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	called := false
	rec, err := runAuth(t, "Bearer "+signed, func(c echo.Context) error {
		called = true
		if c.Get(KeyUserID) != "user-1" {
			t.Fatalf("user_id not set")
		}
		if c.Get(KeyRole) != domain.RoleStoreOwner {
			t.Fatalf("role not set")
		}
		identity, ok := IdentityFromContext(c.Request().Context())
		if !ok || identity.UserID != "user-1" || identity.Role != domain.RoleStoreOwner {
			t.Fatalf("identity not attached to request context: %+v", identity)
		}
		return c.NoContent(http.StatusOK)
	})

	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	signed, err := newIssuer().Issue("user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := runAuth(t, "bearer "+signed, func(c echo.Context) error { return nil }); err != nil {
		t.Fatalf("expected lowercase scheme to be accepted, got %v", err)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	_, err := runAuth(t, "", mustNotRun(t))

	if !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer   "} {
		_, err := runAuth(t, header, mustNotRun(t))
		if !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%q: expected ErrInvalidToken, got %v", header, err)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	_, err := runAuth(t, "Bearer not-a-token", mustNotRun(t))

	if !errors.Is(err, domain.ErrInvalidToken) || !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrInvalidToken wrapping ErrTokenMalformed, got %v", err)
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	signed, err := security.NewJWTIssuer("other-secret", time.Hour).Issue("user-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	_, err = runAuth(t, "Bearer "+signed, mustNotRun(t))
	if !errors.Is(err, domain.ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, security.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
		Role: domain.RoleAdmin,
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	_, err = runAuth(t, "Bearer "+signed, mustNotRun(t))
	if !errors.Is(err, domain.ErrInvalidToken) || !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}
