package domain

import "errors"

// Client-facing errors. Services wrap them with detail via fmt.Errorf("%w: ...").
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing authorization token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("access forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role specified")
	ErrIncorrectPassword  = errors.New("incorrect old password")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrInternal           = errors.New("internal server error")
)

// Token validation failures. The auth middleware wraps these inside ErrInvalidToken.
var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token is expired")
)
