package auth

import "labbooking/internal/pkg/apperr"

var (
	ErrInvalidCredentials = apperr.Unauthenticated("Invalid credentials")
	ErrUsernameTaken      = apperr.Conflict("Username already taken")
	ErrInvalidToken       = apperr.Unauthenticated("Could not validate credentials")
	ErrInvalidRole        = apperr.Validation("privilege_level must be one of: user, admin")
)
