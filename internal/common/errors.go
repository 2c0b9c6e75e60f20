// Package common defines the error taxonomy and shared constants used across
// the account server. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorValidation   = errors.New("validation error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Token errors. All of them are authentication failures.
	ErrTokenMissing = fmt.Errorf("%w: missing token", ErrorUnauthorized)
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrorUnauthorized)
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrorUnauthorized)

	// ErrInvalidResetToken covers every reason a reset token cannot be redeemed.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// Validationf returns an error matching ErrorValidation with a field-specific message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorValidation, fmt.Sprintf(format, args...))
}
