package errors

import (
	"errors"
	"fmt"
)

// Common error types for the retail auth gateway
var (
	// Authentication errors
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserBlocked          = errors.New("user is blocked")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")

	// Tenant errors
	ErrTenantNotFound = errors.New("tenant not found")

	// Session errors
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrOperationInProgress = errors.New("operation already in progress")
	ErrSessionStoreCorrupt = errors.New("stored session is corrupt")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrRateLimited         = errors.New("too many attempts")
	ErrUpstreamUnavailable = errors.New("auth service unavailable")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
