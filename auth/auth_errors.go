package auth

import apperrors "github.com/jrsteele09/go-retail-auth/internal/errors"

var (
	ErrInvalidCredentials   = apperrors.ErrInvalidCredentials
	ErrUserBlocked          = apperrors.ErrUserBlocked
	ErrEmailTaken           = apperrors.ErrEmailTaken
	ErrInvalidTwoFactorCode = apperrors.ErrInvalidTwoFactorCode
	ErrInvalidToken         = apperrors.ErrInvalidToken
	ErrTenantNotFound       = apperrors.ErrTenantNotFound
	ErrInvalidRequest       = apperrors.ErrInvalidRequest
)
