// Package authapi describes the remote Auth and Tenant services the session
// layer depends on, and provides an HTTP client for them.
package authapi

import (
	"context"

	"github.com/jrsteele09/go-retail-auth/tenants"
	"github.com/jrsteele09/go-retail-auth/users"
)

const (
	PathLogin          = "/auth/login"
	PathRegister       = "/auth/register"
	PathForgotPassword = "/auth/forgot-password"
	PathTenant         = "/tenant"
)

// API is the contract of the external Auth service
type API interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	GetTenant(ctx context.Context, token string) (*tenants.Tenant, error)
}

type LoginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"twoFactorCode,omitempty"`
}

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	TenantName string `json:"tenantName"`
}

// LoginResponse is the wire shape returned by login and register. Either
// RequiresTwoFactor is set together with TempToken, or User, Tenant and
// Token are all present.
type LoginResponse struct {
	User              *users.User     `json:"user,omitempty"`
	Tenant            *tenants.Tenant `json:"tenant,omitempty"`
	Token             string          `json:"token,omitempty"`
	RequiresTwoFactor bool            `json:"requiresTwoFactor,omitempty"`
	TempToken         string          `json:"tempToken,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
