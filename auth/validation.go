package auth

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-retail-auth/authapi"
	"github.com/jrsteele09/go-retail-auth/users"
)

// Validator holds the input rules for the auth endpoints.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateUserCredentials validates login credentials
func (v *Validator) ValidateUserCredentials(email, password string) error {
	if err := v.ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func (v *Validator) ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	// Basic email format validation
	at := strings.Index(email, "@")
	if at < 1 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateUserState validates user account state
func (v *Validator) ValidateUserState(user *users.User) error {
	if user == nil {
		return fmt.Errorf("user not found")
	}
	if user.Blocked {
		return fmt.Errorf("user account is blocked")
	}
	return nil
}

// ValidateRegistration checks a sign-up request before anything is created
func (v *Validator) ValidateRegistration(req authapi.RegisterRequest) error {
	if err := v.ValidateEmail(req.Email); err != nil {
		return err
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(req.TenantName) == "" {
		return fmt.Errorf("business name is required")
	}
	return users.ValidatePasswordStrength(req.Password)
}
