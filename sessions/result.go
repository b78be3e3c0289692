package sessions

import (
	"github.com/jrsteele09/go-retail-auth/tenants"
	"github.com/jrsteele09/go-retail-auth/users"
)

// LoginResult is the outcome of Login or Register. It is always one of
// Authenticated, TwoFactorRequired or Failed.
type LoginResult interface {
	loginResult()
}

// Authenticated means the identity is now held by the store.
type Authenticated struct {
	User   *users.User
	Tenant *tenants.Tenant
	Token  string
}

// TwoFactorRequired means the credentials were accepted and a code must be
// supplied on the next login attempt.
type TwoFactorRequired struct {
	TempToken string
}

// Failed carries the reason the attempt was rejected. Store state is untouched.
type Failed struct {
	Err error
}

func (Authenticated) loginResult()     {}
func (TwoFactorRequired) loginResult() {}
func (Failed) loginResult()            {}

func (f Failed) Error() string {
	if f.Err == nil {
		return "login failed"
	}
	return f.Err.Error()
}

func (f Failed) Unwrap() error {
	return f.Err
}
