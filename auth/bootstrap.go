package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/jrsteele09/go-retail-auth/permissions"
	"github.com/jrsteele09/go-retail-auth/tenants"
	"github.com/jrsteele09/go-retail-auth/users"
	"github.com/rs/zerolog/log"
)

const (
	DemoTenantID     = "demo-store"
	DemoOwnerEmail   = "owner@demo.shop"
	DemoManagerEmail = "manager@demo.shop"
	DemoStaffEmail   = "cashier@demo.shop"
)

// DemoAccount is a seeded login
type DemoAccount struct {
	Email    string
	Password string
	Role     users.Role
}

// Bootstrap seeds a demo tenant with an owner, a two-factor admin and a
// cashier. Accounts that already exist are left alone and not returned.
func Bootstrap(repos Repos, now time.Time) ([]DemoAccount, error) {
	if _, err := repos.Tenants.Get(DemoTenantID); err != nil {
		tenant := &tenants.Tenant{
			ID:       DemoTenantID,
			Name:     "Demo Store",
			Settings: tenants.DefaultSettings(),
			Subscription: tenants.Subscription{
				Plan:   "growth",
				Status: tenants.SubscriptionActive,
			},
		}
		if err := repos.Tenants.Upsert(tenant); err != nil {
			return nil, fmt.Errorf("failed to bootstrap demo tenant: %w", err)
		}
	}

	seeds := []users.User{
		{Email: DemoOwnerEmail, Name: "Olivia Owner", Role: users.RoleOwner, MFType: users.MFNone},
		{Email: DemoManagerEmail, Name: "Mina Manager", Role: users.RoleAdmin, MFType: users.MFEmail},
		{Email: DemoStaffEmail, Name: "Cal Cashier", Role: users.RoleStaff, MFType: users.MFNone, Permissions: []string{
			string(permissions.DashboardView),
			string(permissions.POSView),
			string(permissions.CustomersView),
			string(permissions.ReturnsView),
		}},
	}

	var created []DemoAccount
	for _, seed := range seeds {
		if _, err := repos.Users.GetByEmail(seed.Email); err == nil {
			continue
		}
		password, err := generatePassword()
		if err != nil {
			return nil, err
		}
		hash, err := users.HashPassword(password)
		if err != nil {
			return nil, err
		}
		u := seed
		u.TenantID = DemoTenantID
		u.PasswordHash = hash
		u.DateJoined = now
		u.Permissions = users.NormalisePermissions(u.Permissions)
		if err := repos.Users.Upsert(&u); err != nil {
			return nil, fmt.Errorf("failed to bootstrap %s: %w", u.Email, err)
		}
		created = append(created, DemoAccount{Email: u.Email, Password: password, Role: u.Role})
		log.Info().Str("email", u.Email).Str("role", string(u.Role)).Msg("bootstrap: created demo account")
	}
	return created, nil
}

// generatePassword returns a password that passes ValidatePasswordStrength
func generatePassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return "Rt7" + base64.RawURLEncoding.EncodeToString(b), nil
}
