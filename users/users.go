package users

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

type MFAuthType string

const (
	MFNone  MFAuthType = "none"
	MFEmail MFAuthType = "email"
	MFTSms  MFAuthType = "sms"
)

// Role is the user's role within their tenant
type Role string

const (
	RoleOwner Role = "owner" // Owns the tenant, full access
	RoleAdmin Role = "admin" // Manages the tenant, full access
	RoleStaff Role = "staff" // Access limited to granted permissions
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// HasFullAccess reports whether the role overrides explicit permission grants.
func (r Role) HasFullAccess() bool {
	return r == RoleOwner || r == RoleAdmin
}

type User struct {
	ID           string    `json:"id"`                    // Unique identifier for the user
	Email        string    `json:"email"`                 // User's email address
	Name         string    `json:"name"`                  // Display name
	Role         Role      `json:"role"`                  // Role within the tenant
	TenantID     string    `json:"tenant_id"`             // Tenant the user belongs to
	Permissions  []string  `json:"permissions,omitempty"` // Granted permission keys (set)
	PasswordHash string    `json:"-"`                     // Hashed version of the user's password - never serialize
	DateJoined   time.Time `json:"date_joined,omitempty"` // Date and time when the user registered
	LastLogin    time.Time `json:"last_login,omitempty"`  // Last time the user logged in

	Blocked bool       `json:"blocked,omitempty"` // Blocked, has the user been blocked from logging in
	MFType  MFAuthType `json:"mfType,omitempty"`  // MFType, Multifactor type
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NormalisePermissions trims, dedupes and sorts permission keys.
func NormalisePermissions(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (u *User) MFAAuth() bool {
	return u.MFType != "" && u.MFType != MFNone
}

// Granted reports whether key was explicitly granted, ignoring the role.
func (u *User) Granted(key string) bool {
	for _, p := range u.Permissions {
		if p == key {
			return true
		}
	}
	return false
}

// Validate checks the fields every stored identity must carry
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("unknown role %q", u.Role)
	}
	return nil
}

// Clone returns a deep copy of the user
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Permissions != nil {
		c.Permissions = append([]string(nil), u.Permissions...)
	}
	return &c
}
