package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-retail-auth/users"
	"github.com/pkg/errors"
)

const defaultIssuer = "retail-auth"

// Claims carried by a session token
type Claims struct {
	TenantID string     `json:"tid"`
	Email    string     `json:"email"`
	Role     users.Role `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	signer  Signer
	issuer  string
	expiry  time.Duration
	nowFunc func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(expiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.expiry = expiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:  signer,
		issuer:  defaultIssuer,
		expiry:  12 * time.Hour,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Issue creates a signed token for the user
func (m *Manager) Issue(user *users.User) (string, error) {
	if user == nil {
		return "", errors.New("[token.Issue] user is required")
	}
	now := m.nowFunc()
	claims := Claims{
		TenantID: user.TenantID,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[token.Issue] sign")
	}
	return signed, nil
}

// Parse verifies the token's signature, issuer and expiry and returns its claims
func (m *Manager) Parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("[token.Parse] token is empty")
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, m.signer.GetVerificationKey,
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[token.Parse] invalid token")
	}
	return claims, nil
}
