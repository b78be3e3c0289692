package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-retail-auth/token"
	"github.com/jrsteele09/go-retail-auth/users"
	"github.com/stretchr/testify/require"
)

func testUser() *users.User {
	return &users.User{ID: "user-1", Email: "ann@shop.test", Role: users.RoleStaff, TenantID: "tenant-1"}
}

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := token.New(token.NewHMACSigner("secret"),
		token.WithNowFunc(func() time.Time { return now }),
		token.WithTokenExpiry(time.Hour),
	)

	raw, err := m.Issue(testUser())
	require.NoError(t, err)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "tenant-1", claims.TenantID)
	require.Equal(t, users.RoleStaff, claims.Role)
	require.NotEmpty(t, claims.ID)

	exp, ok := token.ExpiresAt(raw)
	require.True(t, ok)
	require.True(t, exp.Equal(now.Add(time.Hour)))
}

func TestParseRejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := now
	m := token.New(token.NewHMACSigner("secret"),
		token.WithNowFunc(func() time.Time { return clock }),
		token.WithTokenExpiry(time.Minute),
	)
	raw, err := m.Issue(testUser())
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := token.New(token.NewHMACSigner("other"), token.WithNowFunc(func() time.Time { return now }))
		_, err := other.Parse(raw)
		require.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := token.New(token.NewHMACSigner("secret"), token.WithIssuer("someone-else"), token.WithNowFunc(func() time.Time { return now }))
		_, err := other.Parse(raw)
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := m.Parse("  ")
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		clock = now.Add(2 * time.Minute)
		_, err := m.Parse(raw)
		require.Error(t, err)
	})

	_, err = m.Issue(nil)
	require.Error(t, err)
}

func TestExpiresAtOpaqueToken(t *testing.T) {
	_, ok := token.ExpiresAt("opaque-session-token")
	require.False(t, ok)
}
