package users_test

import (
	"testing"

	"github.com/jrsteele09/go-retail-auth/users"
	fakeuserrepo "github.com/jrsteele09/go-retail-auth/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestRole(t *testing.T) {
	require.True(t, users.RoleOwner.HasFullAccess())
	require.True(t, users.RoleAdmin.HasFullAccess())
	require.False(t, users.RoleStaff.HasFullAccess())
	require.False(t, users.Role("cashier").Valid())
	require.False(t, users.Role("").HasFullAccess())
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		contains string
	}{
		{"too short", "Ab1", "at least 8"},
		{"no upper", "abcdefg1", "uppercase"},
		{"no lower", "ABCDEFG1", "lowercase"},
		{"no number", "Abcdefgh", "number"},
		{"valid", "Abcdefg1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.contains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("Secret123")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("Secret123", hash))
	require.False(t, users.CheckPasswordHash("secret123", hash))
}

func TestNormalisePermissions(t *testing.T) {
	got := users.NormalisePermissions([]string{"pos:view", " inventory:view", "pos:view", ""})
	require.Equal(t, []string{"inventory:view", "pos:view"}, got)
}

func TestUserCloneAndValidate(t *testing.T) {
	u := &users.User{ID: "u1", Role: users.RoleStaff, Permissions: []string{"pos:view"}}
	require.NoError(t, u.Validate())

	c := u.Clone()
	c.Permissions[0] = "reports:view"
	require.True(t, u.Granted("pos:view"))
	require.False(t, u.Granted("reports:view"))

	require.Error(t, (&users.User{Role: users.RoleStaff}).Validate())
	require.Error(t, (&users.User{ID: "u2", Role: "root"}).Validate())
	require.Nil(t, (*users.User)(nil).Clone())
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	u := &users.User{Email: "Jane@Shop.test", Role: users.RoleStaff, TenantID: "t1"}
	require.NoError(t, repo.Upsert(u))
	require.NotEmpty(t, u.ID)

	got, err := repo.GetByEmail("jane@shop.test")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	list, err := repo.ListByTenant("t1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = repo.ListByTenant("t2")
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, repo.Delete("jane@shop.test"))
	_, err = repo.GetByID(u.ID)
	require.Error(t, err)
}
