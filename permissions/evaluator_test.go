package permissions_test

import (
	"testing"

	"github.com/jrsteele09/go-retail-auth/permissions"
	"github.com/jrsteele09/go-retail-auth/users"
	"github.com/stretchr/testify/require"
)

func staff(perms ...string) *users.User {
	return &users.User{ID: "staff-1", Role: users.RoleStaff, Permissions: perms}
}

func TestRoleOverride(t *testing.T) {
	for _, role := range []users.Role{users.RoleOwner, users.RoleAdmin} {
		u := &users.User{ID: "u", Role: role}
		t.Run(string(role), func(t *testing.T) {
			for _, key := range permissions.All() {
				require.True(t, permissions.HasPermission(u, key), key)
			}
			require.True(t, permissions.HasPermission(u, "not:in_catalog"))
			require.True(t, permissions.HasAnyPermission(u, []permissions.Key{permissions.BillingManage}))
			require.True(t, permissions.HasAllPermissions(u, permissions.All()))
			for p := range permissions.PageBindings {
				require.True(t, permissions.CanAccessPage(u, p), p)
			}
			require.True(t, permissions.CanAccessPage(u, "/unbound"))
		})
	}
}

func TestStaffPermissions(t *testing.T) {
	u := staff("pos:view")

	require.True(t, permissions.HasPermission(u, permissions.POSView))
	require.False(t, permissions.HasPermission(u, permissions.InventoryView))
	require.True(t, permissions.HasAnyPermission(u, []permissions.Key{permissions.InventoryView, permissions.POSView}))
	require.False(t, permissions.HasAllPermissions(u, []permissions.Key{permissions.InventoryView, permissions.POSView}))
	require.True(t, permissions.HasAllPermissions(u, []permissions.Key{permissions.POSView}))
	require.False(t, permissions.HasAnyPermission(u, []permissions.Key{permissions.ReportsView}))
}

func TestEmptyKeyBoundary(t *testing.T) {
	for _, role := range []users.Role{users.RoleOwner, users.RoleAdmin, users.RoleStaff} {
		u := &users.User{ID: "u", Role: role, Permissions: []string{"pos:view"}}
		t.Run(string(role), func(t *testing.T) {
			require.False(t, permissions.HasAnyPermission(u, nil))
			require.False(t, permissions.HasAnyPermission(u, []permissions.Key{}))
			require.True(t, permissions.HasAllPermissions(u, nil))
			require.True(t, permissions.HasAllPermissions(u, []permissions.Key{}))
		})
	}
}

func TestNilUserDenied(t *testing.T) {
	require.False(t, permissions.HasPermission(nil, permissions.POSView))
	require.False(t, permissions.HasAnyPermission(nil, []permissions.Key{permissions.POSView}))
	require.False(t, permissions.HasAllPermissions(nil, nil))
	require.False(t, permissions.CanAccessPage(nil, "/dashboard"))
	require.Nil(t, permissions.Default.Effective(nil))
}

func TestCanAccessPage(t *testing.T) {
	u := staff("pos:view")

	tests := []struct {
		path string
		want bool
	}{
		{"/pos", true},
		{"/pos/", true},
		{"pos", true},
		{"/inventory", false},
		{"/permissions", false},
		{"/dashboard", true},
		{"/unknown/page", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.want, permissions.CanAccessPage(u, tt.path))
		})
	}
}

func TestCustomBindings(t *testing.T) {
	e := permissions.New(permissions.Bindings{"/dashboard/": permissions.DashboardView})
	key, ok := e.RequiredFor("/dashboard")
	require.True(t, ok)
	require.Equal(t, permissions.DashboardView, key)

	require.False(t, e.CanAccessPage(staff(), "/dashboard"))
	require.True(t, e.CanAccessPage(staff("dashboard:view"), "/dashboard"))
	require.True(t, e.CanAccessPage(staff(), "/pos"))
}

func TestEffective(t *testing.T) {
	owner := &users.User{ID: "o", Role: users.RoleOwner}
	require.Equal(t, permissions.All(), permissions.Default.Effective(owner))

	u := staff("reports:view", "pos:view", "made:up")
	require.Equal(t, []permissions.Key{permissions.POSView, permissions.ReportsView}, permissions.Default.Effective(u))
}

func TestCatalog(t *testing.T) {
	d, ok := permissions.Lookup(permissions.StaffManagePermissions)
	require.True(t, ok)
	require.NotEmpty(t, d.Description)

	_, ok = permissions.Lookup("nope:nope")
	require.False(t, ok)

	for p, k := range permissions.PageBindings {
		_, ok := permissions.Lookup(k)
		require.True(t, ok, "binding for %s uses unknown key %s", p, k)
	}
	_, bound := permissions.PageBindings["/dashboard"]
	require.False(t, bound)
}
