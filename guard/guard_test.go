package guard_test

import (
	"testing"

	"github.com/jrsteele09/go-retail-auth/guard"
	"github.com/jrsteele09/go-retail-auth/permissions"
	"github.com/jrsteele09/go-retail-auth/sessions"
	"github.com/jrsteele09/go-retail-auth/users"
	"github.com/stretchr/testify/require"
)

func staff(perms ...permissions.Key) sessions.Identity {
	keys := make([]string, len(perms))
	for i, p := range perms {
		keys[i] = string(p)
	}
	return sessions.Identity{User: &users.User{ID: "s", Role: users.RoleStaff, Permissions: keys}}
}

func TestDecide(t *testing.T) {
	g := guard.New(nil)
	owner := sessions.Identity{User: &users.User{ID: "o", Role: users.RoleOwner}}

	tests := []struct {
		name string
		id   sessions.Identity
		req  guard.Request
		want guard.Decision
	}{
		{"loading wins over everything", sessions.Identity{Loading: true}, guard.Request{Path: "/dashboard"}, guard.Loading},
		{"loading with stale user", sessions.Identity{Loading: true, User: owner.User}, guard.Request{Path: "/permissions"}, guard.Loading},
		{"unauthenticated dashboard", sessions.Identity{}, guard.Request{Path: "/dashboard"}, guard.RedirectToLogin},
		{"unauthenticated bound page", sessions.Identity{}, guard.Request{Path: "/permissions"}, guard.RedirectToLogin},
		{"staff without manage permissions", staff(permissions.StaffView), guard.Request{Path: "/permissions"}, guard.AccessDenied},
		{"staff with manage permissions", staff(permissions.StaffManagePermissions), guard.Request{Path: "/permissions"}, guard.Render},
		{"unbound page renders for any user", staff(), guard.Request{Path: "/dashboard"}, guard.Render},
		{"owner everywhere", owner, guard.Request{Path: "/settings"}, guard.Render},
		{"owner with override", owner, guard.Request{Path: "/returns/process", Required: permissions.ReturnsProcess}, guard.Render},
		{"override granted", staff(permissions.ReturnsProcess), guard.Request{Path: "/returns/process", Required: permissions.ReturnsProcess}, guard.Render},
		{"override missing but binding granted", staff(permissions.ReturnsView), guard.Request{Path: "/returns/process", Required: permissions.ReturnsProcess}, guard.Render},
		{"override and binding both missing", staff(permissions.POSView), guard.Request{Path: "/returns/process", Required: permissions.ReturnsProcess}, guard.AccessDenied},
		{"override on unbound path never denies", staff(), guard.Request{Path: "/dashboard", Required: permissions.BillingManage}, guard.Render},
		{"path is cleaned", staff(), guard.Request{Path: "/pos/"}, guard.AccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, g.Decide(tt.id, tt.req))
		})
	}
}

func TestRequired(t *testing.T) {
	g := guard.New(permissions.New(permissions.Bindings{"/a": permissions.POSView}))

	key, ok := g.Required(guard.Request{Path: "/a"})
	require.True(t, ok)
	require.Equal(t, permissions.POSView, key)

	key, ok = g.Required(guard.Request{Path: "/a", Required: permissions.POSRefund})
	require.True(t, ok)
	require.Equal(t, permissions.POSRefund, key)

	_, ok = g.Required(guard.Request{Path: "/b"})
	require.False(t, ok)
}

func TestDecisionString(t *testing.T) {
	require.Equal(t, "loading", guard.Loading.String())
	require.Equal(t, "redirect_to_login", guard.RedirectToLogin.String())
	require.Equal(t, "access_denied", guard.AccessDenied.String())
	require.Equal(t, "render", guard.Render.String())
}
