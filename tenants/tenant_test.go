package tenants_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-retail-auth/tenants"
	tenantrepofakes "github.com/jrsteele09/go-retail-auth/tenants/repofakes"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionActive(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	require.True(t, tenants.Subscription{Status: tenants.SubscriptionTrial}.Active(now))
	require.True(t, tenants.Subscription{Status: tenants.SubscriptionActive, RenewsAt: now.Add(time.Hour)}.Active(now))
	require.False(t, tenants.Subscription{Status: tenants.SubscriptionActive, RenewsAt: now.Add(-time.Hour)}.Active(now))
	require.True(t, tenants.Subscription{Status: tenants.SubscriptionPastDue}.Active(now))
	require.False(t, tenants.Subscription{Status: tenants.SubscriptionCancelled}.Active(now))
}

func TestFakeTenantRepo(t *testing.T) {
	repo := tenantrepofakes.NewFakeTenantRepo()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Upsert(&tenants.Tenant{ID: name, Name: name}))
	}

	got, err := repo.Get("b")
	require.NoError(t, err)
	require.Equal(t, "b", got.Name)

	page, err := repo.List(1, 5)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "b", page[0].ID)

	page, err = repo.List(3, 5)
	require.NoError(t, err)
	require.Empty(t, page)

	require.NoError(t, repo.Delete("a"))
	_, err = repo.Get("a")
	require.Error(t, err)
}
