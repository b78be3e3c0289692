package config_test

import (
	"net"
	"testing"
	"time"

	"github.com/jrsteele09/go-retail-auth/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, 13*time.Minute, c.GetIdleWarningAfter())
	require.Equal(t, 15*time.Minute, c.GetIdleLogoutAfter())
	require.Equal(t, config.StoreBackendFile, c.GetStoreBackend())
	require.Empty(t, c.GetAuthAPIURL())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("IDLE_WARNING_AFTER", "2m")
	t.Setenv("IDLE_LOGOUT_AFTER", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("RATE_LIMIT_LOGIN", "false")
	t.Setenv("REDIS_DB", "3")

	c := config.New()
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, 2*time.Minute, c.GetIdleWarningAfter())
	require.Equal(t, 15*time.Minute, c.GetIdleLogoutAfter())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.test"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("https://c.test"))
	require.False(t, c.GetEnableRateLimiting())
	require.Equal(t, 3, c.GetRedisDB())
}

func TestTrustedProxies(t *testing.T) {
	require.Empty(t, config.New().GetTrustedProxies())

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1, ::1, nonsense")
	proxies := config.New().GetTrustedProxies()
	require.Len(t, proxies, 3)
	require.True(t, proxies.Contains(net.ParseIP("10.20.30.40")))
	require.True(t, proxies.Contains(net.ParseIP("127.0.0.1")))
	require.True(t, proxies.Contains(net.ParseIP("::1")))
	require.False(t, proxies.Contains(net.ParseIP("192.168.1.1")))
	require.False(t, proxies.Contains(nil))
}
