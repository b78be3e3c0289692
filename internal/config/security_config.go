package config

import (
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetEnableRateLimiting() bool
	GetLoginRatePerSecond() float64
	GetLoginRateBurst() int
	GetTrustedProxies() TrustedProxies
}

// TrustedProxies are the networks whose X-Forwarded-For header is believed
type TrustedProxies []*net.IPNet

func (t TrustedProxies) Contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range t {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetMaxSessionAge is the lifetime of the client session cookie
func (Security) GetMaxSessionAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 7*24*time.Hour)
}

func (Security) GetEnableRateLimiting() bool {
	return GetEnvBool("RATE_LIMIT_LOGIN", true)
}

func (Security) GetLoginRatePerSecond() float64 {
	return float64(GetEnvInt("LOGIN_RATE_PER_MINUTE", 10)) / 60
}

func (Security) GetLoginRateBurst() int {
	return GetEnvInt("LOGIN_RATE_BURST", 5)
}

// GetTrustedProxies reads a comma separated TRUSTED_PROXIES list of IPs or
// CIDRs. Empty means forwarding headers are ignored.
func (Security) GetTrustedProxies() TrustedProxies {
	var proxies TrustedProxies
	for _, entry := range strings.Split(GetEnv("TRUSTED_PROXIES", ""), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			if ip := net.ParseIP(entry); ip != nil && ip.To4() != nil {
				entry += "/32"
			} else {
				entry += "/128"
			}
		}
		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			log.Warn().Str("entry", entry).Msg("ignoring invalid TRUSTED_PROXIES entry")
			continue
		}
		proxies = append(proxies, network)
	}
	return proxies
}
