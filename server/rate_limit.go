package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-retail-auth/internal/errors"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 5 * time.Minute

// loginLimiter is a token bucket per client IP for the credential endpoints.
type loginLimiter struct {
	perSecond rate.Limit
	burst     int
	nowTime   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLoginLimiter(perSecond float64, burst int, now func() time.Time) *loginLimiter {
	if burst < 1 {
		burst = 1
	}
	return &loginLimiter{
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		nowTime:   now,
		buckets:   make(map[string]*bucket),
	}
}

func (l *loginLimiter) allow(ip string) bool {
	now := l.nowTime()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > time.Minute {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > limiterIdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.perSecond, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// RateLimitMiddleware rejects credential attempts over the per-IP budget.
func (s *Server) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.config.GetEnableRateLimiting() {
			next(w, r)
			return
		}
		if !s.limiter.allow(s.clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, apperrors.ErrRateLimited.Error())
			return
		}
		next(w, r)
	}
}

// clientIP is the peer address, or, when the peer is a trusted proxy, the
// nearest X-Forwarded-For hop that is not itself a trusted proxy.
func (s *Server) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !s.trustedProxies.Contains(net.ParseIP(host)) {
		return host
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		ip := net.ParseIP(hop)
		if ip == nil {
			break
		}
		if !s.trustedProxies.Contains(ip) {
			return ip.String()
		}
		host = hop
	}
	return host
}
