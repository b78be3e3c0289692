package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-retail-auth/authapi"
	"github.com/jrsteele09/go-retail-auth/guard"
	"github.com/jrsteele09/go-retail-auth/idle"
	"github.com/jrsteele09/go-retail-auth/internal/config"
	"github.com/jrsteele09/go-retail-auth/kvstore"
	"github.com/jrsteele09/go-retail-auth/permissions"
	"github.com/jrsteele09/go-retail-auth/server/loginsession"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	api           authapi.API
	kv            kvstore.Store
	eval          *permissions.Evaluator
	guard         *guard.Guard
	idleConfig    idle.Config
	idleClock     idle.Clock
	nowTime       func() time.Time
	loginSessions loginsession.Repo
	metrics       *Metrics
	limiter       *loginLimiter
	// peers allowed to name the client in X-Forwarded-For
	trustedProxies config.TrustedProxies

	loginTmpl *template.Template
	idleTmpl  *template.Template
}

type Option func(*Server)

// WithIdleClock replaces the wall clock used by every idle timer
func WithIdleClock(c idle.Clock) Option {
	return func(s *Server) {
		s.idleClock = c
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(now func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = now
	}
}

func WithEvaluator(e *permissions.Evaluator) Option {
	return func(s *Server) {
		s.eval = e
	}
}

func WithLoginSessionRepo(repo loginsession.Repo) Option {
	return func(s *Server) {
		s.loginSessions = repo
	}
}

// New builds the gateway. api is the Auth service and kv is where every
// client session's identity is persisted.
func New(cfg config.Config, api authapi.API, kv kvstore.Store, opts ...Option) (*Server, error) {
	if api == nil {
		return nil, fmt.Errorf("[Server New] auth api is required")
	}
	if kv == nil {
		return nil, fmt.Errorf("[Server New] session store is required")
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		api:    api,
		kv:     kv,
		eval:   permissions.Default,
		idleConfig: idle.Config{
			WarningAfter: cfg.GetIdleWarningAfter(),
			LogoutAfter:  cfg.GetIdleLogoutAfter(),
			TickInterval: cfg.GetIdleTickInterval(),
		},
		nowTime:       time.Now,
		loginSessions: loginsession.NewInMemoryLoginSessionRepo(),
		metrics:       NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.idleConfig.Validate(); err != nil {
		return nil, fmt.Errorf("[Server New] invalid idle configuration: %w", err)
	}
	s.guard = guard.New(s.eval)
	s.trustedProxies = cfg.GetTrustedProxies()
	s.limiter = newLoginLimiter(cfg.GetLoginRatePerSecond(), cfg.GetLoginRateBurst(), s.nowTime)

	var err error
	if s.loginTmpl, err = ParseTemplate("login.html"); err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse login template: %w", err)
	}
	if s.idleTmpl, err = ParseTemplate("idle_warning.html"); err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse idle template: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Shutdown disarms every idle timer. Persisted identities are kept.
func (s *Server) Shutdown() {
	for _, session := range s.loginSessions.List() {
		session.Timer.Disarm()
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
