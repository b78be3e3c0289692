package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-retail-auth/guard"
	"github.com/jrsteele09/go-retail-auth/idle"
	apperrors "github.com/jrsteele09/go-retail-auth/internal/errors"
	"github.com/jrsteele09/go-retail-auth/kvstore"
	"github.com/jrsteele09/go-retail-auth/server/loginsession"
	"github.com/jrsteele09/go-retail-auth/sessions"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the *loginsession.Session of the request
const ContextKeySession ContextKey = "login_session"

const idleLogoutTimeout = 10 * time.Second

func sessionFromContext(ctx context.Context) *loginsession.Session {
	session, _ := ctx.Value(ContextKeySession).(*loginsession.Session)
	return session
}

// SessionMiddleware resolves the client session named by the session cookie,
// starting a new one when the cookie is missing or malformed. A cookie the
// process has not seen yet is restored from the durable store.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if parsed, err := uuid.Parse(cookie.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.New().String()
			s.setSessionCookie(w, r, id)
		}

		session, created := s.loginSessions.GetOrCreate(id, func() *loginsession.Session {
			return s.newLoginSession(id)
		})
		if created {
			s.pruneLoginSessions()
			session.Store.Restore(context.WithoutCancel(r.Context()))
		} else {
			s.loginSessions.Touch(id, s.nowTime())
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeySession, session)))
	}
}

// newLoginSession wires a Session Store and an Idle Timer together: becoming
// authenticated arms the timer, logging out disarms it and expiry logs out.
func (s *Server) newLoginSession(id string) *loginsession.Session {
	now := s.nowTime()
	store := sessions.NewStore(s.api, kvstore.WithPrefix(s.kv, id+":"), sessions.WithNowFunc(s.nowTime))

	opts := []idle.Option{
		idle.WithObserver(func(st idle.Status) {
			log.Debug().Str("session", id).Str("phase", st.Phase.String()).Msg("idle phase changed")
		}),
	}
	if s.idleClock != nil {
		opts = append(opts, idle.WithClock(s.idleClock))
	}
	timer, err := idle.New(s.idleConfig, func() {
		ctx, cancel := context.WithTimeout(context.Background(), idleLogoutTimeout)
		defer cancel()
		s.metrics.idleLogouts.Inc()
		if err := store.Logout(ctx); err != nil {
			log.Err(err).Str("session", id).Msg("idle logout failed")
			return
		}
		log.Info().Str("session", id).Msg("session ended after inactivity")
	}, opts...)
	if err != nil {
		// idleConfig is validated in New
		panic(err)
	}

	store.OnAuthenticated(timer.Arm)
	store.OnLogout(timer.Disarm)

	return &loginsession.Session{
		ID:        id,
		Store:     store,
		Timer:     timer,
		CreatedAt: now,
		LastSeen:  now,
	}
}

// pruneLoginSessions drops sessions idle longer than the cookie lifetime.
// Their durable identity is left for the cookie to restore, if it still can.
func (s *Server) pruneLoginSessions() {
	for _, session := range s.loginSessions.Prune(s.nowTime().Add(-s.config.GetMaxSessionAge())) {
		session.Timer.Disarm()
	}
}

// RequirePage runs the route guard for the page and only calls next on Render.
func (s *Server) RequirePage(req guard.Request) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session := sessionFromContext(r.Context())
			decision := s.guard.Decide(session.Store.Identity(), req)
			s.metrics.observeDecision(req.Path, decision)

			switch decision {
			case guard.Loading:
				writeJSON(w, http.StatusAccepted, map[string]string{"status": "loading"})
			case guard.RedirectToLogin:
				redirectSuccess(w, r, RouteLogin)
			case guard.AccessDenied:
				required, _ := s.guard.Required(req)
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error":    "access denied",
					"required": string(required),
				})
			default:
				// a navigation is user activity
				session.Timer.Activity()
				next(w, r)
			}
		}
	}
}

// RequireAuthenticated rejects API calls from sessions without an identity
func (s *Server) RequireAuthenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionFromContext(r.Context()).Store.Identity()
		if id.Loading {
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "loading"})
			return
		}
		if !id.Authenticated() {
			writeError(w, http.StatusUnauthorized, apperrors.ErrNotAuthenticated.Error())
			return
		}
		next(w, r)
	}
}
