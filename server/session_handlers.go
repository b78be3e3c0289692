package server

import (
	"net/http"

	"github.com/jrsteele09/go-retail-auth/idle"
	"github.com/jrsteele09/go-retail-auth/internal/utils"
	"github.com/jrsteele09/go-retail-auth/permissions"
	"github.com/jrsteele09/go-retail-auth/tenants"
	"github.com/jrsteele09/go-retail-auth/users"
	"github.com/rs/zerolog/log"
)

type IdleResponse struct {
	Phase                 string `json:"phase"`
	WarningVisible        bool   `json:"warningVisible"`
	MillisecondsRemaining int64  `json:"millisecondsRemaining"`
}

type SessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	Loading       bool              `json:"loading"`
	User          *users.User       `json:"user,omitempty"`
	Tenant        *tenants.Tenant   `json:"tenant,omitempty"`
	TenantName    string            `json:"tenantName,omitempty"`
	Permissions   []permissions.Key `json:"permissions"`
	Idle          IdleResponse      `json:"idle"`
}

func idleResponse(st idle.Status) IdleResponse {
	return IdleResponse{
		Phase:                 st.Phase.String(),
		WarningVisible:        st.WarningVisible,
		MillisecondsRemaining: st.MillisecondsRemaining(),
	}
}

// SessionHandler reports the current identity (GET /api/session)
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		id := session.Store.Identity()

		perms := s.eval.Effective(id.User)
		if perms == nil {
			perms = []permissions.Key{}
		}
		writeJSON(w, http.StatusOK, SessionResponse{
			Authenticated: id.Authenticated(),
			Loading:       id.Loading,
			User:          id.User,
			Tenant:        id.Tenant,
			TenantName:    utils.Value(id.Tenant).Name,
			Permissions:   perms,
			Idle:          idleResponse(session.Timer.Status()),
		})
	}
}

// RefreshTenantHandler re-fetches the tenant (POST /api/session/tenant/refresh)
func (s *Server) RefreshTenantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := sessionFromContext(r.Context()).Store.RefreshTenant(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tenant)
	}
}

// IdleStatusHandler reports the idle countdown without counting as activity.
// HTMX callers get the warning fragment instead of JSON.
func (s *Server) IdleStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondIdle(w, r, sessionFromContext(r.Context()).Timer.Status())
	}
}

func (s *Server) ActivityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondIdle(w, r, sessionFromContext(r.Context()).Timer.Activity())
	}
}

func (s *Server) StayLoggedInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondIdle(w, r, sessionFromContext(r.Context()).Timer.StayLoggedIn())
	}
}

// LogoutNowHandler is the warning's "log out now" action
func (s *Server) LogoutNowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		session.Timer.LogoutNow()
		// the timer was not armed if the identity predates it
		if session.Store.Identity().Authenticated() {
			if err := session.Store.Logout(r.Context()); err != nil {
				respondError(w, err)
				return
			}
		}
		if isHTMXRequest(r) {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
	}
}

func (s *Server) respondIdle(w http.ResponseWriter, r *http.Request, st idle.Status) {
	if isHTMXRequest(r) {
		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.idleTmpl.Execute(w, idleResponse(st)); err != nil {
			log.Err(err).Msg("Failed to render idle template")
		}
		return
	}
	writeJSON(w, http.StatusOK, idleResponse(st))
}
