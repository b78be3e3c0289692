package server

import (
	"net/http"

	"github.com/jrsteele09/go-retail-auth/authapi"
	"github.com/jrsteele09/go-retail-auth/sessions"
	"github.com/jrsteele09/go-retail-auth/tenants"
	"github.com/jrsteele09/go-retail-auth/users"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName string
	Error   string
	Email   string // Preserve email on error
}

// AuthenticatedResponse is returned once a session holds an identity
type AuthenticatedResponse struct {
	User     *users.User     `json:"user"`
	Tenant   *tenants.Tenant `json:"tenant"`
	Redirect string          `json:"redirect"`
}

type TwoFactorResponse struct {
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
	TempToken         string `json:"tempToken"`
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionFromContext(r.Context()).Store.Identity().Authenticated() {
			redirectSuccess(w, r, RouteDashboard)
			return
		}

		data := LoginPageData{
			AppName: s.config.GetAppName(),
			Error:   r.URL.Query().Get("error"),
			Email:   r.URL.Query().Get("email"),
		}
		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes a JSON or form login (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authapi.LoginRequest
		if err := decodeBody(r, &req, map[string]*string{
			"email":         &req.Email,
			"password":      &req.Password,
			"twoFactorCode": &req.TwoFactorCode,
		}); err != nil {
			respondError(w, err)
			return
		}

		store := sessionFromContext(r.Context()).Store
		result := store.Login(r.Context(), req.Email, req.Password, req.TwoFactorCode)
		s.respondLoginResult(w, r, "login", result, http.StatusOK)
	}
}

// RegisterHandler creates a tenant and signs its owner in (POST /auth/register)
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authapi.RegisterRequest
		if err := decodeBody(r, &req, map[string]*string{
			"email":      &req.Email,
			"password":   &req.Password,
			"name":       &req.Name,
			"tenantName": &req.TenantName,
		}); err != nil {
			respondError(w, err)
			return
		}

		store := sessionFromContext(r.Context()).Store
		result := store.Register(r.Context(), req)
		s.respondLoginResult(w, r, "register", result, http.StatusCreated)
	}
}

// ForgotPasswordHandler asks the Auth service for a reset link
func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authapi.ForgotPasswordRequest
		if err := decodeBody(r, &req, map[string]*string{"email": &req.Email}); err != nil {
			respondError(w, err)
			return
		}

		msg, err := sessionFromContext(r.Context()).Store.ForgotPassword(r.Context(), req.Email)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, authapi.MessageResponse{Message: msg})
	}
}

// LogoutHandler ends the session's identity (POST /auth/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessionFromContext(r.Context()).Store.Logout(r.Context()); err != nil {
			respondError(w, err)
			return
		}
		if isHTMXRequest(r) || !isJSONRequest(r) {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
	}
}

func (s *Server) respondLoginResult(w http.ResponseWriter, r *http.Request, operation string, result sessions.LoginResult, okStatus int) {
	switch res := result.(type) {
	case sessions.Authenticated:
		s.metrics.observeLogin(operation, "authenticated")
		if !isJSONRequest(r) {
			redirectSuccess(w, r, RouteDashboard)
			return
		}
		writeJSON(w, okStatus, AuthenticatedResponse{User: res.User, Tenant: res.Tenant, Redirect: RouteDashboard})
	case sessions.TwoFactorRequired:
		s.metrics.observeLogin(operation, "two_factor_required")
		writeJSON(w, http.StatusAccepted, TwoFactorResponse{RequiresTwoFactor: true, TempToken: res.TempToken})
	case sessions.Failed:
		s.metrics.observeLogin(operation, "failed")
		if !isJSONRequest(r) && statusForError(res) < 500 {
			redirectWithError(w, r, RouteLogin, res.Error())
			return
		}
		respondError(w, res)
	}
}
