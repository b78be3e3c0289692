package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-retail-auth/authapi"
	"github.com/rs/zerolog/log"
)

// Handler exposes the service over HTTP on the Auth API paths.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+authapi.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		var req authapi.LoginRequest
		if !decode(w, r, &req) {
			return
		}
		resp, err := s.Login(r.Context(), req)
		respond(w, http.StatusOK, resp, err)
	})
	mux.HandleFunc("POST "+authapi.PathRegister, func(w http.ResponseWriter, r *http.Request) {
		var req authapi.RegisterRequest
		if !decode(w, r, &req) {
			return
		}
		resp, err := s.Register(r.Context(), req)
		respond(w, http.StatusCreated, resp, err)
	})
	mux.HandleFunc("POST "+authapi.PathForgotPassword, func(w http.ResponseWriter, r *http.Request) {
		var req authapi.ForgotPasswordRequest
		if !decode(w, r, &req) {
			return
		}
		msg, err := s.ForgotPassword(r.Context(), req.Email)
		respond(w, http.StatusOK, authapi.MessageResponse{Message: msg}, err)
	})
	mux.HandleFunc("GET "+authapi.PathTenant, func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		tenant, err := s.GetTenant(r.Context(), raw)
		respond(w, http.StatusOK, tenant, err)
	})
	return mux
}

// StatusForError maps service errors onto HTTP status codes
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidTwoFactorCode), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserBlocked):
		return http.StatusForbidden
	case errors.Is(err, ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, authapi.ErrorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

func respond(w http.ResponseWriter, status int, body any, err error) {
	if err != nil {
		code := StatusForError(err)
		msg := err.Error()
		if code == http.StatusInternalServerError {
			log.Err(err).Msg("auth api request failed")
			msg = http.StatusText(code)
		}
		writeJSON(w, code, authapi.ErrorResponse{Error: msg})
		return
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}
