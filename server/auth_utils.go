package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-retail-auth/authapi"
	apperrors "github.com/jrsteele09/go-retail-auth/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	// sessionCookieName names the client session of a browser
	sessionCookieName = "retail_session"

	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html; charset=utf-8"
)

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetMaxSessionAge().Seconds()),
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	fullPath := path + "?error=" + url.QueryEscape(errorMsg)

	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), contentTypeJSON)
}

// decodeBody reads a JSON body, or form values mapped by the json tags the
// handlers care about.
func decodeBody(r *http.Request, v any, formFields map[string]*string) error {
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return apperrors.Wrapf(apperrors.ErrInvalidRequest, "malformed json body: %v", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "malformed form body: %v", err)
	}
	for field, dst := range formFields {
		*dst = r.FormValue(field)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, authapi.ErrorResponse{Error: msg})
}

// statusForError maps session and Auth API failures onto HTTP codes
func statusForError(err error) int {
	var apiErr *authapi.APIError
	switch {
	case errors.Is(err, apperrors.ErrOperationInProgress):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr):
		if apiErr.Status >= 500 {
			return http.StatusBadGateway
		}
		return apiErr.Status
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidTwoFactorCode),
		errors.Is(err, apperrors.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrUserBlocked):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrTenantNotFound):
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// respondError writes err with its mapped status, hiding upstream detail
func respondError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	msg := err.Error()
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) && status < 500 {
		msg = apiErr.Message
	}
	if status >= 500 {
		log.Err(err).Msg("upstream request failed")
		msg = apperrors.ErrUpstreamUnavailable.Error()
	}
	writeError(w, status, msg)
}
