package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-retail-auth/internal/utils"
	"github.com/jrsteele09/go-retail-auth/permissions"
)

type EvaluateResponse struct {
	Keys          []permissions.Key        `json:"keys"`
	Results       map[permissions.Key]bool `json:"results"`
	HasAny        bool                     `json:"hasAny"`
	HasAll        bool                     `json:"hasAll"`
	Path          string                   `json:"path,omitempty"`
	CanAccessPage *bool                    `json:"canAccessPage,omitempty"`
}

type CatalogResponse struct {
	Groups   []permissions.Group  `json:"groups"`
	Bindings permissions.Bindings `json:"bindings"`
}

// EvaluateHandler answers the evaluator queries for the session's user:
// GET /api/permissions/evaluate?key=pos:view&key=inventory:view&path=/pos
func (s *Server) EvaluateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := sessionFromContext(r.Context()).Store.Identity().User
		q := r.URL.Query()

		keys := make([]permissions.Key, 0)
		for _, raw := range q["key"] {
			for _, k := range strings.Split(raw, ",") {
				if k = strings.TrimSpace(k); k != "" {
					keys = append(keys, permissions.Key(k))
				}
			}
		}

		resp := EvaluateResponse{
			Keys:    keys,
			Results: make(map[permissions.Key]bool, len(keys)),
			HasAny:  s.eval.HasAnyPermission(user, keys),
			HasAll:  s.eval.HasAllPermissions(user, keys),
		}
		for _, k := range keys {
			resp.Results[k] = s.eval.HasPermission(user, k)
		}
		if p := q.Get("path"); p != "" {
			resp.Path = p
			resp.CanAccessPage = utils.Ptr(s.eval.CanAccessPage(user, p))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// CatalogHandler lists every grantable permission and the page table
func (s *Server) CatalogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CatalogResponse{
			Groups:   permissions.Groups,
			Bindings: s.eval.Bindings(),
		})
	}
}
