package server

import (
	"net/http"

	"github.com/jrsteele09/go-retail-auth/permissions"
	"github.com/jrsteele09/go-retail-auth/tenants"
	"github.com/jrsteele09/go-retail-auth/users"
)

// PageResponse is the payload of a rendered console page. The console
// front end draws the page from it.
type PageResponse struct {
	Page        string            `json:"page"`
	Title       string            `json:"title"`
	Required    permissions.Key   `json:"required,omitempty"`
	User        *users.User       `json:"user"`
	Tenant      *tenants.Tenant   `json:"tenant"`
	Permissions []permissions.Key `json:"permissions"`
}

// IndexHandler sends the visitor to the console or the login page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionFromContext(r.Context()).Store.Identity().Authenticated() {
			redirectSuccess(w, r, RouteDashboard)
			return
		}
		redirectSuccess(w, r, RouteLogin)
	}
}

// PageHandler renders a page the route guard has already let through
func (s *Server) PageHandler(page consolePage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionFromContext(r.Context()).Store.Identity()
		required, _ := s.guard.Required(guardRequest(page))
		writeJSON(w, http.StatusOK, PageResponse{
			Page:        page.path,
			Title:       page.title,
			Required:    required,
			User:        id.User,
			Tenant:      id.Tenant,
			Permissions: s.eval.Effective(id.User),
		})
	}
}
