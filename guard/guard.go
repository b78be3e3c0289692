// Package guard decides what a navigation to a page should produce.
package guard

import (
	"github.com/jrsteele09/go-retail-auth/permissions"
	"github.com/jrsteele09/go-retail-auth/sessions"
)

type Decision int

const (
	Loading Decision = iota
	RedirectToLogin
	AccessDenied
	Render
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case RedirectToLogin:
		return "redirect_to_login"
	case AccessDenied:
		return "access_denied"
	case Render:
		return "render"
	}
	return "unknown"
}

// Request is one navigation attempt. Required, when set, takes precedence
// over the page binding for Path.
type Request struct {
	Path     string
	Required permissions.Key
}

type Guard struct {
	eval *permissions.Evaluator
}

func New(eval *permissions.Evaluator) *Guard {
	if eval == nil {
		eval = permissions.Default
	}
	return &Guard{eval: eval}
}

// Decide evaluates a navigation against an identity snapshot.
//
// A page is denied only when the user fails both the required permission and
// the page binding for the path, so a route override can grant access the
// binding alone would not.
func (g *Guard) Decide(id sessions.Identity, req Request) Decision {
	if id.Loading {
		return Loading
	}
	if id.User == nil {
		return RedirectToLogin
	}

	required, ok := g.Required(req)
	if ok &&
		!g.eval.HasPermission(id.User, required) &&
		!g.eval.CanAccessPage(id.User, req.Path) {
		return AccessDenied
	}
	return Render
}

// Required returns the permission Decide would check for req
func (g *Guard) Required(req Request) (permissions.Key, bool) {
	if req.Required != "" {
		return req.Required, true
	}
	return g.eval.RequiredFor(req.Path)
}
