package permissions

import (
	"path"
	"strings"

	"github.com/jrsteele09/go-retail-auth/users"
)

// Evaluator answers allow/deny questions for a user against a page table.
// Every method is pure and total: a nil user is denied, never an error.
type Evaluator struct {
	bindings Bindings
}

// Default evaluates against PageBindings.
var Default = New(PageBindings)

func New(bindings Bindings) *Evaluator {
	b := make(Bindings, len(bindings))
	for p, k := range bindings {
		b[cleanPath(p)] = k
	}
	return &Evaluator{bindings: b}
}

// roleOverride is the single owner/admin bypass shared by every query.
func roleOverride(u *users.User) bool {
	return u != nil && u.Role.HasFullAccess()
}

func (e *Evaluator) HasPermission(u *users.User, key Key) bool {
	if u == nil {
		return false
	}
	if roleOverride(u) {
		return true
	}
	return u.Granted(string(key))
}

// HasAnyPermission is false for an empty key list, whatever the role.
func (e *Evaluator) HasAnyPermission(u *users.User, keys []Key) bool {
	if u == nil || len(keys) == 0 {
		return false
	}
	if roleOverride(u) {
		return true
	}
	for _, k := range keys {
		if u.Granted(string(k)) {
			return true
		}
	}
	return false
}

// HasAllPermissions is vacuously true for an empty key list.
func (e *Evaluator) HasAllPermissions(u *users.User, keys []Key) bool {
	if u == nil {
		return false
	}
	if roleOverride(u) || len(keys) == 0 {
		return true
	}
	for _, k := range keys {
		if !u.Granted(string(k)) {
			return false
		}
	}
	return true
}

func (e *Evaluator) CanAccessPage(u *users.User, p string) bool {
	if u == nil {
		return false
	}
	if roleOverride(u) {
		return true
	}
	key, ok := e.RequiredFor(p)
	if !ok {
		return true
	}
	return u.Granted(string(key))
}

// RequiredFor returns the permission bound to a page, if any.
func (e *Evaluator) RequiredFor(p string) (Key, bool) {
	key, ok := e.bindings[cleanPath(p)]
	return key, ok
}

// Bindings returns a copy of the page table
func (e *Evaluator) Bindings() Bindings {
	b := make(Bindings, len(e.bindings))
	for p, k := range e.bindings {
		b[p] = k
	}
	return b
}

// Effective lists the catalog keys the user effectively holds.
func (e *Evaluator) Effective(u *users.User) []Key {
	if u == nil {
		return nil
	}
	if roleOverride(u) {
		return All()
	}
	keys := make([]Key, 0, len(u.Permissions))
	for _, k := range All() {
		if u.Granted(string(k)) {
			keys = append(keys, k)
		}
	}
	return keys
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func HasPermission(u *users.User, key Key) bool { return Default.HasPermission(u, key) }

func HasAnyPermission(u *users.User, keys []Key) bool { return Default.HasAnyPermission(u, keys) }

func HasAllPermissions(u *users.User, keys []Key) bool { return Default.HasAllPermissions(u, keys) }

func CanAccessPage(u *users.User, p string) bool { return Default.CanAccessPage(u, p) }
