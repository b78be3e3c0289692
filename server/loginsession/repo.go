package loginsession

import (
	"time"

	"github.com/jrsteele09/go-retail-auth/idle"
	"github.com/jrsteele09/go-retail-auth/sessions"
)

// Session is one browser's client session: the identity it holds and the
// idle timer watching it.
type Session struct {
	ID        string
	Store     *sessions.Store
	Timer     *idle.Timer
	CreatedAt time.Time
	LastSeen  time.Time
}

type Repo interface {
	// GetOrCreate returns the session for id, calling create when there is none.
	// created reports whether create was used.
	GetOrCreate(id string, create func() *Session) (session *Session, created bool)
	Get(id string) (*Session, bool)
	Touch(id string, at time.Time)
	Delete(id string) error
	// Prune removes sessions last seen before cutoff and returns them
	Prune(cutoff time.Time) []*Session
	List() []*Session
	Len() int
}
