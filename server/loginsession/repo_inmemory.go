package loginsession

import (
	"fmt"
	"sync"
	"time"
)

var _ Repo = (*InMemoryLoginSessionRepo)(nil)

// InMemoryLoginSessionRepo is an in-memory implementation of Repo
type InMemoryLoginSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session // sessionID -> Session
}

// NewInMemoryLoginSessionRepo creates a new in-memory login session repository
func NewInMemoryLoginSessionRepo() *InMemoryLoginSessionRepo {
	return &InMemoryLoginSessionRepo{
		sessions: make(map[string]*Session),
	}
}

func (r *InMemoryLoginSessionRepo) GetOrCreate(id string, create func() *Session) (*Session, bool) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return session, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		return session, false
	}
	session = create()
	r.sessions[id] = session
	return session, true
}

// Get retrieves a login session by ID
func (r *InMemoryLoginSessionRepo) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

func (r *InMemoryLoginSessionRepo) Touch(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		session.LastSeen = at
	}
}

// Delete removes a login session
func (r *InMemoryLoginSessionRepo) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *InMemoryLoginSessionRepo) Prune(cutoff time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pruned []*Session
	for id, session := range r.sessions {
		if session.LastSeen.Before(cutoff) {
			pruned = append(pruned, session)
			delete(r.sessions, id)
		}
	}
	return pruned
}

func (r *InMemoryLoginSessionRepo) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		list = append(list, session)
	}
	return list
}

func (r *InMemoryLoginSessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
