package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobtrack/internal/types"
)

// ErrSessionNotFound indicates the session was closed or never existed.
type ErrSessionNotFound struct {
	ID uuid.UUID
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// Session is one signed-in browser. It owns the table view state for that
// user; nothing survives a restart.
type Session struct {
	ID        uuid.UUID
	User      types.User
	CreatedAt time.Time

	mu      sync.Mutex
	view    types.ViewParams
	initial types.ViewParams
}

// View returns the session's current table view.
func (s *Session) View() types.ViewParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// UpdateView replaces the view with fn(current) atomically and returns the
// new value. If fn fails the view is left untouched.
func (s *Session) UpdateView(fn func(types.ViewParams) (types.ViewParams, error)) (types.ViewParams, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.view)
	if err != nil {
		return s.view, err
	}
	s.view = next
	return next, nil
}

// ResetView restores the view the session started with.
func (s *Session) ResetView() types.ViewParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.initial
	return s.view
}

// Sessions is the in-memory registry of open sessions.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	pageSize int
}

// NewSessions creates an empty registry. New sessions start with the
// default view using pageSize rows per page.
func NewSessions(pageSize int) *Sessions {
	if pageSize <= 0 {
		pageSize = types.DefaultPageSize
	}
	return &Sessions{
		sessions: make(map[uuid.UUID]*Session),
		pageSize: pageSize,
	}
}

// Open starts a session for user.
func (r *Sessions) Open(user types.User) *Session {
	view := types.DefaultViewParams()
	view.PageSize = r.pageSize

	sess := &Session{
		ID:        uuid.New(),
		User:      user,
		CreatedAt: time.Now(),
		view:      view,
		initial:   view,
	}

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	return sess
}

// Get returns an open session.
func (r *Sessions) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, &ErrSessionNotFound{ID: id}
	}
	return sess, nil
}

// Close ends a session.
func (r *Sessions) Close(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return &ErrSessionNotFound{ID: id}
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of open sessions.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
