package services

import (
	"sync"
	"time"
)

// Session is the identity returned by Login and passed to every call that
// acts on behalf of a user. Several sessions may coexist in one process.
type Session struct {
	mu        sync.RWMutex
	userID    string
	email     string
	startedAt time.Time
	active    bool
}

func newSession(userID, email string) *Session {
	return &Session{userID: userID, email: email, startedAt: time.Now(), active: true}
}

// UserID returns the logged-in user's id, or "" once the session has ended.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return ""
	}
	return s.userID
}

func (s *Session) Email() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// Active reports whether the session can still be used.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *Session) StartedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.startedAt
}

// end deactivates the session and reports whether it was active.
func (s *Session) end() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.active
	s.active = false
	return was
}
