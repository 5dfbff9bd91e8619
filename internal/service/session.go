package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ByteBlast1/KanFlow/internal/domain"
)

// SessionStore is the in-memory session table. It is created once at
// startup and handed to whoever needs it; there is no package-level state.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	ttl      time.Duration
	now      func() time.Time
}

type SessionOption func(*SessionStore)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

func NewSessionStore(ttl time.Duration, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]domain.Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Create opens a session for userID that expires after the store's TTL.
func (s *SessionStore) Create(userID string) domain.Session {
	sess := domain.Session{
		ID:      uuid.NewString(),
		UserID:  userID,
		Expires: s.now().Add(s.ttl),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns a live session. Expired sessions are removed on access.
func (s *SessionStore) Get(id string) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return domain.Session{}, false
	}
	return sess, true
}

// Delete reports whether a session with that id existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Sweep drops every expired session and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
