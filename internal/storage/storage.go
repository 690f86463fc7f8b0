// Package storage keeps admin sessions in memory.
//
// The admin password only hides the editing screens from casual visitors.
// Anyone who can reach the sheet endpoint can write to it directly.
package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const DefaultTTL = 12 * time.Hour

// FlashKind selects how a flash message is styled
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a message shown once on the next admin page render
type Flash struct {
	Kind    FlashKind
	Message string
}

// AdminSession is a logged-in admin browser
type AdminSession struct {
	Token     string
	CreatedAt time.Time

	flashes []Flash
}

type SessionStore struct {
	sessions *cache.Cache
	ttl      time.Duration
	mu       sync.Mutex
}

// New creates a store whose sessions expire after ttl without use
func New(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SessionStore{
		sessions: cache.New(ttl, ttl/4),
		ttl:      ttl,
	}
}

// Create starts a new session
func (s *SessionStore) Create() *AdminSession {
	session := &AdminSession{
		Token:     uuid.NewString(),
		CreatedAt: time.Now(),
	}
	s.sessions.Set(session.Token, session, s.ttl)
	return session
}

// Get returns the session for token and extends its lifetime
func (s *SessionStore) Get(token string) (*AdminSession, bool) {
	if token == "" {
		return nil, false
	}
	v, ok := s.sessions.Get(token)
	if !ok {
		return nil, false
	}
	session := v.(*AdminSession)
	s.sessions.Set(token, session, s.ttl)
	return session, true
}

func (s *SessionStore) Delete(token string) {
	s.sessions.Delete(token)
}

// Count returns the number of live sessions
func (s *SessionStore) Count() int {
	return s.sessions.ItemCount()
}

// AddFlash queues a message for the session. Unknown tokens are ignored.
func (s *SessionStore) AddFlash(token string, kind FlashKind, message string) {
	session, ok := s.Get(token)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session.flashes = append(session.flashes, Flash{Kind: kind, Message: message})
}

// PopFlashes returns and clears the queued messages
func (s *SessionStore) PopFlashes(token string) []Flash {
	session, ok := s.Get(token)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	flashes := session.flashes
	session.flashes = nil
	return flashes
}
