package service

import (
	"context"
	"sync"
	"time"

	"whosoever-apparel/logger"
	"whosoever-apparel/registry"
)

// DefaultSessionTTL is how long a session may sit untouched before it is torn down
const DefaultSessionTTL = 30 * time.Minute

type managedSession struct {
	session  *Session
	lastSeen time.Time
}

// SessionManager holds the live editing sessions by id and expires idle ones
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*managedSession
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// NewSessionManager creates a manager; a ttl <= 0 keeps sessions until removed
func NewSessionManager(ttl time.Duration, log *logger.Logger) *SessionManager {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionManager{
		sessions: make(map[string]*managedSession),
		ttl:      ttl,
		now:      time.Now,
		log:      log.With("component", "SessionManager"),
	}
}

func (m *SessionManager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = &managedSession{session: s, lastSeen: m.now()}
}

// Get returns the session or *registry.NotFoundError, and marks it as used
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		return nil, &registry.NotFoundError{Kind: "session", ID: id}
	}
	entry.lastSeen = m.now()
	return entry.session, nil
}

// Remove tears the session down and forgets it
func (m *SessionManager) Remove(id string) error {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return &registry.NotFoundError{Kind: "session", ID: id}
	}
	entry.session.Teardown()
	return nil
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Start runs the idle reaper until ctx is done. Sweeps happen every ttl/4,
// at most once a minute.
func (m *SessionManager) Start(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}
	interval := m.ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.ReapIdle()
			}
		}
	}()
}

// ReapIdle tears down every session untouched for longer than the ttl and
// returns how many were removed
func (m *SessionManager) ReapIdle() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var idle []*Session
	for id, entry := range m.sessions {
		if entry.lastSeen.Before(cutoff) {
			idle = append(idle, entry.session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Teardown()
	}
	if len(idle) > 0 {
		m.log.Info("🧹 Expired idle sessions", "count", len(idle), "ttl", m.ttl.String())
	}
	return len(idle)
}

// Close tears down every session, used on shutdown
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*managedSession)
	m.mu.Unlock()

	for _, entry := range sessions {
		entry.session.Teardown()
	}
}
