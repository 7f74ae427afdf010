package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager owns independent sessions keyed by random IDs. Each session keeps
// its own history; nothing is shared between them.
type Manager struct {
	newSession func() *Session
	idleTTL    time.Duration
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*managed
}

type managed struct {
	session  *Session
	lastUsed time.Time
}

// NewManager creates a manager. idleTTL <= 0 disables expiry.
func NewManager(newSession func() *Session, idleTTL time.Duration) *Manager {
	return &Manager{
		newSession: newSession,
		idleTTL:    idleTTL,
		now:        time.Now,
		sessions:   make(map[string]*managed),
	}
}

// Create starts a new empty session.
func (m *Manager) Create() (string, *Session) {
	id := uuid.NewString()
	s := m.newSession()

	m.mu.Lock()
	m.sessions[id] = &managed{session: s, lastUsed: m.now()}
	n := len(m.sessions)
	m.mu.Unlock()

	slog.Debug("session created", "id", id, "active", n)
	return id, s
}

// Get returns the session with id and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = m.now()
	return e.session, true
}

// Delete drops a session. It reports whether it existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes sessions idle longer than the TTL and returns how many.
func (m *Manager) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for id, e := range m.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		slog.Info("expired idle sessions", "count", n, "active", len(m.sessions))
	}
	return n
}
