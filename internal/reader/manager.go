package reader

import (
	"sync"

	"chapterly/internal/util"
)

// Manager tracks live reader sessions by id. One session exists per
// open reader view; closing the view removes it.
type Manager struct {
	mu       sync.RWMutex
	lib      Library
	sessions map[string]*Session
}

// NewManager builds a session manager over a chapter library.
func NewManager(lib Library) *Manager {
	return &Manager{
		lib:      lib,
		sessions: make(map[string]*Session),
	}
}

// Create registers a fresh empty session and returns its id.
func (m *Manager) Create() (string, *Session) {
	id := util.NewID()
	sess := NewSession(m.lib)
	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()
	return id, sess
}

// Get returns the session for an id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Close drops a session. Reports whether it existed.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
