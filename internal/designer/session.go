package designer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds per-connection designer state. One session edits one
// form; the document is constructed when the session opens and discarded
// when it closes. All mutations run on the session's single message
// loop, so the document itself needs no locking.
type Session struct {
	ID           string
	FormID       string
	OwnerID      string
	Doc          *Document
	Dragging     bool // set while a gesture is in flight; suppresses other interactions
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// NewSession creates a session editing the given form with the given
// starting document.
func NewSession(formID, ownerID string, doc *Document) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		FormID:       formID,
		OwnerID:      ownerID,
		Doc:          doc,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.LastActiveAt = time.Now()
}

// IsExpired returns true if the session has exceeded the given max age.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	return time.Since(s.CreatedAt) > maxAge
}

// IsIdle returns true if the session has been idle longer than the timeout.
func (s *Session) IsIdle(timeout time.Duration) bool {
	return time.Since(s.LastActiveAt) > timeout
}

// Manager handles session creation and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxAge      time.Duration
	idleTimeout time.Duration
}

// NewManager creates a session manager with the given timeouts.
func NewManager(maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
	}
}

// Create registers a new session for the given form and owner.
func (m *Manager) Create(formID, ownerID string, doc *Document) *Session {
	s := NewSession(formID, ownerID, doc)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Remove deletes a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Cleanup removes all expired and idle sessions. Called periodically.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout) {
			delete(m.sessions, id)
		}
	}
}
