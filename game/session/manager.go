package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nmarchi/slidepuzzle/game/engine"
	"github.com/nmarchi/slidepuzzle/game/service"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// idLength is the number of random bytes in a generated session ID; each
// byte becomes two hex characters.
const idLength = 2

// Manager handles session storage and lifecycle
type Manager struct {
	sessions map[string]*service.Session
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// Create creates a new session with the given preset. An empty id asks the
// manager to generate a short unique one.
func (m *Manager) Create(id string, preset *engine.Preset) (*service.Session, error) {
	eng, err := engine.NewEngine(preset)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id, err = m.generateIDLocked()
		if err != nil {
			return nil, err
		}
	} else {
		id = strings.ToLower(id)
		if _, exists := m.sessions[id]; exists {
			return nil, ErrSessionExists
		}
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		Engine:         eng,
		Preset:         preset,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[id] = sess
	return sess, nil
}

// generateIDLocked produces a short hex ID not already in use. Callers hold m.mu.
func (m *Manager) generateIDLocked() (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		buf := make([]byte, idLength)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate session ID: %w", err)
		}
		id := hex.EncodeToString(buf)
		if _, exists := m.sessions[id]; !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique session ID")
}

// Get retrieves a session by ID. Lookup is case-insensitive so IDs survive
// being read aloud or retyped.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[strings.ToLower(id)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// List returns all sessions sorted by creation time, newest first.
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions
}

// Delete removes a session by ID.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, ok := m.sessions[key]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed marks a session as recently used.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[strings.ToLower(id)]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpired removes sessions idle longer than maxAge and returns the
// IDs it removed, so the caller can cancel any timers they own.
func (m *Manager) CleanupExpired(maxAge time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	var removed []string
	for id, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
