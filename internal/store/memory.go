// internal/store/memory.go
//
// In-memory implementation of the session Store interface.
// This is a lightweight persistence layer for coaching sessions,
// which live only as long as the server process.
//
// Characteristics:
//   - Stores *game.Session objects keyed by session key in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - ErrNotFound is returned for missing keys on Get().

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/wordle-coach/internal/game"
)

// ErrNotFound is returned by Get when no session exists under the key.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for coaching sessions.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by key.
	// Returns ErrNotFound if the session does not exist.
	Get(ctx context.Context, key string) (*game.Session, error)

	// GetOrCreate retrieves the session under key, creating a fresh one
	// on first use.
	GetOrCreate(ctx context.Context, key string) (*game.Session, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex             // guards sessions map
	sessions map[string]*game.Session // keyed by Session.Key
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Session)}
}

// Save adds or updates the session in the map.
func (m *memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Key] = s
	return nil
}

// Get looks up a session by key.
func (m *memory) Get(ctx context.Context, key string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[key]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// GetOrCreate looks up a session by key, starting one if none exists.
func (m *memory) GetOrCreate(ctx context.Context, key string) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s, nil
	}
	s := game.New(key)
	m.sessions[key] = s
	return s, nil
}
