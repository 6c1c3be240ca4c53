// apps/go-server/internal/store/memory.go
//
// In-memory implementation of the session Store.
// Sessions are ephemeral by design: they live for the duration of a trip and
// are lost when the process restarts.
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Update runs the mutation under the write lock, so two requests for the
//     same trip never interleave inside the engine.
//   - Finished sessions older than the retention window are swept by Prune.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/overland/apps/go-server/internal/game"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("store: session not found")

// Store defines the holding interface for live game sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a snapshot of the session by ID.
	Get(ctx context.Context, id string) (game.View, error)

	// Update runs fn on the live session under the store's write lock.
	Update(ctx context.Context, id string, fn func(*game.Session) error) error
}

// Memory is the map-backed Store.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() *Memory {
	return &Memory{sessions: make(map[string]*game.Session)}
}

func (m *Memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (game.View, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s.View(), nil
	}
	return game.View{}, ErrNotFound
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*game.Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	return fn(s)
}

// Len is the number of held sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune drops sessions that finished, or started, before cutoff and returns
// how many were removed. Playing sessions are kept until they go stale too.
func (m *Memory) Prune(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		last := s.FinishedAt
		if last.IsZero() {
			last = s.StartedAt
		}
		if last.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
