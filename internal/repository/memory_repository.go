package repository

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"fmt"
	"sync"
	"time"
)

// Sweeper is implemented by repositories whose snapshots do not expire on
// their own.
type Sweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) int
}

type memoryEntry struct {
	state   session.State
	savedAt time.Time
}

// MemorySessionRepository keeps snapshots in process memory.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionRepository creates a SessionRepository for single-instance
// deployments without Redis. Like the Redis repository, each snapshot expires
// ttl after its last save; a zero ttl keeps it until it is deleted. Expired
// snapshots are hidden at once and freed by DeleteExpired.
func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *MemorySessionRepository) expired(e memoryEntry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.savedAt) >= r.ttl
}

// lookup returns the live entry for id. r.mu must be held.
func (r *MemorySessionRepository) lookup(id string, now time.Time) (memoryEntry, bool) {
	e, ok := r.sessions[id]
	if !ok || r.expired(e, now) {
		return memoryEntry{}, false
	}
	return e, true
}

func (r *MemorySessionRepository) Save(_ context.Context, state session.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var stored *session.State
	if e, ok := r.lookup(state.ID, now); ok {
		stored = &e.state
	}
	if err := checkVersion(state, stored); err != nil {
		return err
	}
	r.sessions[state.ID] = memoryEntry{state: state, savedAt: now}
	return nil
}

func (r *MemorySessionRepository) FindByID(_ context.Context, id string) (*session.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.lookup(id, r.now())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	state := e.state
	return &state, nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// DeleteExpired frees every snapshot not saved within the ttl before now and
// returns how many were dropped.
func (r *MemorySessionRepository) DeleteExpired(_ context.Context, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.sessions {
		if r.expired(e, now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
