package repository

import (
	"context"
	"sync"
	"time"

	"github.com/dskvich/trip-planner/pkg/domain"
)

type sessionEntry struct {
	session    *domain.Session
	lastUpdate time.Time
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewMemorySessionRepository keeps sessions in process memory. Sessions idle
// for longer than ttl are treated as gone; ttl <= 0 keeps them forever.
func NewMemorySessionRepository(ttl time.Duration) *memorySessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *memorySessionRepository) Create(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	s.CreatedAt = now
	s.UpdatedAt = now
	s.Version = 1

	m.sessions[s.ID] = sessionEntry{session: s.Clone(), lastUpdate: now}
	return nil
}

func (m *memorySessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.sessions[id]
	if !ok || m.isExpired(entry) {
		return nil, domain.ErrNotFound
	}

	return entry.session.Clone(), nil
}

func (m *memorySessionRepository) Update(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[s.ID]
	if !ok || m.isExpired(entry) {
		delete(m.sessions, s.ID)
		return domain.ErrNotFound
	}

	if entry.session.Version != s.Version {
		return domain.ErrVersionConflict
	}

	now := m.now()
	s.Version++
	s.UpdatedAt = now

	m.sessions[s.ID] = sessionEntry{session: s.Clone(), lastUpdate: now}
	return nil
}

func (m *memorySessionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *memorySessionRepository) Close() error { return nil }

// sweep drops expired sessions, at most once per ttl. Callers hold the
// write lock.
func (m *memorySessionRepository) sweep(now time.Time) {
	if m.ttl <= 0 || now.Sub(m.lastSweep) < m.ttl {
		return
	}
	m.lastSweep = now

	for id, entry := range m.sessions {
		if m.isExpired(entry) {
			delete(m.sessions, id)
		}
	}
}

func (m *memorySessionRepository) isExpired(entry sessionEntry) bool {
	return m.ttl > 0 && m.now().Sub(entry.lastUpdate) > m.ttl
}
