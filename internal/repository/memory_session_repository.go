package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/logistics-console/internal/domain"
)

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewMemorySessionRepository keeps sessions in process memory. Used when no
// Postgres DSN is configured.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]domain.Session)}
}

func (r *memorySessionRepository) Create(_ context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now()
	session.CreatedAt = now
	session.LastSeenAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.KeyHash] = *session
	return nil
}

func (r *memorySessionRepository) GetByKeyHash(_ context.Context, keyHash string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[keyHash]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &session, nil
}

func (r *memorySessionRepository) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, session := range r.sessions {
		if session.ID == id {
			session.LastSeenAt = at
			r.sessions[key] = session
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memorySessionRepository) Delete(_ context.Context, keyHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, keyHash)
	return nil
}

func (r *memorySessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for key, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, key)
			removed++
		}
	}
	return removed, nil
}
