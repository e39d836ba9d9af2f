package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/spec-kit/logistics-console/internal/domain"
)

// CachedSessionRepository serves repeated lookups of the same session from
// memory for a short TTL. Writes go to the wrapped repository and evict.
type CachedSessionRepository struct {
	inner SessionRepository
	cache *cache.Cache
}

// NewCachedSessionRepository wraps inner with a lookup cache.
func NewCachedSessionRepository(inner SessionRepository, ttl time.Duration) *CachedSessionRepository {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedSessionRepository{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *CachedSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if err := r.inner.Create(ctx, session); err != nil {
		return err
	}
	r.cache.SetDefault(session.KeyHash, *session)
	return nil
}

func (r *CachedSessionRepository) GetByKeyHash(ctx context.Context, keyHash string) (*domain.Session, error) {
	if cached, ok := r.cache.Get(keyHash); ok {
		if session, ok := cached.(domain.Session); ok {
			return &session, nil
		}
	}
	session, err := r.inner.GetByKeyHash(ctx, keyHash)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(keyHash, *session)
	return session, nil
}

// Touch is not cached; last-seen timestamps are informational.
func (r *CachedSessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	return r.inner.Touch(ctx, id, at)
}

func (r *CachedSessionRepository) Delete(ctx context.Context, keyHash string) error {
	r.cache.Delete(keyHash)
	return r.inner.Delete(ctx, keyHash)
}

func (r *CachedSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	for key, item := range r.cache.Items() {
		if session, ok := item.Object.(domain.Session); ok && session.Expired(now) {
			r.cache.Delete(key)
		}
	}
	return r.inner.DeleteExpired(ctx, now)
}
