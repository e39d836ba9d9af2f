package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/logistics-console/internal/domain"
)

func newSession(keyHash string, expiresAt time.Time) *domain.Session {
	return &domain.Session{
		KeyHash:    keyHash,
		UserID:     "u-1",
		Email:      "ana@example.com",
		Role:       domain.RoleUser,
		Kind:       domain.SessionKindFull,
		BackendJWT: "jwt",
		ExpiresAt:  expiresAt,
	}
}

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()
	now := time.Now()

	live := newSession("live", now.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, live))
	assert.NotEmpty(t, live.ID)
	require.NoError(t, repo.Create(ctx, newSession("stale", now.Add(-time.Minute))))

	got, err := repo.GetByKeyHash(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)

	require.NoError(t, repo.Touch(ctx, live.ID, now.Add(time.Minute)))
	assert.ErrorIs(t, repo.Touch(ctx, "missing", now), pgx.ErrNoRows)

	removed, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = repo.GetByKeyHash(ctx, "stale")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	require.NoError(t, repo.Delete(ctx, "live"))
	_, err = repo.GetByKeyHash(ctx, "live")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

type countingRepo struct {
	SessionRepository
	gets int
}

func (r *countingRepo) GetByKeyHash(ctx context.Context, keyHash string) (*domain.Session, error) {
	r.gets++
	return r.SessionRepository.GetByKeyHash(ctx, keyHash)
}

func TestCachedSessionRepository(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepo{SessionRepository: NewMemorySessionRepository()}
	require.NoError(t, inner.Create(ctx, newSession("k", time.Now().Add(time.Hour))))

	repo := NewCachedSessionRepository(inner, time.Minute)
	for i := 0; i < 3; i++ {
		_, err := repo.GetByKeyHash(ctx, "k")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, inner.gets)

	require.NoError(t, repo.Delete(ctx, "k"))
	_, err := repo.GetByKeyHash(ctx, "k")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Equal(t, 2, inner.gets)
}

func TestCachedSessionRepositoryEvictsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	inner := &countingRepo{SessionRepository: NewMemorySessionRepository()}
	repo := NewCachedSessionRepository(inner, time.Minute)

	require.NoError(t, repo.Create(ctx, newSession("soon", now.Add(time.Second))))
	removed, err := repo.DeleteExpired(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = repo.GetByKeyHash(ctx, "soon")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
