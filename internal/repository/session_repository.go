package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/logistics-console/internal/domain"
)

// SessionRepository persists browser sessions. Lookups of unknown keys fail
// with pgx.ErrNoRows.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByKeyHash(ctx context.Context, keyHash string) (*domain.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, keyHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a Postgres-backed implementation.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
        INSERT INTO console_sessions (id, key_hash, user_id, email, role, kind, backend_jwt, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, last_seen_at`

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	return r.pool.QueryRow(ctx, query,
		session.ID,
		session.KeyHash,
		session.UserID,
		session.Email,
		session.Role,
		session.Kind,
		session.BackendJWT,
		session.ExpiresAt,
	).Scan(&session.CreatedAt, &session.LastSeenAt)
}

func (r *sessionRepository) GetByKeyHash(ctx context.Context, keyHash string) (*domain.Session, error) {
	const query = `
        SELECT id, key_hash, user_id, email, role, kind, backend_jwt, expires_at, created_at, last_seen_at
        FROM console_sessions WHERE key_hash=$1`

	var session domain.Session
	if err := r.pool.QueryRow(ctx, query, keyHash).Scan(
		&session.ID,
		&session.KeyHash,
		&session.UserID,
		&session.Email,
		&session.Role,
		&session.Kind,
		&session.BackendJWT,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.LastSeenAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE console_sessions SET last_seen_at=$1 WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, keyHash string) error {
	const query = `DELETE FROM console_sessions WHERE key_hash=$1`

	_, err := r.pool.Exec(ctx, query, keyHash)
	return err
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM console_sessions WHERE expires_at <= $1`

	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
