package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiredSessionDeleter removes sessions whose expiry is at or before now.
type ExpiredSessionDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionSweeper periodically purges expired sessions.
type SessionSweeper struct {
	sessions ExpiredSessionDeleter
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionSweeper constructs a sweeper.
func NewSessionSweeper(sessions ExpiredSessionDeleter, interval time.Duration, logger *zap.Logger) *SessionSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SessionSweeper{sessions: sessions, interval: interval, logger: logger, now: time.Now}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *SessionSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep deletes expired sessions and returns how many were removed.
func (s *SessionSweeper) Sweep(ctx context.Context) int64 {
	removed, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("session sweep failed", zap.Error(err))
		}
		return 0
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", zap.Int64("count", removed))
	}
	return removed
}
