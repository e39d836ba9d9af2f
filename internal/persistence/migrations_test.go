package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/logistics-console/internal/config"
)

func TestMigrationsEmbedded(t *testing.T) {
	names := MigrationNames()
	require.NotEmpty(t, names)
	assert.Equal(t, "migrations/001_console_sessions.sql", names[0])

	content, err := migrationFiles.ReadFile(names[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS console_sessions")
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestPostgresWithoutDSN(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, pg.Enabled())
	assert.NoError(t, pg.Ping(context.Background()))
	pg.Close()
}

func TestNilRedisPing(t *testing.T) {
	var r *Redis
	assert.ErrorIs(t, r.Ping(context.Background()), ErrNotConfigured)
}
