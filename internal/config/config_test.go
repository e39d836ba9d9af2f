package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHANNEL_DRIVER", "")
	t.Setenv("BACKEND_API_URL", "http://backend.local/api/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "logistics-console", cfg.App.Name)
	assert.Equal(t, "http://backend.local/api", cfg.Backend.BaseURL)
	assert.Equal(t, ChannelDriverWebsocket, cfg.Channel.Driver)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL())
	assert.Equal(t, 15*time.Second, cfg.Stream.Heartbeat())
}

func TestLoadChannelDriver(t *testing.T) {
	t.Setenv("CHANNEL_DRIVER", "Redis")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ChannelDriverRedis, cfg.Channel.Driver)

	t.Setenv("CHANNEL_DRIVER", "carrier-pigeon")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	require.Error(t, err)
}

func TestDurationFallbacks(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
	assert.Equal(t, 15*time.Second, BackendConfig{}.Timeout())
	assert.Equal(t, 5*time.Minute, SessionConfig{}.SweepInterval())
	assert.Equal(t, 90*time.Second, SessionConfig{SweepIntervalSeconds: 90}.SweepInterval())
}
