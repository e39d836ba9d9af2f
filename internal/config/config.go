package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the console.
type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Channel  ChannelConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Session  SessionConfig
	Stream   StreamConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// BackendConfig points at the logistics REST API.
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// ChannelDriver selects the push transport implementation.
type ChannelDriver string

const (
	ChannelDriverWebsocket ChannelDriver = "websocket"
	ChannelDriverRedis     ChannelDriver = "redis"
	ChannelDriverAMQP      ChannelDriver = "amqp"
	ChannelDriverMemory    ChannelDriver = "memory"
)

// ChannelConfig configures the order status push channel.
type ChannelConfig struct {
	Driver       ChannelDriver
	WebsocketURL string
	AMQPURL      string
	AMQPExchange string
	EventBuffer  int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	ChannelPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SessionConfig defines browser session parameters.
type SessionConfig struct {
	CookieName           string
	TTLMinutes           int
	SecureCookie         bool
	SweepIntervalSeconds int
}

// StreamConfig tunes the history SSE stream.
type StreamConfig struct {
	HeartbeatSeconds int
	UpdateBuffer     int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := ChannelDriver(strings.ToLower(getEnv("CHANNEL_DRIVER", string(ChannelDriverWebsocket))))
	switch driver {
	case ChannelDriverWebsocket, ChannelDriverRedis, ChannelDriverAMQP, ChannelDriverMemory:
	default:
		return nil, fmt.Errorf("invalid CHANNEL_DRIVER: %q", driver)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "logistics-console"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getEnv("BACKEND_API_URL", "http://localhost:3000/api"), "/"),
			TimeoutSeconds: getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 15),
		},
		Channel: ChannelConfig{
			Driver:       driver,
			WebsocketURL: getEnv("CHANNEL_WS_URL", "ws://localhost:3000/ws/orders"),
			AMQPURL:      getEnv("CHANNEL_AMQP_URL", "amqp://localhost:5672/"),
			AMQPExchange: getEnv("CHANNEL_AMQP_EXCHANGE", "order_status_topic"),
			EventBuffer:  getEnvAsInt("CHANNEL_EVENT_BUFFER", 64),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:      os.Getenv("REDIS_PASSWORD"),
			DB:            redisDB,
			ChannelPrefix: getEnv("REDIS_CHANNEL_PREFIX", "orders:"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Session: SessionConfig{
			CookieName:           getEnv("SESSION_COOKIE_NAME", "console_session"),
			TTLMinutes:           getEnvAsInt("SESSION_TTL_MINUTES", 480),
			SecureCookie:         getEnvAsBool("SESSION_SECURE_COOKIE", false),
			SweepIntervalSeconds: getEnvAsInt("SESSION_SWEEP_INTERVAL_SECONDS", 300),
		},
		Stream: StreamConfig{
			HeartbeatSeconds: getEnvAsInt("STREAM_HEARTBEAT_SECONDS", 15),
			UpdateBuffer:     getEnvAsInt("STREAM_UPDATE_BUFFER", 32),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call backend timeout.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// SweepInterval returns how often expired sessions are purged.
func (s SessionConfig) SweepInterval() time.Duration {
	if s.SweepIntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.SweepIntervalSeconds) * time.Second
}

// Heartbeat returns the SSE keep-alive period.
func (s StreamConfig) Heartbeat() time.Duration {
	if s.HeartbeatSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.HeartbeatSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
