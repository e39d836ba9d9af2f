package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/logistics-console/internal/api/http"
	"github.com/spec-kit/logistics-console/internal/api/http/handlers"
	"github.com/spec-kit/logistics-console/internal/auth"
	"github.com/spec-kit/logistics-console/internal/backend"
	"github.com/spec-kit/logistics-console/internal/channel"
	"github.com/spec-kit/logistics-console/internal/config"
	"github.com/spec-kit/logistics-console/internal/events"
	"github.com/spec-kit/logistics-console/internal/history"
	"github.com/spec-kit/logistics-console/internal/observability"
	"github.com/spec-kit/logistics-console/internal/persistence"
	"github.com/spec-kit/logistics-console/internal/repository"
	"github.com/spec-kit/logistics-console/internal/service"
	"github.com/spec-kit/logistics-console/internal/worker"
)

const (
	shutdownTimeout = 10 * time.Second
	connectTimeout  = 10 * time.Second
	sessionCacheTTL = 30 * time.Second
	historyNodeID   = 1
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var sessions repository.SessionRepository = repository.NewMemorySessionRepository()
	if pg.Enabled() {
		sessions = repository.NewCachedSessionRepository(repository.NewSessionRepository(pg.Pool), sessionCacheTTL)
	}

	readiness := map[string]handlers.Pinger{"postgres": pg}

	var redis *persistence.Redis
	if cfg.Channel.Driver == config.ChannelDriverRedis {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		readiness["redis"] = redis
	}

	client := backend.NewClient(cfg.Backend, logger.Named("backend"))
	factory, publisher := newChannelFactory(cfg, redis, logger)

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, publisher, logger.Named("notifications")).RegisterHandlers()

	ids, err := history.NewIDGenerator(historyNodeID)
	if err != nil {
		logger.Fatal("failed to init id generator", zap.Error(err))
	}

	authService := service.NewAuthService(cfg.Session, service.AuthDependencies{
		Backend:  client,
		Sessions: sessions,
		Logger:   logger,
	})
	shipmentService := service.NewShipmentService(service.ShipmentDependencies{
		Backend:    client,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	driverService := service.NewDriverService(client)

	cookies := auth.CookieSettings{Name: cfg.Session.CookieName, Secure: cfg.Session.SecureCookie}
	sessionMiddleware := auth.NewSessionMiddleware(sessions, cookies, logger)

	group, groupCtx := errgroup.WithContext(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:      handlers.NewAuthHandler(authService, cookies),
		Shipments: handlers.NewShipmentsHandler(shipmentService),
		History: handlers.NewHistoryHandler(shipmentService, history.Dependencies{
			Fetcher: client,
			Factory: factory,
			IDs:     ids,
			Logger:  logger.Named("history"),
			Metrics: metrics,
		}, handlers.HistoryStreamConfig{
			Heartbeat: cfg.Stream.Heartbeat(),
			Buffer:    cfg.Stream.UpdateBuffer,
			Done:      groupCtx.Done(),
		}),
		Drivers:           handlers.NewDriversHandler(driverService),
		SessionMiddleware: sessionMiddleware,
		Metrics:           metrics,
	})

	sweeper := worker.NewSessionSweeper(sessions, cfg.Session.SweepInterval(), logger.Named("sweeper"))

	group.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("channel", string(cfg.Channel.Driver)))
		return app.Listen(cfg.App.Addr())
	})
	group.Go(func() error {
		return sweeper.Run(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := group.Wait(); err != nil {
		logger.Error("console stopped", zap.Error(err))
	}
}

// newChannelFactory selects the push transport. The publisher is non-nil when
// the console itself feeds the channel.
func newChannelFactory(cfg *config.Config, redis *persistence.Redis, logger *zap.Logger) (channel.Factory, service.StatusPublisher) {
	check := auth.TokenValidator{}.Check
	buffer := cfg.Channel.EventBuffer

	switch cfg.Channel.Driver {
	case config.ChannelDriverRedis:
		factory := &channel.RedisFactory{
			Client: redis.Client,
			Prefix: cfg.Redis.ChannelPrefix,
			Check:  check,
			Buffer: buffer,
		}
		return factory, factory
	case config.ChannelDriverAMQP:
		return &channel.AMQPFactory{
			URL:         cfg.Channel.AMQPURL,
			Exchange:    cfg.Channel.AMQPExchange,
			DialTimeout: connectTimeout,
			Check:       check,
			Buffer:      buffer,
		}, nil
	case config.ChannelDriverMemory:
		hub := channel.NewMemoryHub(check, buffer)
		return hub, hub
	default:
		return &channel.WebsocketFactory{
			URL:              cfg.Channel.WebsocketURL,
			HandshakeTimeout: connectTimeout,
			Check:            check,
			Buffer:           buffer,
			Logger:           logger.Named("channel"),
		}, nil
	}
}
