package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/techsupport-scheduler/internal/api/http"
	"github.com/spec-kit/techsupport-scheduler/internal/api/http/handlers"
	"github.com/spec-kit/techsupport-scheduler/internal/auth"
	"github.com/spec-kit/techsupport-scheduler/internal/clock"
	"github.com/spec-kit/techsupport-scheduler/internal/config"
	"github.com/spec-kit/techsupport-scheduler/internal/events"
	"github.com/spec-kit/techsupport-scheduler/internal/observability"
	"github.com/spec-kit/techsupport-scheduler/internal/persistence"
	"github.com/spec-kit/techsupport-scheduler/internal/repository"
	"github.com/spec-kit/techsupport-scheduler/internal/repository/memory"
	"github.com/spec-kit/techsupport-scheduler/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var store repository.Store = memory.NewStore()
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pg.PoolHandle())
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var dispatcher events.Dispatcher = events.NewInMemoryDispatcher()
	if redis.Enabled() {
		dispatcher = events.NewRedisPublisher(dispatcher, redis.Client, cfg.Redis.EventsChannel)
	}
	service.NewActivityLogger(dispatcher, logger).RegisterHandlers()

	metrics := observability.NewMetrics()
	systemClock := clock.System()

	scheduling := service.NewSchedulingService(service.SchedulingDependencies{
		Store:          store,
		Clock:          systemClock,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Metrics:        metrics,
		DefaultMaxLoad: cfg.Scheduling.DefaultMaxLoad,
	})
	directory := service.NewDirectoryService(service.DirectoryDependencies{
		Store:      store,
		Clock:      systemClock,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Dependency{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Technicians:    handlers.NewTechniciansHandler(directory, scheduling, systemClock),
		Clients:        handlers.NewClientsHandler(directory, scheduling, systemClock),
		Tickets:        handlers.NewTicketsHandler(scheduling, systemClock),
		Appointments:   handlers.NewAppointmentsHandler(scheduling),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
