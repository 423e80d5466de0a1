package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/pazarhub/notify-service/internal/config"
	"github.com/pazarhub/notify-service/internal/handler"
	"github.com/pazarhub/notify-service/internal/infra/postgresql"
	"github.com/pazarhub/notify-service/internal/infra/postgresql/migrations"
	infraredis "github.com/pazarhub/notify-service/internal/infra/redis"
	"github.com/pazarhub/notify-service/internal/observability"
	"github.com/pazarhub/notify-service/internal/push"
	"github.com/pazarhub/notify-service/internal/repository"
	"github.com/pazarhub/notify-service/internal/service"
	"github.com/pazarhub/notify-service/internal/transport"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.PushRateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	classification := push.DefaultClassification().Override(
		config.SplitCodes(cfg.PushPermanentCodes),
		config.SplitCodes(cfg.PushTransientCodes),
	)

	ctx := context.Background()
	gateway, err := newPushGateway(ctx, cfg, classification)
	if err != nil {
		logger.Fatal("push gateway initialization failed", zap.Error(err))
	}

	notificationRepo := repository.NewGormNotificationRepo(db)
	deviceRepo := repository.NewGormDeviceRepo(db)
	attemptRepo := repository.NewGormAttemptRepo(db)
	orderNotificationRepo := repository.NewGormOrderNotificationRepo(db)

	metrics := observability.NewMetrics()

	dispatcher, err := service.NewDispatcher(
		notificationRepo,
		deviceRepo,
		attemptRepo,
		gateway,
		rateLimiter,
		service.DispatcherConfig{
			PushTimeout:          time.Duration(cfg.PushTimeoutMillis) * time.Millisecond,
			MaxPushAttempts:      cfg.PushMaxAttempts,
			BroadcastConcurrency: cfg.BroadcastConcurrency,
		},
		logger,
	)
	if err != nil {
		logger.Fatal("dispatcher initialization failed", zap.Error(err))
	}
	dispatcher.SetMetrics(metrics)

	recorder, err := service.NewOrderRecorder(dispatcher, orderNotificationRepo, logger)
	if err != nil {
		logger.Fatal("order recorder initialization failed", zap.Error(err))
	}

	inbox, err := service.NewInbox(notificationRepo, logger)
	if err != nil {
		logger.Fatal("inbox initialization failed", zap.Error(err))
	}

	devices, err := service.NewDeviceRegistry(deviceRepo, logger)
	if err != nil {
		logger.Fatal("device registry initialization failed", zap.Error(err))
	}

	events, err := service.NewEvents(dispatcher, recorder, logger)
	if err != nil {
		logger.Fatal("event service initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "notify-service",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(transport.CorrelationMiddleware())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if err := handler.RegisterNotificationRoutes(app, inbox, recorder); err != nil {
		logger.Fatal("notification routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterDeviceRoutes(app, devices); err != nil {
		logger.Fatal("device routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterEventRoutes(app, events); err != nil {
		logger.Fatal("event routes registration failed", zap.Error(err))
	}

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			logger.Fatal("api server stopped", zap.Error(err))
		}
	}()

	logger.Info("notify-service api started",
		zap.Int("port", cfg.APIPort),
		zap.String("pushProvider", cfg.PushProvider),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newPushGateway(ctx context.Context, cfg *config.Config, classification push.Classification) (push.Gateway, error) {
	switch cfg.PushProvider {
	case "webhook":
		return push.NewWebhookGateway(cfg.PushWebhookURL, classification)
	default:
		return push.NewFCMGateway(ctx, cfg.FCMCredentialsFile, classification)
	}
}
