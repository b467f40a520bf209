package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/pharmaflow/pharmaml-gateway/internal/config"
	"github.com/pharmaflow/pharmaml-gateway/internal/handler"
	"github.com/pharmaflow/pharmaml-gateway/internal/infra/postgresql"
	"github.com/pharmaflow/pharmaml-gateway/internal/infra/postgresql/migrations"
	infraredis "github.com/pharmaflow/pharmaml-gateway/internal/infra/redis"
	"github.com/pharmaflow/pharmaml-gateway/internal/observability"
	"github.com/pharmaflow/pharmaml-gateway/internal/repository"
	"github.com/pharmaflow/pharmaml-gateway/internal/service"
	"github.com/pharmaflow/pharmaml-gateway/internal/transmitter"
	"github.com/pharmaflow/pharmaml-gateway/internal/transport"
	"go.uber.org/zap"
)

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

	orderLock, err := infraredis.NewRedisOrderLock(rdb)
	if err != nil {
		logger.Fatal("order lock initialization failed", zap.Error(err))
	}

	configRepo := repository.NewGormSupplierConfigRepo(db)
	transmissionRepo := repository.NewGormTransmissionRepo(db)

	sendTimeout := time.Duration(cfg.SendTimeoutSeconds) * time.Second
	probeTimeout := time.Duration(cfg.ProbeTimeoutSeconds) * time.Second

	wire := transmitter.NewHTTPTransmitter(sendTimeout)
	tester := transmitter.NewTester(probeTimeout)

	configService, err := service.NewConfigService(configRepo, tester, logger)
	if err != nil {
		logger.Fatal("config service initialization failed", zap.Error(err))
	}

	transmissionService, err := service.NewTransmissionService(
		configRepo,
		transmissionRepo,
		wire,
		orderLock,
		sendTimeout,
		cfg.SendConcurrency,
		logger,
	)
	if err != nil {
		logger.Fatal("transmission service initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	transmissionService.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	handler.RegisterCountryRoutes(app)

	if err := handler.RegisterConfigRoutes(app, configService); err != nil {
		logger.Fatal("config routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterTransmissionRoutes(app, transmissionService); err != nil {
		logger.Fatal("transmission routes registration failed", zap.Error(err))
	}

	go func() {
		logger.Info("pharmaml gateway api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			logger.Fatal("api server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
