package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/registration-service/internal/api/http"
	"github.com/spec-kit/registration-service/internal/api/http/handlers"
	"github.com/spec-kit/registration-service/internal/config"
	"github.com/spec-kit/registration-service/internal/events"
	"github.com/spec-kit/registration-service/internal/observability"
	"github.com/spec-kit/registration-service/internal/persistence"
	"github.com/spec-kit/registration-service/internal/repository"
	"github.com/spec-kit/registration-service/internal/service"
	"github.com/spec-kit/registration-service/internal/telegram"
	"github.com/spec-kit/registration-service/internal/worker"
	"github.com/spec-kit/registration-service/pkg/util"
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

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(util.NewConfigurationError(err)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	bot, err := telegram.NewClient(cfg.Telegram, logger)
	if err != nil {
		logger.Fatal("failed to connect telegram", zap.Error(err))
	}
	if cfg.Telegram.WebhookURL != "" {
		if err := bot.EnsureWebhook(cfg.Telegram.WebhookURL); err != nil {
			logger.Warn("failed to register telegram webhook", zap.Error(err))
		}
	}

	registrationRepo := repository.NewRegistrationRepository(pg.PoolHandle())
	sessionRepo := repository.NewSessionRepository(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()

	registrationService := service.NewRegistrationService(service.RegistrationDependencies{
		Registrations: registrationRepo,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	approvalService := service.NewApprovalService(service.ApprovalDependencies{
		Registrations: registrationRepo,
		Sessions:      sessionRepo,
		Notifier:      bot,
		Dispatcher:    dispatcher,
		Logger:        logger,
		SessionTTL:    cfg.Approval.SessionTTL(),
	})
	notificationService := service.NewNotificationService(dispatcher, bot, registrationRepo, logger)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	registrationsHandler := handlers.NewRegistrationsHandler(registrationService)
	webhookHandler := handlers.NewWebhookHandler(approvalService, bot, logger)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        healthHandler,
		Registrations: registrationsHandler,
		Webhook:       webhookHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
