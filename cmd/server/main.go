// @title Event Seating API
// @version 1.0
// @description Table allocation for paid event reservations: payment webhooks and the operator dashboard.
// @BasePath /
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventseating/config"
	_ "eventseating/docs"
	"eventseating/internal/adapters/cache"
	"eventseating/internal/adapters/email"
	"eventseating/internal/adapters/paypal"
	"eventseating/internal/adapters/queue"
	delivery "eventseating/internal/delivery/http"
	"eventseating/internal/delivery/http/controllers"
	"eventseating/internal/delivery/http/middleware"
	"eventseating/internal/domain"
	"eventseating/internal/repository/postgres"
	"eventseating/internal/services"
	"eventseating/internal/tracing"

	_ "github.com/lib/pq"
)

const (
	serviceName     = "eventseating"
	dbPingTimeout   = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	logger := slog.New(middleware.NewRequestIDLogHandler(config.NewLogger().Handler()))
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdownTracing, err := tracing.Init(serviceName, cfg.TracingOutput)
		if err != nil {
			return err
		}
		defer func() { _ = shutdownTracing(context.Background()) }()
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return err
	}
	logger.Info("postgres connected")

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("schema migrated")
	}

	policy, err := config.LoadSeatingPolicy(cfg.SeatingPolicyFile, cfg.TableCapacity)
	if err != nil {
		return err
	}

	snapshotCache := newSnapshotCache(ctx, cfg, logger)
	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}

	store := postgres.NewSeatingStore(db)
	allocator := services.NewAllocatorService(store, policy, snapshotCache, publisher, logger, cfg.RequestTimeout)
	dashboard := services.NewDashboardService(store, snapshotCache, logger, cfg.DefaultEventDate, cfg.RequestTimeout)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	payments := services.NewPaymentService(allocator, emailService, logger, cfg.DefaultEventDate)

	router := delivery.NewRouter(
		controllers.NewManagerController(logger, allocator, dashboard),
		controllers.NewWebhookController(logger, paypal.NewVerifier(cfg.PayPalWebhookID, cfg.PayPalWebhookSecret, logger), payments),
		controllers.NewHealthController(logger, db),
	)
	handler := middleware.RequestID(middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, router)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newSnapshotCache connects to Redis when configured. An unreachable Redis disables caching.
func newSnapshotCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) domain.SnapshotCache {
	if cfg.RedisURL == "" {
		return cache.NewNoopSnapshotCache()
	}
	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, snapshot cache disabled", "err", err)
		return cache.NewNoopSnapshotCache()
	}
	return cache.NewRedisSnapshotCache(client, cfg.SnapshotCacheTTL, logger)
}

// newPublisher dials the broker when configured. Without a broker, events are only logged.
func newPublisher(cfg *config.Config, logger *slog.Logger) (domain.SeatingEventPublisher, func()) {
	if cfg.AMQPURL == "" {
		return queue.NewNoopPublisher(logger), func() {}
	}
	p, err := queue.Dial(cfg.AMQPURL, cfg.SeatingEventsQueue)
	if err != nil {
		logger.Warn("amqp unavailable, seating events disabled", "err", err)
		return queue.NewNoopPublisher(logger), func() {}
	}
	return p, p.Close
}
