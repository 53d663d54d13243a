package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesrep_portal/internal/adapters"
	"salesrep_portal/internal/customers"
	"salesrep_portal/internal/documents"
	"salesrep_portal/internal/email"
	"salesrep_portal/internal/events"
	apphttp "salesrep_portal/internal/http"
	"salesrep_portal/internal/http/router"
	"salesrep_portal/internal/leads"
	"salesrep_portal/internal/leads/ports"
	"salesrep_portal/internal/notification"
	"salesrep_portal/internal/organization"
	"salesrep_portal/internal/scheduler"
	"salesrep_portal/internal/settings"
	"salesrep_portal/internal/settings/cache"
	"salesrep_portal/platform/config"
	"salesrep_portal/platform/db"
	"salesrep_portal/platform/logger"
	"salesrep_portal/platform/phone"
	"salesrep_portal/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	auditSink, closeAudit, err := adapters.NewAuditSink(cfg, log)
	if err != nil {
		log.Error("failed to initialize audit sink", "error", err)
		panic("failed to initialize audit sink: " + err.Error())
	}
	defer func() { _ = closeAudit() }()

	settingsCache := initSettingsCache(cfg, log)
	notificationQueue, closeQueue := initNotificationQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	documentCleanup := initDocumentCleanup(ctx, cfg, log)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	organizationModule := organization.NewModule(pool, log)
	settingsModule := settings.NewModule(pool, settingsCache, eventBus, val, log)
	customersModule := customers.NewModule(pool, auditSink, eventBus, val, log)

	// Anti-Corruption Layer: the leads module only sees its own ports
	leadsModule := leads.NewModule(pool, leads.Deps{
		UnitOfWork: adapters.NewLeadUnitOfWork(pool, customersModule.Repository()),
		Users:      organizationModule.UserDirectory(),
		Settings:   adapters.NewSettingsProviderAdapter(settingsModule.Service()),
		Customers:  customersModule.Repository(),
		Documents:  documentCleanup,
		Audit:      auditSink,
		EventBus:   eventBus,
		Validator:  val,
		Phone:      phone.NewNormalizer(cfg.GetPhoneRegion()),
		Logger:     log,

		ExpiringSoonDays: cfg.GetExpiringSoonDays(),
	})

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(initSender(cfg, log), organizationModule.UserDirectory(), cfg, log)
	if notificationQueue != nil {
		notificationModule.SetEnqueuer(notificationQueue)
	}
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		Actors:   organizationModule.Service(),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			organizationModule,
			settingsModule,
			leadsModule,
			customersModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initSettingsCache returns nil when Redis is not configured; settings are
// then read from Postgres on every request.
func initSettingsCache(cfg *config.Config, log *logger.Logger) *cache.Cache {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; system settings cache disabled")
		return nil
	}
	rdb, err := cache.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize settings cache", "error", err)
		return nil
	}
	return cache.New(rdb, cfg.GetSettingsCacheTTL())
}

func initNotificationQueue(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; lead notifications are delivered in-process")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize notification queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func initSender(cfg config.SMTPConfig, log *logger.Logger) email.Sender {
	if !cfg.IsSMTPEnabled() {
		log.Warn("SMTP not configured; lead notification mails are dropped")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(cfg)
}

// initDocumentCleanup falls back to a no-op cleaner when no object store is
// configured, so deleting a lead never depends on MinIO being present.
func initDocumentCleanup(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) ports.DocumentCleanup {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MinIO not configured; lead documents are not cleaned up")
		return documents.NoopCleaner{}
	}

	store, err := documents.NewMinIOStore(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	bucket := cfg.GetMinioBucketLeadDocuments()
	if err := withRetry(ctx, log, "ensure lead-documents bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "leadDocumentsBucket", bucket)
	return documents.NewCleaner(store, bucket, log)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
