package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesrep_portal/internal/adapters"
	"salesrep_portal/internal/email"
	"salesrep_portal/internal/events"
	"salesrep_portal/internal/leads/expiry"
	leadrepo "salesrep_portal/internal/leads/repository"
	"salesrep_portal/internal/notification"
	"salesrep_portal/internal/organization"
	"salesrep_portal/internal/scheduler"
	"salesrep_portal/platform/config"
	"salesrep_portal/platform/db"
	"salesrep_portal/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	auditSink, closeAudit, err := adapters.NewAuditSink(cfg, log)
	if err != nil {
		log.Error("failed to initialize audit sink", "error", err)
		panic("failed to initialize audit sink: " + err.Error())
	}
	defer func() { _ = closeAudit() }()

	var sender email.Sender = email.NoopSender{}
	if cfg.IsSMTPEnabled() {
		sender = email.NewSMTPSender(cfg)
	} else {
		log.Warn("SMTP not configured; lead notification mails are dropped")
	}

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	users := organization.NewModule(pool, log).UserDirectory()
	notificationModule := notification.New(sender, users, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	sweeper := expiry.NewSweeper(leadrepo.New(pool), auditSink, eventBus, log)
	expiryLoop := scheduler.NewLeadExpiryLoop(sweeper, cfg, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		expiryLoop.Run(gctx)
		return nil
	})

	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; lead notifications are delivered in-process")
	} else {
		client, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize notification queue client", "error", err)
			panic("failed to initialize notification queue client: " + err.Error())
		}
		defer func() { _ = client.Close() }()
		notificationModule.SetEnqueuer(client)

		worker, err := scheduler.NewWorker(cfg, notificationModule, log)
		if err != nil {
			log.Error("failed to initialize scheduler worker", "error", err)
			panic("failed to initialize scheduler worker: " + err.Error())
		}
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}

	_ = g.Wait()
	log.Info("scheduler stopped")
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
