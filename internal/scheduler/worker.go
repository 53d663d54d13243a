package scheduler

import (
	"context"
	"fmt"

	"salesrep_portal/platform/config"
	"salesrep_portal/platform/logger"

	"github.com/hibiken/asynq"
)

// NotificationDeliverer sends the mail described by a payload.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, payload LeadNotificationPayload) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	deliverer NotificationDeliverer
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, deliverer NotificationDeliverer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server:    server,
		mux:       asynq.NewServeMux(),
		deliverer: deliverer,
		log:       log,
	}
	w.mux.HandleFunc(TaskLeadNotification, w.handleLeadNotification)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadNotification(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadNotificationPayload(task)
	if err != nil {
		// A malformed payload will never succeed.
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return w.deliverer.Deliver(ctx, payload)
}
