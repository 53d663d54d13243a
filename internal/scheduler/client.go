package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"salesrep_portal/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	notificationMaxRetry = 5
	// Assignment mails may repeat after this window; expiry mails are keyed by date.
	notificationRetention = 7 * 24 * time.Hour
)

type Client struct {
	client *asynq.Client
	queue  string
}

// NotificationEnqueuer hands lead notifications to the worker.
type NotificationEnqueuer interface {
	EnqueueLeadNotification(ctx context.Context, payload LeadNotificationPayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueLeadNotification queues one mail. A notification already queued or
// recently sent for the same lead, recipient and deadline is skipped.
func (c *Client) EnqueueLeadNotification(ctx context.Context, payload LeadNotificationPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewLeadNotificationTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID(payload.dedupeKey()),
		asynq.MaxRetry(notificationMaxRetry),
		asynq.Retention(notificationRetention),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

var _ NotificationEnqueuer = (*Client)(nil)
