// Package cache keeps the system settings in Redis so every lead operation
// does not hit the settings row.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"salesrep_portal/internal/settings/repository"
	"salesrep_portal/platform/config"

	"github.com/redis/go-redis/v9"
)

const settingsKey = "salesrep:system_settings:v1"

// ErrMiss is returned when the settings are not cached.
var ErrMiss = errors.New("settings not cached")

// NewClient builds a go-redis client from the configured URL.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt), nil
}

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context) (repository.Settings, error) {
	raw, err := c.rdb.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return repository.Settings{}, ErrMiss
	}
	if err != nil {
		return repository.Settings{}, err
	}

	var s repository.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return repository.Settings{}, fmt.Errorf("decode cached settings: %w", err)
	}
	return s, nil
}

func (c *Cache) Set(ctx context.Context, s repository.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, settingsKey, raw, c.ttl).Err()
}

// Invalidate drops the cached copy; the next Get reloads from the store.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, settingsKey).Err()
}
