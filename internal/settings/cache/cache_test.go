package cache

import (
	"context"
	"testing"
	"time"

	"salesrep_portal/internal/settings/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, ttl), mr
}

func TestRoundTripAndInvalidate(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx)
	require.ErrorIs(t, err, ErrMiss)

	want := repository.Settings{CoolingPeriodDays: 60, LeadInitialExpiryDays: 20, LeadExtensionDays: 10}
	require.NoError(t, c.Set(ctx, want))

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.CoolingPeriodDays, got.CoolingPeriodDays)
	assert.Equal(t, want.LeadExtensionDays, got.LeadExtensionDays)

	require.NoError(t, c.Invalidate(ctx))
	_, err = c.Get(ctx)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, repository.Settings{CoolingPeriodDays: 90, LeadInitialExpiryDays: 30, LeadExtensionDays: 15}))
	mr.FastForward(31 * time.Second)

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, ErrMiss)
}
