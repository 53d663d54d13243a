package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"salesrep_portal/internal/scoping"
	settingscache "salesrep_portal/internal/settings/cache"
	"salesrep_portal/internal/settings/repository"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	current repository.Settings
	reads   int
	err     error
}

func (m *memStore) Get(context.Context) (repository.Settings, error) {
	m.reads++
	return m.current, m.err
}

func (m *memStore) Update(_ context.Context, s repository.Settings) (repository.Settings, error) {
	if m.err != nil {
		return repository.Settings{}, m.err
	}
	s.UpdatedAt = time.Now().UTC()
	m.current = s
	return s, nil
}

func newCachedService(t *testing.T, store *memStore) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(store, settingscache.New(rdb, time.Minute), nil, logger.Discard())
}

var orgAdmin = scoping.Actor{UserID: uuid.New(), Role: scoping.RoleOrganizationAdmin}

func TestGetIsServedFromCacheAfterFirstRead(t *testing.T) {
	store := &memStore{current: repository.Settings{CoolingPeriodDays: 90, LeadInitialExpiryDays: 30, LeadExtensionDays: 15}}
	svc := newCachedService(t, store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s, err := svc.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 90, s.CoolingPeriodDays)
	}
	assert.Equal(t, 1, store.reads)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	store := &memStore{current: repository.Settings{CoolingPeriodDays: 90, LeadInitialExpiryDays: 30, LeadExtensionDays: 15}}
	svc := newCachedService(t, store)
	ctx := context.Background()

	_, err := svc.Get(ctx)
	require.NoError(t, err)

	_, err = svc.Update(ctx, orgAdmin, UpdateInput{CoolingPeriodDays: 45, LeadInitialExpiryDays: 30, LeadExtensionDays: 10})
	require.NoError(t, err)

	s, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, s.CoolingPeriodDays)
	assert.Equal(t, 10, s.LeadExtensionDays)
	assert.Equal(t, &orgAdmin.UserID, s.UpdatedBy)
}

func TestUpdateRequiresOrganizationAdmin(t *testing.T) {
	svc := New(&memStore{}, nil, nil, logger.Discard())

	_, err := svc.Update(context.Background(), scoping.Actor{UserID: uuid.New(), Role: scoping.RoleGroupAdmin},
		UpdateInput{CoolingPeriodDays: 1, LeadInitialExpiryDays: 1, LeadExtensionDays: 1})

	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestUpdateRejectsNonPositiveDurations(t *testing.T) {
	store := &memStore{current: repository.Settings{CoolingPeriodDays: 90, LeadInitialExpiryDays: 30, LeadExtensionDays: 15}}
	svc := New(store, nil, nil, logger.Discard())

	_, err := svc.Update(context.Background(), orgAdmin, UpdateInput{CoolingPeriodDays: -1, LeadInitialExpiryDays: 0, LeadExtensionDays: 15})

	require.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 90, store.current.CoolingPeriodDays, "a rejected update must not be stored")
}

func TestZeroCoolingPeriodIsAllowed(t *testing.T) {
	svc := New(&memStore{}, nil, nil, logger.Discard())

	s, err := svc.Update(context.Background(), orgAdmin, UpdateInput{CoolingPeriodDays: 0, LeadInitialExpiryDays: 30, LeadExtensionDays: 15})

	require.NoError(t, err)
	assert.Equal(t, 0, s.CoolingPeriodDays)
}

func TestGetWrapsStoreFailure(t *testing.T) {
	svc := New(&memStore{err: errors.New("db down")}, nil, nil, logger.Discard())

	_, err := svc.Get(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}
