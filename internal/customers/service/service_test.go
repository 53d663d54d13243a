package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"salesrep_portal/internal/audit"
	"salesrep_portal/internal/customers/repository"
	"salesrep_portal/internal/events"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByID(ctx context.Context, id uuid.UUID) (repository.Customer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.Customer), args.Error(1)
}

func (m *mockStore) List(ctx context.Context, params repository.ListParams) ([]repository.Customer, int, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]repository.Customer), args.Int(1), args.Error(2)
}

func (m *mockStore) SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) (repository.SoftDeleteResult, error) {
	args := m.Called(ctx, id, now)
	return args.Get(0).(repository.SoftDeleteResult), args.Error(1)
}

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Emit(_ context.Context, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newService(store Store) (*Service, *recordingAudit, *events.InMemoryBus) {
	sink := &recordingAudit{}
	bus := events.NewInMemoryBus(logger.Discard())
	svc := New(store, sink, bus, logger.Discard()).WithClock(func() time.Time { return fixedNow })
	return svc, sink, bus
}

func TestGetHidesCustomersOutsideScope(t *testing.T) {
	store := &mockStore{}
	converter := uuid.New()
	other := uuid.New()
	id := uuid.New()
	store.On("GetByID", mock.Anything, id).Return(repository.Customer{ID: id, ConvertedByID: converter, SalesRepID: &other}, nil)
	svc, _, _ := newService(store)

	_, err := svc.Get(context.Background(), scoping.Actor{UserID: uuid.New(), Role: scoping.RoleSalesRep}, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	got, err := svc.Get(context.Background(), scoping.Actor{UserID: converter, Role: scoping.RoleSalesRep}, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID, "the converting rep keeps access after the customer was reassigned")
}

func TestGetMapsMissingCustomerToNotFound(t *testing.T) {
	store := &mockStore{}
	store.On("GetByID", mock.Anything, mock.Anything).Return(repository.Customer{}, repository.ErrNotFound)
	svc, _, _ := newService(store)

	_, err := svc.Get(context.Background(), scoping.Actor{UserID: uuid.New(), Role: scoping.RoleOrganizationAdmin}, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListClampsPagingAndUsesCustomerScope(t *testing.T) {
	store := &mockStore{}
	rep := uuid.New()
	store.On("List", mock.Anything, mock.MatchedBy(func(p repository.ListParams) bool {
		return p.Scope.Kind == scoping.ByRepOrConverter && p.Scope.UserID == rep && p.Limit == maxPageSize && p.Offset == maxPageSize
	})).Return([]repository.Customer{}, 0, nil)
	svc, _, _ := newService(store)

	res, err := svc.List(context.Background(), scoping.Actor{UserID: rep, Role: scoping.RoleSalesRep}, ListInput{Page: 2, PageSize: 500})

	require.NoError(t, err)
	assert.Equal(t, maxPageSize, res.PageSize)
	store.AssertExpectations(t)
}

func TestDeleteRequiresOrganizationAdmin(t *testing.T) {
	store := &mockStore{}
	svc, _, _ := newService(store)

	for _, role := range []scoping.Role{scoping.RoleGroupAdmin, scoping.RoleSalesOrgAdmin, scoping.RoleSalesRep} {
		err := svc.Delete(context.Background(), scoping.Actor{UserID: uuid.New(), Role: role}, uuid.New())
		assert.True(t, apperr.Is(err, apperr.KindForbidden), role)
	}
	store.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteAuditsAndPublishes(t *testing.T) {
	store := &mockStore{}
	id := uuid.New()
	leadID := uuid.New()
	store.On("SoftDelete", mock.Anything, id, fixedNow).Return(repository.SoftDeleteResult{
		Customer:        repository.Customer{ID: id, Company: "Acme", OriginalLeadID: &leadID},
		LeadReactivated: true,
	}, nil)
	svc, sink, bus := newService(store)

	var (
		mu        sync.Mutex
		published []events.CustomerDeleted
	)
	bus.Subscribe(events.CustomerDeleted{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, e.(events.CustomerDeleted))
		return nil
	}))

	admin := scoping.Actor{UserID: uuid.New(), Role: scoping.RoleOrganizationAdmin}
	require.NoError(t, svc.Delete(context.Background(), admin, id))
	bus.Wait()

	require.Len(t, sink.events, 1)
	assert.Equal(t, audit.ActionCustomerDelete, sink.events[0].Action)
	assert.Equal(t, true, sink.events[0].Details["leadReactivated"])
	require.Len(t, published, 1)
	assert.Equal(t, &leadID, published[0].OriginalLeadID)
	assert.Equal(t, admin.UserID, published[0].DeletedByID)
}

func TestDeleteOfMissingCustomerIsNotFound(t *testing.T) {
	store := &mockStore{}
	store.On("SoftDelete", mock.Anything, mock.Anything, mock.Anything).Return(repository.SoftDeleteResult{}, repository.ErrNotFound)
	svc, sink, _ := newService(store)

	err := svc.Delete(context.Background(), scoping.Actor{UserID: uuid.New(), Role: scoping.RoleOrganizationAdmin}, uuid.New())

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Empty(t, sink.events)
}

func TestDeletePersistenceFailureIsInternal(t *testing.T) {
	store := &mockStore{}
	store.On("SoftDelete", mock.Anything, mock.Anything, mock.Anything).Return(repository.SoftDeleteResult{}, errors.New("connection reset"))
	svc, _, _ := newService(store)

	err := svc.Delete(context.Background(), scoping.Actor{UserID: uuid.New(), Role: scoping.RoleOrganizationAdmin}, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}
