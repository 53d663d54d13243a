package service

import (
	"context"
	"testing"

	"salesrep_portal/internal/organization/repository"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	users     map[uuid.UUID]repository.User
	lastScope scoping.Predicate
}

func (m *memStore) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	u, ok := m.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memStore) ListUsers(_ context.Context, scope scoping.Predicate) ([]repository.User, error) {
	m.lastScope = scope
	return nil, nil
}

func TestResolveActor(t *testing.T) {
	group := uuid.New()
	org := uuid.New()
	active := repository.User{ID: uuid.New(), Role: scoping.RoleSalesOrgAdmin, SalesGroupID: &group, SalesOrgID: &org, IsActive: true}
	inactive := repository.User{ID: uuid.New(), Role: scoping.RoleSalesRep, IsActive: false}
	unknownRole := repository.User{ID: uuid.New(), Role: scoping.Role("Auditor"), IsActive: true}
	store := &memStore{users: map[uuid.UUID]repository.User{active.ID: active, inactive.ID: inactive, unknownRole.ID: unknownRole}}
	svc := New(store, logger.Discard())

	actor, err := svc.ResolveActor(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, scoping.RoleSalesOrgAdmin, actor.Role)
	assert.Equal(t, &org, actor.SalesOrgID)

	_, err = svc.ResolveActor(context.Background(), inactive.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.ResolveActor(context.Background(), unknownRole.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.ResolveActor(context.Background(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAssignableUsersFollowLeadScope(t *testing.T) {
	group := uuid.New()
	store := &memStore{}
	svc := New(store, logger.Discard())

	_, err := svc.ListAssignableUsers(context.Background(), scoping.Actor{UserID: uuid.New(), Role: scoping.RoleGroupAdmin, SalesGroupID: &group})

	require.NoError(t, err)
	assert.Equal(t, scoping.ByGroup, store.lastScope.Kind)
	assert.Equal(t, group, store.lastScope.GroupID)
}
