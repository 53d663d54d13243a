// Package service resolves users into scoping actors and answers directory
// lookups for the other modules.
package service

import (
	"context"
	"errors"

	"salesrep_portal/internal/organization/repository"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/logger"

	"github.com/google/uuid"
)

const msgUserNotFound = "user not found"

type Store interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (repository.User, error)
	ListUsers(ctx context.Context, scope scoping.Predicate) ([]repository.User, error)
}

type Service struct {
	store Store
	log   *logger.Logger
}

func New(store Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{store: store, log: log}
}

// GetUser returns the user, active or not.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (repository.User, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.User{}, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return repository.User{}, apperr.Internal("organization.GetUser", err)
	}
	return u, nil
}

// ResolveActor builds the scoping actor for an authenticated user. Inactive
// users and users with an unknown role are refused.
func (s *Service) ResolveActor(ctx context.Context, userID uuid.UUID) (scoping.Actor, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return scoping.Actor{}, err
	}
	if !u.IsActive {
		return scoping.Actor{}, apperr.Forbidden("account is not active")
	}
	if !u.Role.Valid() {
		s.log.WithContext(ctx).Warn("user has unknown role", "user_id", u.ID.String(), "role", string(u.Role))
		return scoping.Actor{}, apperr.Forbidden("account has no valid role")
	}
	return scoping.Actor{UserID: u.ID, Role: u.Role, SalesGroupID: u.SalesGroupID, SalesOrgID: u.SalesOrgID}, nil
}

// ListAssignableUsers returns the active users actor may assign leads to:
// the same breadth as the actor's lead scope.
func (s *Service) ListAssignableUsers(ctx context.Context, actor scoping.Actor) ([]repository.User, error) {
	users, err := s.store.ListUsers(ctx, scoping.ResolveLeadScope(actor))
	if err != nil {
		return nil, apperr.Internal("organization.ListAssignableUsers", err)
	}
	return users, nil
}
