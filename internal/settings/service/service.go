// Package service reads and updates the system settings. Reads go through
// an optional Redis cache; updates invalidate it.
package service

import (
	"context"
	"errors"
	"fmt"

	"salesrep_portal/internal/events"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/internal/settings/cache"
	"salesrep_portal/internal/settings/repository"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/logger"
)

const maxDays = 3650

// Store is the persistent settings row.
type Store interface {
	Get(ctx context.Context) (repository.Settings, error)
	Update(ctx context.Context, s repository.Settings) (repository.Settings, error)
}

// Cache is a best-effort copy of the settings row.
type Cache interface {
	Get(ctx context.Context) (repository.Settings, error)
	Set(ctx context.Context, s repository.Settings) error
	Invalidate(ctx context.Context) error
}

type Service struct {
	store Store
	cache Cache
	bus   events.Bus
	log   *logger.Logger
}

// New creates the service. cache may be nil when Redis is not configured.
func New(store Store, c Cache, bus events.Bus, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{store: store, cache: c, bus: bus, log: log}
}

// Get returns the current settings. Cache failures fall back to the store.
func (s *Service) Get(ctx context.Context) (repository.Settings, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.WithContext(ctx).Warn("settings cache read failed", "error", err)
		}
	}

	current, err := s.store.Get(ctx)
	if err != nil {
		return repository.Settings{}, apperr.Internal("settings.Get", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, current); err != nil {
			s.log.WithContext(ctx).Warn("settings cache write failed", "error", err)
		}
	}
	return current, nil
}

type UpdateInput struct {
	CoolingPeriodDays     int
	LeadInitialExpiryDays int
	LeadExtensionDays     int
}

// Update replaces the settings. Only organization administrators may change
// them. New values apply to subsequent operations only.
func (s *Service) Update(ctx context.Context, actor scoping.Actor, in UpdateInput) (repository.Settings, error) {
	if actor.Role != scoping.RoleOrganizationAdmin {
		return repository.Settings{}, apperr.Forbidden("only organization administrators can change system settings")
	}
	if err := validate(in); err != nil {
		return repository.Settings{}, err
	}

	updated, err := s.store.Update(ctx, repository.Settings{
		CoolingPeriodDays:     in.CoolingPeriodDays,
		LeadInitialExpiryDays: in.LeadInitialExpiryDays,
		LeadExtensionDays:     in.LeadExtensionDays,
		UpdatedBy:             &actor.UserID,
	})
	if err != nil {
		return repository.Settings{}, apperr.Internal("settings.Update", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.WithContext(ctx).Error("settings cache invalidation failed", "error", err)
		}
	}

	s.log.WithContext(ctx).Info("system settings updated",
		"cooling_period_days", updated.CoolingPeriodDays,
		"lead_initial_expiry_days", updated.LeadInitialExpiryDays,
		"lead_extension_days", updated.LeadExtensionDays,
	)
	if s.bus != nil {
		s.bus.Publish(ctx, events.SettingsUpdated{BaseEvent: events.NewBaseEvent(), UpdatedByID: actor.UserID})
	}
	return updated, nil
}

func validate(in UpdateInput) error {
	details := map[string]string{}
	if in.CoolingPeriodDays < 0 || in.CoolingPeriodDays > maxDays {
		details["coolingPeriodDays"] = fmt.Sprintf("must be between 0 and %d", maxDays)
	}
	if in.LeadInitialExpiryDays < 1 || in.LeadInitialExpiryDays > maxDays {
		details["leadInitialExpiryDays"] = fmt.Sprintf("must be between 1 and %d", maxDays)
	}
	if in.LeadExtensionDays < 1 || in.LeadExtensionDays > maxDays {
		details["leadExtensionDays"] = fmt.Sprintf("must be between 1 and %d", maxDays)
	}
	if len(details) > 0 {
		return apperr.Validation("invalid system settings").WithDetails(details)
	}
	return nil
}
