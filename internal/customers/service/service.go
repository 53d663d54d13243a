// Package service implements scoped customer reads and the administrative
// soft delete that hands the originating lead back to the pool as Lost.
package service

import (
	"context"
	"errors"
	"time"

	"salesrep_portal/internal/audit"
	"salesrep_portal/internal/customers/repository"
	"salesrep_portal/internal/events"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/logger"

	"github.com/google/uuid"
)

const msgCustomerNotFound = "customer not found"

// Store is the customer persistence the service needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Customer, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Customer, int, error)
	SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) (repository.SoftDeleteResult, error)
}

// AuditSink receives customer audit events.
type AuditSink interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store Store
	audit AuditSink
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
}

func New(store Store, sink AuditSink, bus events.Bus, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{store: store, audit: sink, bus: bus, log: log, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type ListInput struct {
	Search       string
	SalesRepID   *uuid.UUID
	SalesGroupID *uuid.UUID
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

type ListResult struct {
	Items    []repository.Customer
	Total    int
	Page     int
	PageSize int
}

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// List returns the customers visible to actor.
func (s *Service) List(ctx context.Context, actor scoping.Actor, in ListInput) (ListResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	items, total, err := s.store.List(ctx, repository.ListParams{
		Scope:        scoping.ResolveCustomerScope(actor),
		Search:       in.Search,
		SalesRepID:   in.SalesRepID,
		SalesGroupID: in.SalesGroupID,
		Offset:       (page - 1) * size,
		Limit:        size,
		SortBy:       in.SortBy,
		SortOrder:    in.SortOrder,
	})
	if err != nil {
		return ListResult{}, apperr.Internal("customers.List", err)
	}
	return ListResult{Items: items, Total: total, Page: page, PageSize: size}, nil
}

// Get returns the customer when it is within actor's scope. Customers outside
// the scope are reported as not found.
func (s *Service) Get(ctx context.Context, actor scoping.Actor, id uuid.UUID) (repository.Customer, error) {
	c, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Customer{}, apperr.NotFound(msgCustomerNotFound)
	}
	if err != nil {
		return repository.Customer{}, apperr.Internal("customers.Get", err)
	}
	if !scoping.IsCustomerAccessible(actor, c.Ownership()) {
		return repository.Customer{}, apperr.NotFound(msgCustomerNotFound)
	}
	return c, nil
}

// Delete soft-deletes the customer and reactivates its lead as Lost.
// Only organization administrators may delete customers.
func (s *Service) Delete(ctx context.Context, actor scoping.Actor, id uuid.UUID) error {
	if actor.Role != scoping.RoleOrganizationAdmin {
		return apperr.Forbidden("only organization administrators can delete customers")
	}

	now := s.now().UTC()
	res, err := s.store.SoftDelete(ctx, id, now)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgCustomerNotFound)
	}
	if err != nil {
		return apperr.Internal("customers.Delete", err)
	}

	lg := s.log.WithContext(ctx)
	if res.LeadReactivated {
		lg.LeadTransition(res.Customer.OriginalLeadID.String(), actor.UserID.String(), "Converted", "Lost")
	}

	event := audit.NewEvent(audit.ActionCustomerDelete, audit.EntityCustomer, &id, &actor.UserID, now).
		With("company", res.Customer.Company).
		With("leadReactivated", res.LeadReactivated)
	if res.Customer.OriginalLeadID != nil {
		event = event.With("originalLeadId", res.Customer.OriginalLeadID.String())
	}
	if s.audit != nil {
		if err := s.audit.Emit(ctx, event); err != nil {
			lg.Error("audit emit failed", "action", string(event.Action), "error", err)
		}
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.CustomerDeleted{
			BaseEvent:      events.NewBaseEvent(),
			CustomerID:     id,
			OriginalLeadID: res.Customer.OriginalLeadID,
			DeletedByID:    actor.UserID,
		})
	}
	return nil
}
