// Package service implements the lead lifecycle operations: registration,
// edits, extension, conversion, deletion and scoped queries.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"salesrep_portal/internal/audit"
	"salesrep_portal/internal/events"
	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/leads/duplicates"
	"salesrep_portal/internal/leads/ports"
	"salesrep_portal/internal/leads/repository"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/logger"
	"salesrep_portal/platform/phone"
	"salesrep_portal/platform/sanitize"

	"github.com/google/uuid"
)

// LeadReader is the non-transactional read side of the lead store.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.Lead, int, error)
	TopN(ctx context.Context, scope scoping.Predicate, search string, limit int) ([]domain.Lead, error)
	ListExpiringSoon(ctx context.Context, scope scoping.Predicate, from, until time.Time) ([]domain.ExpirySummary, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CountActiveProducts(ctx context.Context, ids []uuid.UUID) (int, error)
}

// Deps are the collaborators of the lead service.
type Deps struct {
	Reader     LeadReader
	UnitOfWork UnitOfWork
	Duplicates *duplicates.Checker
	Users      ports.UserDirectory
	Settings   ports.SettingsProvider
	Documents  ports.DocumentCleanup
	Audit      ports.AuditSink
	EventBus   events.Bus
	Phone      phone.Normalizer
	Logger     *logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	reader    LeadReader
	uow       UnitOfWork
	dups      *duplicates.Checker
	users     ports.UserDirectory
	settings  ports.SettingsProvider
	documents ports.DocumentCleanup
	audit     ports.AuditSink
	bus       events.Bus
	phone     phone.Normalizer
	log       *logger.Logger
	now       func() time.Time
}

func New(d Deps) *Service {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	log := d.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		reader:    d.Reader,
		uow:       d.UnitOfWork,
		dups:      d.Duplicates,
		users:     d.Users,
		settings:  d.Settings,
		documents: d.Documents,
		audit:     d.Audit,
		bus:       d.EventBus,
		phone:     d.Phone,
		log:       log,
		now:       func() time.Time { return now().UTC() },
	}
}

// CreateInput is a lead registration after transport decoding.
type CreateInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Company      string
	Address      string
	City         string
	State        string
	Zip          string
	Notes        string
	AssignedToID *uuid.UUID
	SalesGroupID *uuid.UUID
	ProductIDs   []uuid.UUID
}

// Create registers a new lead in status New. The duplicate and cooling-period
// rules run before anything is written.
func (s *Service) Create(ctx context.Context, actor scoping.Actor, in CreateInput) (domain.Lead, error) {
	const op = "leads.Create"

	if !actor.Role.Valid() {
		return domain.Lead{}, apperr.Forbidden("role may not register leads").WithOp(op)
	}

	assignee, groupID, err := s.resolvePlacement(ctx, actor, in.AssignedToID, in.SalesGroupID)
	if err != nil {
		return domain.Lead{}, err
	}

	productIDs := uniqueIDs(in.ProductIDs)
	if err := s.validateProducts(ctx, productIDs); err != nil {
		return domain.Lead{}, err
	}

	params := domain.NewLeadParams{
		FirstName:    sanitize.Text(in.FirstName),
		LastName:     sanitize.Text(in.LastName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        s.phone.E164(in.Phone),
		Company:      sanitize.Text(in.Company),
		Address:      sanitize.Text(in.Address),
		City:         sanitize.Text(in.City),
		State:        strings.ToUpper(sanitize.Text(in.State)),
		Zip:          strings.TrimSpace(in.Zip),
		Notes:        sanitize.Text(in.Notes),
		AssignedToID: &assignee.ID,
		SalesGroupID: groupID,
		SalesOrgID:   assignee.SalesOrgID,
		CreatedByID:  actor.UserID,
		ProductIDs:   productIDs,
	}
	if params.Company == "" {
		return domain.Lead{}, apperr.Validation("company is required").WithOp(op)
	}

	reg := duplicates.Registration{Company: params.Company, Address: params.Address, City: params.City, State: params.State, Zip: params.Zip}
	decision, err := s.dups.Check(ctx, reg, groupID, nil)
	if err != nil {
		return domain.Lead{}, apperr.Internal(op, err)
	}
	if !decision.Allowed {
		s.emitDuplicateAttempt(ctx, actor, reg, decision)
		return domain.Lead{}, toAppErr(op, decision.Err)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.Lead{}, apperr.Internal(op, err)
	}

	lead := domain.NewLead(params, s.now(), settings.LeadInitialExpiryDays)
	lead.AssigneeSalesOrgID = assignee.SalesOrgID

	err = s.uow.Within(ctx, func(ctx context.Context, tx TxScope) error {
		return tx.Leads.Create(ctx, lead)
	})
	if err != nil {
		return domain.Lead{}, toAppErr(op, err)
	}

	s.log.WithContext(ctx).LeadTransition(lead.ID.String(), actor.UserID.String(), "", string(lead.Status))
	s.emit(ctx, audit.NewEvent(audit.ActionCreate, audit.EntityLead, &lead.ID, &actor.UserID, lead.CreatedDate).
		With("company", lead.Company).
		With("expiryDate", lead.ExpiryDate))
	s.publish(ctx, events.LeadCreated{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		Company:      lead.Company,
		CreatedByID:  actor.UserID,
		AssignedToID: lead.AssignedToID,
		ExpiryDate:   lead.ExpiryDate,
	})
	if assignee.ID != actor.UserID {
		s.publish(ctx, events.LeadAssigned{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       lead.ID,
			Company:      lead.Company,
			AssigneeID:   assignee.ID,
			AssignedByID: actor.UserID,
		})
	}

	return lead, nil
}

// resolvePlacement decides the assignee and sales group of a new lead.
// Sales reps always register for themselves; admins may only place leads
// inside their own unit.
func (s *Service) resolvePlacement(ctx context.Context, actor scoping.Actor, assignedTo, salesGroup *uuid.UUID) (ports.UserInfo, *uuid.UUID, error) {
	const op = "leads.resolvePlacement"

	assigneeID := actor.UserID
	if assignedTo != nil && actor.Role != scoping.RoleSalesRep {
		assigneeID = *assignedTo
	}

	assignee, err := s.activeUser(ctx, op, assigneeID)
	if err != nil {
		return ports.UserInfo{}, nil, err
	}

	switch actor.Role {
	case scoping.RoleOrganizationAdmin:
		if salesGroup != nil {
			return assignee, salesGroup, nil
		}
		return assignee, assignee.SalesGroupID, nil
	case scoping.RoleGroupAdmin:
		if actor.SalesGroupID == nil {
			return ports.UserInfo{}, nil, apperr.Forbidden("group admin has no sales group").WithOp(op)
		}
		if !sameID(assignee.SalesGroupID, actor.SalesGroupID) {
			return ports.UserInfo{}, nil, apperr.Validation("assignee must belong to your sales group").WithOp(op)
		}
		return assignee, actor.SalesGroupID, nil
	case scoping.RoleSalesOrgAdmin:
		if actor.SalesOrgID == nil {
			return ports.UserInfo{}, nil, apperr.Forbidden("sales org admin has no sales org").WithOp(op)
		}
		if !sameID(assignee.SalesOrgID, actor.SalesOrgID) {
			return ports.UserInfo{}, nil, apperr.Validation("assignee must belong to your sales org").WithOp(op)
		}
		return assignee, actor.SalesGroupID, nil
	default:
		return assignee, actor.SalesGroupID, nil
	}
}

func (s *Service) activeUser(ctx context.Context, op string, id uuid.UUID) (ports.UserInfo, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return ports.UserInfo{}, apperr.Validation("assignee does not exist").WithOp(op)
		}
		return ports.UserInfo{}, apperr.Internal(op, err)
	}
	if !user.IsActive {
		return ports.UserInfo{}, apperr.Validation("assignee is not active").WithOp(op)
	}
	return user, nil
}

func (s *Service) validateProducts(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := s.reader.CountActiveProducts(ctx, ids)
	if err != nil {
		return apperr.Internal("leads.validateProducts", err)
	}
	if count != len(ids) {
		return apperr.Validation("unknown or inactive product").WithOp("leads.validateProducts")
	}
	return nil
}

// Get returns a lead visible to actor. Leads outside the actor's scope are
// reported as not found.
func (s *Service) Get(ctx context.Context, actor scoping.Actor, id uuid.UUID) (domain.Lead, error) {
	const op = "leads.Get"

	lead, err := s.reader.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, toAppErr(op, err)
	}
	if !scoping.IsLeadAccessible(actor, lead.Ownership()) {
		return domain.Lead{}, apperr.NotFound(msgLeadNotFound).WithOp(op)
	}
	return lead, nil
}

// Delete hard-deletes a lead after purging its documents. Organization admins only.
func (s *Service) Delete(ctx context.Context, actor scoping.Actor, id uuid.UUID) (int, error) {
	const op = "leads.Delete"

	if actor.Role != scoping.RoleOrganizationAdmin {
		return 0, apperr.Forbidden("only organization admins may delete leads").WithOp(op)
	}

	lead, err := s.reader.GetByID(ctx, id)
	if err != nil {
		return 0, toAppErr(op, err)
	}

	removed, err := s.documents.DeleteLeadDocuments(ctx, id)
	if err != nil {
		return 0, apperr.Internal(op, err)
	}

	err = s.uow.Within(ctx, func(ctx context.Context, tx TxScope) error {
		return tx.Leads.Delete(ctx, id)
	})
	if err != nil {
		return removed, toAppErr(op, err)
	}

	s.emit(ctx, audit.NewEvent(audit.ActionDelete, audit.EntityLead, &id, &actor.UserID, s.now()).
		With("company", lead.Company).
		With("documentsRemoved", removed))
	return removed, nil
}

// CheckDuplicate runs the registration rules without writing anything so a
// form can warn early. Blocked checks are audited as duplicate attempts.
func (s *Service) CheckDuplicate(ctx context.Context, actor scoping.Actor, reg duplicates.Registration, salesGroupID, excludeLeadID *uuid.UUID) (duplicates.Decision, error) {
	const op = "leads.CheckDuplicate"

	if !actor.Role.Valid() {
		return duplicates.Decision{}, apperr.Forbidden("role may not register leads").WithOp(op)
	}
	if salesGroupID == nil || actor.Role != scoping.RoleOrganizationAdmin {
		salesGroupID = actor.SalesGroupID
	}

	decision, err := s.dups.Check(ctx, reg, salesGroupID, excludeLeadID)
	if err != nil {
		return duplicates.Decision{}, apperr.Internal(op, err)
	}
	if !decision.Allowed {
		s.emitDuplicateAttempt(ctx, actor, reg, decision)
	}
	return decision, nil
}

// ListProducts returns the active product catalog.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.reader.ListProducts(ctx)
	if err != nil {
		return nil, apperr.Internal("leads.ListProducts", err)
	}
	return products, nil
}

func (s *Service) emitDuplicateAttempt(ctx context.Context, actor scoping.Actor, reg duplicates.Registration, d duplicates.Decision) {
	event := audit.NewEvent(audit.ActionDuplicateAttempt, audit.EntityLead, d.ConflictLeadID, &actor.UserID, s.now()).
		With("company", reg.Company).
		With("zip", reg.Zip)
	var rule *domain.RuleError
	if errors.As(d.Err, &rule) {
		event = event.With("reason", rule.Reason)
	}
	s.emit(ctx, event)
}

// emit hands the event to the audit sink. Sink failures are logged and never
// undo the operation that produced the event.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.log.WithContext(ctx).Error("audit emit failed", "action", string(event.Action), "error", err)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event)
}

func sameID(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
