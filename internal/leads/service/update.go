package service

import (
	"context"
	"errors"
	"strings"

	"salesrep_portal/internal/audit"
	"salesrep_portal/internal/events"
	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/leads/duplicates"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/sanitize"

	"github.com/google/uuid"
)

// UpdateResult is the stored lead plus the submitted fields the actor was not
// allowed to change.
type UpdateResult struct {
	Lead     domain.Lead
	Reverted []string
}

// Update applies a partial edit. The lead row is locked for the whole
// decision so concurrent edits, conversion and the expiry sweep serialize.
func (s *Service) Update(ctx context.Context, actor scoping.Actor, id uuid.UUID, submitted domain.Changes) (UpdateResult, error) {
	const op = "leads.Update"

	submitted = s.normalizeChanges(submitted)

	var (
		before domain.Lead
		result UpdateResult
		moved  *uuid.UUID
		wrote  bool
	)
	err := s.uow.Within(ctx, func(ctx context.Context, tx TxScope) error {
		now := s.now()
		current, err := tx.Leads.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !scoping.IsLeadAccessible(actor, current.Ownership()) {
			return apperr.NotFound(msgLeadNotFound)
		}
		if err := domain.CheckEditable(current, now); err != nil {
			return err
		}

		changes := submitted
		if changes.AssignedToID != nil && !sameID(changes.AssignedToID, current.AssignedToID) {
			assignee, err := s.activeUser(ctx, op, *changes.AssignedToID)
			if err != nil {
				return err
			}
			changes.SalesOrgID = orgOrNil(assignee.SalesOrgID)
			if actor.Role == scoping.RoleGroupAdmin && !sameID(assignee.SalesGroupID, actor.SalesGroupID) {
				return apperr.Validation("assignee must belong to your sales group")
			}
		} else {
			changes.SalesOrgID = nil
		}

		sanitized := domain.SanitizeChanges(actor, current, changes)
		result.Reverted = sanitized.Reverted
		c := sanitized.Changes

		if err := domain.ValidateTransition(current, c, now); err != nil {
			s.log.WithContext(ctx).RuleRejected(op, id.String(), ruleReason(err))
			return err
		}
		if c.IsEmpty() {
			result.Lead = current
			return nil
		}
		if c.ProductIDs != nil {
			c.ProductIDs = uniqueIDs(c.ProductIDs)
			if err := s.validateProducts(ctx, c.ProductIDs); err != nil {
				return err
			}
		}

		next := current
		next.Apply(c)
		if next.SalesOrgID != nil && *next.SalesOrgID == uuid.Nil {
			next.SalesOrgID = nil
			next.AssigneeSalesOrgID = nil
		}

		if c.Company != nil || c.AddressChanged() {
			reg := duplicates.Registration{Company: next.Company, Address: next.Address, City: next.City, State: next.State, Zip: next.Zip}
			decision, err := s.dups.CheckEdit(ctx, reg, c.Company != nil, c.AddressChanged(), id)
			if err != nil {
				return apperr.Internal(op, err)
			}
			if !decision.Allowed {
				s.emitDuplicateAttempt(ctx, actor, reg, decision)
				return decision.Err
			}
		}

		next.UpdatedAt = now
		if err := tx.Leads.Update(ctx, next, c.ProductIDs != nil); err != nil {
			return err
		}

		before = current
		result.Lead = next
		wrote = true
		if c.AssignedToID != nil {
			moved = c.AssignedToID
		}
		return nil
	})
	if err != nil {
		return UpdateResult{}, toAppErr(op, err)
	}
	if !wrote {
		return result, nil
	}

	lead := result.Lead
	if before.Status != lead.Status {
		s.log.WithContext(ctx).LeadTransition(id.String(), actor.UserID.String(), string(before.Status), string(lead.Status))
	}
	s.emit(ctx, audit.NewEvent(audit.ActionUpdate, audit.EntityLead, &id, &actor.UserID, lead.UpdatedAt).
		With("fromStatus", string(before.Status)).
		With("toStatus", string(lead.Status)).
		With("reverted", result.Reverted))

	if moved != nil {
		s.emit(ctx, audit.NewEvent(audit.ActionReassign, audit.EntityLead, &id, &actor.UserID, lead.UpdatedAt).
			With("from", before.AssignedToID).
			With("to", *moved).
			With("salesGroupId", lead.SalesGroupID))
		s.publish(ctx, events.LeadAssigned{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       id,
			Company:      lead.Company,
			PreviousID:   before.AssignedToID,
			AssigneeID:   *moved,
			AssignedByID: actor.UserID,
		})
	}

	return result, nil
}

// normalizeChanges applies the same input cleanup as registration.
func (s *Service) normalizeChanges(c domain.Changes) domain.Changes {
	c.FirstName = sanitize.TextPtr(c.FirstName)
	c.LastName = sanitize.TextPtr(c.LastName)
	c.Company = sanitize.TextPtr(c.Company)
	c.Address = sanitize.TextPtr(c.Address)
	c.City = sanitize.TextPtr(c.City)
	c.Notes = sanitize.TextPtr(c.Notes)
	if c.State != nil {
		v := strings.ToUpper(sanitize.Text(*c.State))
		c.State = &v
	}
	if c.Zip != nil {
		v := strings.TrimSpace(*c.Zip)
		c.Zip = &v
	}
	if c.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*c.Email))
		c.Email = &v
	}
	if c.Phone != nil {
		v := s.phone.E164(*c.Phone)
		c.Phone = &v
	}
	// The org always follows the assignee and is never taken from input.
	c.SalesOrgID = nil
	return c
}

// orgOrNil returns the assignee's org, or uuid.Nil when the assignee has none
// so the change still registers as an assignment.
func orgOrNil(org *uuid.UUID) *uuid.UUID {
	if org != nil {
		v := *org
		return &v
	}
	v := uuid.Nil
	return &v
}

func ruleReason(err error) string {
	var rule *domain.RuleError
	if errors.As(err, &rule) {
		return rule.Reason
	}
	return ""
}
