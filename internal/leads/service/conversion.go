package service

import (
	"context"

	"salesrep_portal/internal/audit"
	"salesrep_portal/internal/events"
	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/apperr"

	"github.com/google/uuid"
)

// ConvertResult identifies the customer created by a conversion.
type ConvertResult struct {
	Lead          domain.Lead
	CustomerID    uuid.UUID
	DaysToConvert int
}

// Convert turns an open lead into a customer. The customer insert and the
// lead status change commit together or not at all; a second conversion of
// the same lead fails with ErrLeadConverted or ErrCustomerExists.
func (s *Service) Convert(ctx context.Context, actor scoping.Actor, id uuid.UUID) (ConvertResult, error) {
	const op = "leads.Convert"

	if !actor.Role.Valid() {
		return ConvertResult{}, apperr.Forbidden("role may not convert leads").WithOp(op)
	}

	var (
		result ConvertResult
		prev   domain.Status
	)
	err := s.uow.Within(ctx, func(ctx context.Context, tx TxScope) error {
		lead, err := tx.Leads.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !scoping.IsLeadAccessible(actor, lead.Ownership()) {
			return apperr.NotFound(msgLeadNotFound)
		}

		now := s.now()
		if err := lead.CheckConvertible(now); err != nil {
			s.log.WithContext(ctx).RuleRejected(op, id.String(), ruleReason(err))
			return err
		}

		exists, err := tx.Customers.HasActiveCustomerForLead(ctx, id)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrCustomerExists
		}

		snapshot := lead.Snapshot(actor.UserID, now)
		customerID, err := tx.Customers.CreateFromSnapshot(ctx, snapshot)
		if err != nil {
			return err
		}

		prev = lead.Status
		lead.MarkConverted(now)
		lead.UpdatedAt = now
		if err := tx.Leads.Update(ctx, lead, false); err != nil {
			return err
		}

		result = ConvertResult{Lead: lead, CustomerID: customerID, DaysToConvert: snapshot.DaysToConvert}
		return nil
	})
	if err != nil {
		return ConvertResult{}, toAppErr(op, err)
	}

	s.log.WithContext(ctx).LeadTransition(id.String(), actor.UserID.String(), string(prev), string(domain.StatusConverted))
	s.emit(ctx, audit.NewEvent(audit.ActionConvert, audit.EntityLead, &id, &actor.UserID, result.Lead.UpdatedAt).
		With("customerId", result.CustomerID).
		With("daysToConvert", result.DaysToConvert))
	s.publish(ctx, events.LeadConverted{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        id,
		CustomerID:    result.CustomerID,
		ConvertedByID: actor.UserID,
		DaysToConvert: result.DaysToConvert,
	})
	return result, nil
}
