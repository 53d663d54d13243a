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

// GrantExtension spends the lead's one-time extension. Only admin roles may
// grant it, and only for leads inside their scope.
// Sales reps cannot extend their own leads; admin-only extension is policy.
func (s *Service) GrantExtension(ctx context.Context, actor scoping.Actor, id uuid.UUID) (domain.ExtensionResult, error) {
	const op = "leads.GrantExtension"

	if !actor.Role.IsAdmin() {
		return domain.ExtensionResult{}, apperr.Forbidden("only administrators may grant extensions").WithOp(op)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.ExtensionResult{}, apperr.Internal(op, err)
	}

	var (
		res  domain.ExtensionResult
		prev domain.Status
		lead domain.Lead
	)
	err = s.uow.Within(ctx, func(ctx context.Context, tx TxScope) error {
		current, err := tx.Leads.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !scoping.IsLeadAccessible(actor, current.Ownership()) {
			return apperr.NotFound(msgLeadNotFound)
		}

		prev = current.Status
		now := s.now()
		res, err = current.GrantExtension(now, settings.LeadExtensionDays, actor.UserID)
		if err != nil {
			s.log.WithContext(ctx).RuleRejected(op, id.String(), ruleReason(err))
			return err
		}
		current.UpdatedAt = now
		lead = current
		return tx.Leads.Update(ctx, current, false)
	})
	if err != nil {
		return domain.ExtensionResult{}, toAppErr(op, err)
	}

	if prev != lead.Status {
		s.log.WithContext(ctx).LeadTransition(id.String(), actor.UserID.String(), string(prev), string(lead.Status))
	}
	s.emit(ctx, audit.NewEvent(audit.ActionGrantExtension, audit.EntityLead, &id, &actor.UserID, lead.UpdatedAt).
		With("previousExpiry", res.PreviousExpiry).
		With("newExpiry", res.NewExpiry).
		With("reopened", res.WasExpired))
	s.publish(ctx, events.LeadExtended{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         id,
		GrantedByID:    actor.UserID,
		PreviousExpiry: res.PreviousExpiry,
		NewExpiry:      res.NewExpiry,
		Reopened:       res.WasExpired,
	})
	return res, nil
}
