package service

import (
	"errors"

	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/leads/repository"
	"salesrep_portal/platform/apperr"
)

const msgLeadNotFound = "lead not found"

// toAppErr converts store and rule errors into apperr values. Errors that are
// already typed pass through.
func toAppErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var typed *apperr.Error
	if errors.As(err, &typed) {
		return err
	}

	var rule *domain.RuleError
	if errors.As(err, &rule) {
		return apperr.Rule(rule.Reason, rule.Message).WithOp(op)
	}

	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound).WithOp(op)
	}

	return apperr.Internal(op, err)
}
