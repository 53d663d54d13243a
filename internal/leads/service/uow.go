package service

import (
	"context"

	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/leads/ports"

	"github.com/google/uuid"
)

// LeadStore is the transactional lead persistence used by mutating operations.
type LeadStore interface {
	Create(ctx context.Context, lead domain.Lead) error
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	Update(ctx context.Context, lead domain.Lead, replaceProducts bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TxScope exposes the stores bound to one transaction.
type TxScope struct {
	Leads     LeadStore
	Customers ports.CustomerWriter
}

// UnitOfWork runs fn in a single transaction. The transaction commits when fn
// returns nil and rolls back otherwise, so nothing fn wrote is observable
// after a failure.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx TxScope) error) error
}
