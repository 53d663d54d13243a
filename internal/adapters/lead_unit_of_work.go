package adapters

import (
	"context"

	customerrepo "salesrep_portal/internal/customers/repository"
	leadrepo "salesrep_portal/internal/leads/repository"
	leadsvc "salesrep_portal/internal/leads/service"
	"salesrep_portal/platform/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LeadUnitOfWork implements leads/service.UnitOfWork with one Postgres
// transaction spanning the lead and customer tables.
type LeadUnitOfWork struct {
	pool      *pgxpool.Pool
	customers *customerrepo.Repository
}

// NewLeadUnitOfWork creates a new adapter.
func NewLeadUnitOfWork(pool *pgxpool.Pool, customers *customerrepo.Repository) *LeadUnitOfWork {
	return &LeadUnitOfWork{pool: pool, customers: customers}
}

func (u *LeadUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx leadsvc.TxScope) error) error {
	return db.WithTx(ctx, u.pool, func(tx pgx.Tx) error {
		return fn(ctx, leadsvc.TxScope{
			Leads:     leadrepo.New(tx),
			Customers: u.customers.WithTx(tx),
		})
	})
}

// Compile-time check.
var _ leadsvc.UnitOfWork = (*LeadUnitOfWork)(nil)
