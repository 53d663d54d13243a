package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("customer not found")

// Customer is a converted lead. Contact and address fields are copied from the
// lead at conversion and never follow later lead edits.
type Customer struct {
	ID                 uuid.UUID
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	Company            string
	Address            string
	City               string
	State              string
	Zip                string
	Notes              string
	OriginalLeadID     *uuid.UUID
	ConvertedByID      uuid.UUID
	SalesRepID         *uuid.UUID
	SalesRepSalesOrgID *uuid.UUID
	SalesGroupID       *uuid.UUID
	ConversionDate     time.Time
	LeadCreatedDate    time.Time
	DaysToConvert      int
	IsDeleted          bool
	DeletedDate        *time.Time
	CreatedAt          time.Time
}

// Ownership returns the attributes customer scoping looks at.
func (c Customer) Ownership() scoping.CustomerOwnership {
	return scoping.CustomerOwnership{
		SalesGroupID:       c.SalesGroupID,
		ConvertedByID:      c.ConvertedByID,
		SalesRepID:         c.SalesRepID,
		SalesRepSalesOrgID: c.SalesRepSalesOrgID,
	}
}

// Repository persists customers. The pool is only present on the root
// repository; transaction-bound copies cannot open their own transactions.
type Repository struct {
	pool *pgxpool.Pool
	q    db.Querier
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, q: pool}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{q: tx}
}

const customerColumns = `c.id, c.first_name, c.last_name, c.email, c.phone, c.company,
	c.address, c.city, c.state, c.zip, c.notes, c.original_lead_id, c.converted_by_id,
	c.sales_rep_id, sr.sales_org_id, c.sales_group_id, c.conversion_date, c.lead_created_date,
	c.days_to_convert, c.is_deleted, c.deleted_date, c.created_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Company,
		&c.Address, &c.City, &c.State, &c.Zip, &c.Notes, &c.OriginalLeadID, &c.ConvertedByID,
		&c.SalesRepID, &c.SalesRepSalesOrgID, &c.SalesGroupID, &c.ConversionDate, &c.LeadCreatedDate,
		&c.DaysToConvert, &c.IsDeleted, &c.DeletedDate, &c.CreatedAt,
	)
	return c, err
}

// CreateFromSnapshot inserts the customer built at conversion.
func (r *Repository) CreateFromSnapshot(ctx context.Context, s domain.ConversionSnapshot) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.q.Exec(ctx, `
		INSERT INTO customers (
			id, first_name, last_name, email, phone, company, address, city, state, zip, notes,
			original_lead_id, converted_by_id, sales_rep_id, sales_group_id,
			conversion_date, lead_created_date, days_to_convert, is_deleted, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, false, $16)
	`,
		id, s.FirstName, s.LastName, s.Email, s.Phone, s.Company, s.Address, s.City, s.State, s.Zip, s.Notes,
		s.OriginalLeadID, s.ConvertedByID, s.SalesRepID, s.SalesGroupID,
		s.ConversionDate, s.LeadCreatedDate, s.DaysToConvert,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert customer: %w", err)
	}
	return id, nil
}

// HasActiveCustomerForLead reports whether a non-deleted customer references the lead.
func (r *Repository) HasActiveCustomerForLead(ctx context.Context, leadID uuid.UUID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM customers WHERE original_lead_id = $1 AND NOT is_deleted)
	`, leadID).Scan(&exists)
	return exists, err
}

// GetByID loads a non-deleted customer.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	query := `SELECT ` + customerColumns + `
		FROM customers c
		` + scoping.CustomerSalesRepJoin + `
		WHERE c.id = $1 AND NOT c.is_deleted`
	c, err := scanCustomer(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

// SoftDeleteResult describes what a soft delete touched.
type SoftDeleteResult struct {
	Customer        Customer
	LeadReactivated bool
}

// SoftDelete flags the customer as deleted and returns its originating lead,
// if it still exists, to the Lost state so another group may pick it up.
// Both writes share one transaction.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) (SoftDeleteResult, error) {
	if r.pool == nil {
		return SoftDeleteResult{}, errors.New("soft delete requires the pool-bound repository")
	}

	var result SoftDeleteResult
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `SELECT ` + customerColumns + `
			FROM customers c
			` + scoping.CustomerSalesRepJoin + `
			WHERE c.id = $1 AND NOT c.is_deleted
			FOR UPDATE OF c`
		c, err := scanCustomer(tx.QueryRow(ctx, query, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE customers SET is_deleted = true, deleted_date = $2 WHERE id = $1
		`, id, now); err != nil {
			return fmt.Errorf("soft delete customer: %w", err)
		}
		c.IsDeleted = true
		c.DeletedDate = &now
		result.Customer = c

		if c.OriginalLeadID == nil {
			return nil
		}
		tag, err := tx.Exec(ctx, `
			UPDATE leads SET status = 'Lost', is_expired = false, updated_at = $2
			WHERE id = $1
		`, *c.OriginalLeadID, now)
		if err != nil {
			return fmt.Errorf("reactivate lead: %w", err)
		}
		result.LeadReactivated = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return SoftDeleteResult{}, err
	}
	return result, nil
}
