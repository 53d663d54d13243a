package repository

import (
	"context"
	"errors"
	"fmt"

	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("lead not found")

// Repository persists leads. It runs on the pool or, through WithTx, on a
// transaction owned by the caller.
type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{q: tx}
}

const leadColumns = `l.id, l.first_name, l.last_name, l.email, l.phone, l.company,
	l.address, l.city, l.state, l.zip, l.notes, l.status,
	l.assigned_to_id, l.sales_group_id, l.sales_org_id, au.sales_org_id,
	l.created_by_id, l.created_date, l.expiry_date, l.converted_date,
	l.is_expired, l.is_extended, l.extension_granted_date, l.extension_granted_by, l.updated_at`

const selectLeadByIDQuery = `SELECT ` + leadColumns + `
	FROM leads l
	LEFT JOIN users au ON au.id = l.assigned_to_id
	WHERE l.id = $1`

// Row locks apply to the lead only; the assignee join is on the nullable side.
const selectLeadForUpdateQuery = selectLeadByIDQuery + `
	FOR UPDATE OF l`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var status string
	err := row.Scan(
		&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone, &lead.Company,
		&lead.Address, &lead.City, &lead.State, &lead.Zip, &lead.Notes, &status,
		&lead.AssignedToID, &lead.SalesGroupID, &lead.SalesOrgID, &lead.AssigneeSalesOrgID,
		&lead.CreatedByID, &lead.CreatedDate, &lead.ExpiryDate, &lead.ConvertedDate,
		&lead.IsExpired, &lead.IsExtended, &lead.ExtensionGrantedDate, &lead.ExtensionGrantedBy, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.Status(status)
	return lead, nil
}

// Create inserts the lead and its product tags. Callers that need both writes
// to be atomic run it on a transaction.
func (r *Repository) Create(ctx context.Context, lead domain.Lead) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO leads (
			id, first_name, last_name, email, phone, company, address, city, state, zip, notes,
			status, assigned_to_id, sales_group_id, sales_org_id, created_by_id,
			created_date, expiry_date, is_expired, is_extended, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, false, false, $17)
	`,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.Company, lead.Address,
		lead.City, lead.State, lead.Zip, lead.Notes, string(lead.Status), lead.AssignedToID,
		lead.SalesGroupID, lead.SalesOrgID, lead.CreatedByID, lead.CreatedDate, lead.ExpiryDate,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return r.replaceProducts(ctx, lead.ID, lead.ProductIDs)
}

// GetByID loads the lead with its product tags.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	return r.get(ctx, selectLeadByIDQuery, id)
}

// GetForUpdate loads and row-locks the lead. It must run on a transaction.
func (r *Repository) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	return r.get(ctx, selectLeadForUpdateQuery, id)
}

func (r *Repository) get(ctx context.Context, query string, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}

	products, err := r.productIDsFor(ctx, []uuid.UUID{id})
	if err != nil {
		return domain.Lead{}, err
	}
	lead.ProductIDs = products[id]
	return lead, nil
}

// Update writes every mutable column of the lead. Product tags are replaced
// only when replaceProducts is set.
func (r *Repository) Update(ctx context.Context, lead domain.Lead, replaceProducts bool) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE leads SET
			first_name = $2, last_name = $3, email = $4, phone = $5, company = $6,
			address = $7, city = $8, state = $9, zip = $10, notes = $11, status = $12,
			assigned_to_id = $13, sales_group_id = $14, sales_org_id = $15,
			expiry_date = $16, converted_date = $17, is_expired = $18, is_extended = $19,
			extension_granted_date = $20, extension_granted_by = $21, updated_at = now()
		WHERE id = $1
	`,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.Company,
		lead.Address, lead.City, lead.State, lead.Zip, lead.Notes, string(lead.Status),
		lead.AssignedToID, lead.SalesGroupID, lead.SalesOrgID,
		lead.ExpiryDate, lead.ConvertedDate, lead.IsExpired, lead.IsExtended,
		lead.ExtensionGrantedDate, lead.ExtensionGrantedBy,
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if !replaceProducts {
		return nil
	}
	return r.replaceProducts(ctx, lead.ID, lead.ProductIDs)
}

// Delete hard-deletes the lead; product tags cascade and customers keep a
// null back-reference.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
