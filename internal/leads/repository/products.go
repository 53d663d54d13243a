package repository

import (
	"context"
	"fmt"

	"salesrep_portal/internal/leads/domain"

	"github.com/google/uuid"
)

// ListProducts returns the active product catalog ordered by name.
func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, is_active
		FROM products
		WHERE is_active = true
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.IsActive); err != nil {
			return nil, err
		}
		items = append(items, p)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// CountActiveProducts returns how many of ids are active products.
func (r *Repository) CountActiveProducts(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM products WHERE is_active = true AND id = ANY($1::uuid[])
	`, ids).Scan(&count)
	return count, err
}

func (r *Repository) replaceProducts(ctx context.Context, leadID uuid.UUID, productIDs []uuid.UUID) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM lead_products WHERE lead_id = $1`, leadID); err != nil {
		return fmt.Errorf("clear lead products: %w", err)
	}
	if len(productIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO lead_products (lead_id, product_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, leadID, productIDs)
	if err != nil {
		return fmt.Errorf("tag lead products: %w", err)
	}
	return nil
}

func (r *Repository) productIDsFor(ctx context.Context, leadIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	result := make(map[uuid.UUID][]uuid.UUID, len(leadIDs))
	if len(leadIDs) == 0 {
		return result, nil
	}

	rows, err := r.q.Query(ctx, `
		SELECT lead_id, product_id FROM lead_products WHERE lead_id = ANY($1::uuid[])
	`, leadIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var leadID, productID uuid.UUID
		if err := rows.Scan(&leadID, &productID); err != nil {
			return nil, err
		}
		result[leadID] = append(result[leadID], productID)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return result, nil
}
