package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/scoping"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// dueLeadClause is the expiry predicate. It is evaluated both when selecting
// candidates and again inside the conditional update.
const dueLeadClause = "l.expiry_date <= $1 AND NOT l.is_expired AND l.status <> 'Converted'"

const listDueLeadsQuery = `
	SELECT l.id
	FROM leads l
	WHERE ` + dueLeadClause + `
	ORDER BY l.expiry_date ASC
	LIMIT $2`

// expireIfDueQuery re-checks the predicate at write time so a concurrently
// granted extension is never overwritten.
const expireIfDueQuery = `
	UPDATE leads l
	SET is_expired = true, status = 'Expired', updated_at = now()
	WHERE l.id = $2 AND ` + dueLeadClause + `
	RETURNING l.id, l.company, l.expiry_date, l.assigned_to_id,
		(SELECT u.sales_org_id FROM users u WHERE u.id = l.assigned_to_id)`

// ListDueLeadIDs returns up to limit leads whose expiry has passed.
func (r *Repository) ListDueLeadIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.q.Query(ctx, listDueLeadsQuery, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return ids, nil
}

// ExpireIfDue expires the lead only if it is still due at write time. The
// boolean is false when the lead was extended, converted or already expired
// in the meantime.
func (r *Repository) ExpireIfDue(ctx context.Context, id uuid.UUID, now time.Time) (domain.ExpirySummary, bool, error) {
	var s domain.ExpirySummary
	err := r.q.QueryRow(ctx, expireIfDueQuery, now, id).Scan(&s.LeadID, &s.Company, &s.ExpiryDate, &s.AssignedToID, &s.SalesOrgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ExpirySummary{}, false, nil
	}
	if err != nil {
		return domain.ExpirySummary{}, false, fmt.Errorf("expire lead %s: %w", id, err)
	}
	return s, true, nil
}

// ListExpiringSoon returns open leads in scope whose expiry falls in (from, until].
func (r *Repository) ListExpiringSoon(ctx context.Context, scope scoping.Predicate, from, until time.Time) ([]domain.ExpirySummary, error) {
	query, args := buildExpiringSoonQuery(scope, from, until)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ExpirySummary, 0)
	for rows.Next() {
		var s domain.ExpirySummary
		if err := rows.Scan(&s.LeadID, &s.Company, &s.ExpiryDate, &s.AssignedToID, &s.SalesOrgID); err != nil {
			return nil, err
		}
		items = append(items, s)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

func buildExpiringSoonQuery(scope scoping.Predicate, from, until time.Time) (string, []interface{}) {
	scopeClause, scopeArgs := scope.LeadSQL(3)
	args := append([]interface{}{from, until}, scopeArgs...)
	return fmt.Sprintf(`
		SELECT l.id, l.company, l.expiry_date, l.assigned_to_id, au.sales_org_id
		FROM leads l
		%s
		WHERE NOT l.is_expired
			AND l.status NOT IN ('Converted', 'Lost', 'Expired')
			AND l.expiry_date > $1
			AND l.expiry_date <= $2
			AND %s
		ORDER BY l.expiry_date ASC
	`, scoping.LeadAssigneeJoin, scopeClause), args
}
