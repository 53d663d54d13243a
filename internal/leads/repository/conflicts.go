package repository

import (
	"context"
	"fmt"

	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/leads/duplicates"
)

// activeLeadClause selects leads that still count for duplicate detection.
const activeLeadClause = "NOT l.is_expired AND l.status <> 'Converted'"

// FindActiveConflicts implements duplicates.LeadStore.
func (r *Repository) FindActiveConflicts(ctx context.Context, q duplicates.Query) ([]duplicates.Conflict, error) {
	query, args := buildConflictQuery(q)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conflicts := make([]duplicates.Conflict, 0)
	for rows.Next() {
		var c duplicates.Conflict
		var status string
		if err := rows.Scan(&c.LeadID, &status, &c.SalesGroupID); err != nil {
			return nil, err
		}
		c.Status = domain.Status(status)
		conflicts = append(conflicts, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return conflicts, nil
}

func buildConflictQuery(q duplicates.Query) (string, []interface{}) {
	matchClause, args, argIdx := duplicates.MatchSQL("l", q, 1)
	where := activeLeadClause + " AND " + matchClause
	if q.ExcludeLeadID != nil {
		where += fmt.Sprintf(" AND l.id <> $%d", argIdx)
		args = append(args, *q.ExcludeLeadID)
	}
	return fmt.Sprintf(`
		SELECT l.id, l.status, l.sales_group_id
		FROM leads l
		WHERE %s
		ORDER BY l.created_date ASC
	`, where), args
}
