package repository

import (
	"context"
	"fmt"
	"strings"

	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/scoping"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type ListParams struct {
	Scope        scoping.Predicate
	Search       string
	Status       *domain.Status
	AssignedToID *uuid.UUID
	SalesGroupID *uuid.UUID
	Offset       int
	Limit        int
	SortBy       string
	SortOrder    string
}

// List returns one page of scoped leads and the total count. The count and
// the page run concurrently, so List must be called on the pool-bound
// repository, never inside a transaction.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	pageArgs := append(append([]interface{}{}, args...), params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		%s
		WHERE %s
		ORDER BY %s %s, l.id
		LIMIT $%d OFFSET $%d
	`, leadColumns, scoping.LeadAssigneeJoin, whereClause, mapLeadSortColumn(params.SortBy), sortOrder, argIdx, argIdx+1)
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads l %s WHERE %s", scoping.LeadAssigneeJoin, whereClause)

	var (
		total int
		leads []domain.Lead
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.q.QueryRow(gctx, countQuery, args...).Scan(&total)
	})
	g.Go(func() error {
		var err error
		leads, err = r.queryLeads(gctx, query, pageArgs...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if err := r.attachProducts(ctx, leads); err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// TopN is the lightweight typeahead search: scoped, unpaged, ordered by
// company and never audited.
func (r *Repository) TopN(ctx context.Context, scope scoping.Predicate, search string, limit int) ([]domain.Lead, error) {
	whereClause, args, argIdx := buildLeadListWhere(ListParams{Scope: scope, Search: search})
	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		%s
		WHERE %s
		ORDER BY l.company ASC, l.id
		LIMIT $%d
	`, leadColumns, scoping.LeadAssigneeJoin, whereClause, argIdx)
	return r.queryLeads(ctx, query, args...)
}

func (r *Repository) queryLeads(ctx context.Context, query string, args ...interface{}) ([]domain.Lead, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return leads, nil
}

func (r *Repository) attachProducts(ctx context.Context, leads []domain.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(leads))
	for i, l := range leads {
		ids[i] = l.ID
	}
	products, err := r.productIDsFor(ctx, ids)
	if err != nil {
		return err
	}
	for i := range leads {
		leads[i].ProductIDs = products[leads[i].ID]
	}
	return nil
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	// The scope predicate is always the first filter
	scopeClause, args := params.Scope.LeadSQL(1)
	whereClauses := []string{scopeClause}
	argIdx := 1 + len(args)

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Status != nil {
		addEquals("l.status", string(*params.Status))
	}
	if params.AssignedToID != nil {
		addEquals("l.assigned_to_id", *params.AssignedToID)
	}
	if params.SalesGroupID != nil {
		addEquals("l.sales_group_id", *params.SalesGroupID)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.company ILIKE $%d OR l.first_name ILIKE $%d OR l.last_name ILIKE $%d OR l.email ILIKE $%d OR l.phone ILIKE $%d OR l.city ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+escapeLike(search)+"%")
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func mapLeadSortColumn(sortBy string) string {
	switch sortBy {
	case "company":
		return "l.company"
	case "firstName":
		return "l.first_name"
	case "lastName":
		return "l.last_name"
	case "status":
		return "l.status"
	case "expiryDate":
		return "l.expiry_date"
	case "city":
		return "l.city"
	default:
		return "l.created_date"
	}
}
