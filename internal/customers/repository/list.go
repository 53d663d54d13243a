package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salesrep_portal/internal/leads/duplicates"
	"salesrep_portal/internal/scoping"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type ListParams struct {
	Scope        scoping.Predicate
	Search       string
	SalesRepID   *uuid.UUID
	SalesGroupID *uuid.UUID
	Offset       int
	Limit        int
	SortBy       string
	SortOrder    string
}

// List returns one page of scoped, non-deleted customers and the total count.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Customer, int, error) {
	whereClause, args, argIdx := buildCustomerListWhere(params)

	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	pageArgs := append(append([]interface{}{}, args...), params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM customers c
		%s
		WHERE %s
		ORDER BY %s %s, c.id
		LIMIT $%d OFFSET $%d
	`, customerColumns, scoping.CustomerSalesRepJoin, whereClause, mapCustomerSortColumn(params.SortBy), sortOrder, argIdx, argIdx+1)
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM customers c %s WHERE %s", scoping.CustomerSalesRepJoin, whereClause)

	var (
		total     int
		customers []Customer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.q.QueryRow(gctx, countQuery, args...).Scan(&total)
	})
	g.Go(func() error {
		rows, err := r.q.Query(gctx, query, pageArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		customers = make([]Customer, 0)
		for rows.Next() {
			c, err := scanCustomer(rows)
			if err != nil {
				return err
			}
			customers = append(customers, c)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// HasConversionSince implements duplicates.CustomerStore. Soft-deleted
// customers no longer hold a cooling period.
func (r *Repository) HasConversionSince(ctx context.Context, q duplicates.Query, since time.Time) (bool, error) {
	query, args := buildCoolingQuery(q, since)
	var exists bool
	err := r.q.QueryRow(ctx, query, args...).Scan(&exists)
	return exists, err
}

func buildCoolingQuery(q duplicates.Query, since time.Time) (string, []interface{}) {
	matchClause, args, _ := duplicates.MatchSQL("c", q, 2)
	args = append([]interface{}{since}, args...)
	return `SELECT EXISTS (
		SELECT 1 FROM customers c
		WHERE NOT c.is_deleted AND c.conversion_date >= $1 AND ` + matchClause + `
	)`, args
}

func buildCustomerListWhere(params ListParams) (string, []interface{}, int) {
	scopeClause, args := params.Scope.CustomerSQL(1)
	whereClauses := []string{scopeClause, "NOT c.is_deleted"}
	argIdx := 1 + len(args)

	if params.SalesRepID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.sales_rep_id = $%d", argIdx))
		args = append(args, *params.SalesRepID)
		argIdx++
	}
	if params.SalesGroupID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.sales_group_id = $%d", argIdx))
		args = append(args, *params.SalesGroupID)
		argIdx++
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(c.company ILIKE $%d OR c.first_name ILIKE $%d OR c.last_name ILIKE $%d OR c.email ILIKE $%d OR c.city ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func mapCustomerSortColumn(sortBy string) string {
	switch sortBy {
	case "company":
		return "c.company"
	case "lastName":
		return "c.last_name"
	case "daysToConvert":
		return "c.days_to_convert"
	default:
		return "c.conversion_date"
	}
}
