package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

type User struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	Role         scoping.Role
	SalesGroupID *uuid.UUID
	SalesOrgID   *uuid.UUID
	IsActive     bool
	CreatedAt    time.Time
}

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

const userColumns = `id, email, full_name, role, sales_group_id, sales_org_id, is_active, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &role, &u.SalesGroupID, &u.SalesOrgID, &u.IsActive, &u.CreatedAt)
	u.Role = scoping.Role(role)
	return u, err
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// ListUsers returns active users placed within the predicate. The predicate
// is interpreted over users: by group, by org, or the user alone.
func (r *Repository) ListUsers(ctx context.Context, scope scoping.Predicate) ([]User, error) {
	where, args := userScopeSQL(scope)
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_active AND `+where+` ORDER BY full_name, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func userScopeSQL(p scoping.Predicate) (string, []interface{}) {
	switch p.Kind {
	case scoping.MatchAll:
		return "TRUE", nil
	case scoping.ByGroup:
		return "sales_group_id = $1", []interface{}{p.GroupID}
	case scoping.ByAssigneeOrg:
		return "sales_org_id = $1", []interface{}{p.OrgID}
	case scoping.ByAssignee, scoping.ByRepOrConverter:
		return "id = $1", []interface{}{p.UserID}
	default:
		return "FALSE", nil
	}
}

// The upserts below key on natural keys so a seed file can be re-applied and
// reference records by name. Each returns the stored id.

func (r *Repository) UpsertSalesGroup(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.q.QueryRow(ctx, `
		INSERT INTO sales_groups (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert sales group %s: %w", name, err)
	}
	return id, nil
}

func (r *Repository) UpsertSalesOrg(ctx context.Context, groupID uuid.UUID, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.q.QueryRow(ctx, `
		INSERT INTO sales_orgs (sales_group_id, name) VALUES ($1, $2)
		ON CONFLICT (sales_group_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, groupID, name).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert sales org %s: %w", name, err)
	}
	return id, nil
}

func (r *Repository) UpsertUser(ctx context.Context, u User) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.q.QueryRow(ctx, `
		INSERT INTO users (email, full_name, role, sales_group_id, sales_org_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			role = EXCLUDED.role,
			sales_group_id = EXCLUDED.sales_group_id,
			sales_org_id = EXCLUDED.sales_org_id,
			is_active = EXCLUDED.is_active
		RETURNING id
	`, strings.ToLower(strings.TrimSpace(u.Email)), u.FullName, string(u.Role), u.SalesGroupID, u.SalesOrgID, u.IsActive).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert user %s: %w", u.Email, err)
	}
	return id, nil
}

func (r *Repository) UpsertProduct(ctx context.Context, name string, active bool) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.q.QueryRow(ctx, `
		INSERT INTO products (name, is_active) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET is_active = EXCLUDED.is_active
		RETURNING id
	`, name, active).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert product %s: %w", name, err)
	}
	return id, nil
}
