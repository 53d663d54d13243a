package repository

import (
	"strings"
	"testing"
	"time"

	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/leads/duplicates"
	"salesrep_portal/internal/scoping"

	"github.com/google/uuid"
)

func TestLeadListQueryStartsWithScopePredicate(t *testing.T) {
	org := uuid.New()
	status := domain.StatusQualified
	where, args, next := buildLeadListWhere(ListParams{
		Scope:  scoping.Predicate{Kind: scoping.ByAssigneeOrg, OrgID: org},
		Status: &status,
		Search: "acme",
	})

	if !strings.HasPrefix(where, "au.sales_org_id = $1") {
		t.Fatalf("expected scope predicate first, got %q", where)
	}
	if !strings.Contains(where, "l.status = $2") {
		t.Fatalf("expected status filter, got %q", where)
	}
	if !strings.Contains(where, "l.company ILIKE $3") {
		t.Fatalf("expected search filter, got %q", where)
	}
	if len(args) != 3 || next != 4 {
		t.Fatalf("expected 3 args and next index 4, got %d and %d", len(args), next)
	}
}

func TestLeadListQueryFailsClosedForUnknownRole(t *testing.T) {
	pred := scoping.ResolveLeadScope(scoping.Actor{UserID: uuid.New(), Role: scoping.Role("Viewer")})
	where, args, _ := buildLeadListWhere(ListParams{Scope: pred})

	if where != "FALSE" || len(args) != 0 {
		t.Fatalf("unknown roles must match nothing, got %q %v", where, args)
	}
}

func TestSearchEscapesLikeWildcards(t *testing.T) {
	_, args, _ := buildLeadListWhere(ListParams{Scope: scoping.Predicate{Kind: scoping.MatchAll}, Search: "50%_off"})
	if got := args[len(args)-1]; got != `%50\%\_off%` {
		t.Fatalf("expected escaped pattern, got %v", got)
	}
}

func TestConflictQueryOnlyConsidersActiveLeads(t *testing.T) {
	exclude := uuid.New()
	query, args := buildConflictQuery(duplicates.NewQuery(duplicates.Registration{Company: "Acme"}, &exclude))
	lowered := strings.ToLower(query)

	requiredFragments := []string{
		"not l.is_expired",
		"l.status <> 'converted'",
		"lower(btrim(l.company)) = $1",
		"l.id <> $2",
	}
	for _, fragment := range requiredFragments {
		if !strings.Contains(lowered, fragment) {
			t.Fatalf("expected conflict query fragment %q to be present", fragment)
		}
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
}

func TestExpireIfDueRechecksPredicateAtWriteTime(t *testing.T) {
	query := strings.ToLower(expireIfDueQuery)

	requiredFragments := []string{
		"set is_expired = true, status = 'expired'",
		"where l.id = $2",
		"l.expiry_date <= $1",
		"not l.is_expired",
		"l.status <> 'converted'",
	}
	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected conditional update fragment %q to be present", fragment)
		}
	}
}

func TestExpiringSoonWindowExcludesAlreadyDueLeads(t *testing.T) {
	now := time.Now()
	query, args := buildExpiringSoonQuery(scoping.Predicate{Kind: scoping.MatchAll}, now, now.Add(72*time.Hour))
	lowered := strings.ToLower(query)

	if !strings.Contains(lowered, "l.expiry_date > $1") || !strings.Contains(lowered, "l.expiry_date <= $2") {
		t.Fatalf("expected half-open window (now, until], got %q", query)
	}
	if !strings.Contains(lowered, "not in ('converted', 'lost', 'expired')") {
		t.Fatal("expected terminal statuses to be excluded")
	}
	if len(args) != 2 {
		t.Fatalf("expected only window args for an unrestricted scope, got %d", len(args))
	}
}

func TestGetForUpdateLocksOnlyTheLeadRow(t *testing.T) {
	if !strings.HasSuffix(strings.TrimSpace(selectLeadForUpdateQuery), "FOR UPDATE OF l") {
		t.Fatal("row lock must target the lead table")
	}
}
