// Package duplicates decides whether a lead registration or edit collides
// with live leads or with recently converted customers.
package duplicates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salesrep_portal/internal/leads/domain"

	"github.com/google/uuid"
)

const zipLength = 5

// Registration is the identifying part of a lead being registered or edited.
type Registration struct {
	Company string
	Address string
	City    string
	State   string
	Zip     string
}

// Query is a normalized conflict search. An empty Company disables the
// company predicate; an empty Address disables the address predicate, and
// City, State and Zip only narrow the address predicate when non-empty.
type Query struct {
	Company       string
	Address       string
	City          string
	State         string
	Zip           string
	ExcludeLeadID *uuid.UUID
}

// IsEmpty reports whether the query has no predicate and can match nothing.
func (q Query) IsEmpty() bool {
	return q.Company == "" && q.Address == ""
}

// NormalizeText trims and case-folds a company or address component.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeZip trims, case-folds and truncates to the first five characters.
// Truncation counts runes so the result stays valid UTF-8.
func NormalizeZip(s string) string {
	s = NormalizeText(s)
	if r := []rune(s); len(r) > zipLength {
		s = string(r[:zipLength])
	}
	return s
}

// NewQuery builds the conflict query for a full registration.
func NewQuery(r Registration, exclude *uuid.UUID) Query {
	return Query{
		Company:       NormalizeText(r.Company),
		Address:       NormalizeText(r.Address),
		City:          NormalizeText(r.City),
		State:         NormalizeText(r.State),
		Zip:           NormalizeZip(r.Zip),
		ExcludeLeadID: exclude,
	}
}

// Matches evaluates q against raw record values with the same semantics as
// the SQL predicates in the lead and customer repositories.
func (q Query) Matches(r Registration) bool {
	if q.Company != "" && NormalizeText(r.Company) == q.Company {
		return true
	}
	if q.Address == "" || NormalizeText(r.Address) != q.Address {
		return false
	}
	if q.City != "" && NormalizeText(r.City) != q.City {
		return false
	}
	if q.State != "" && NormalizeText(r.State) != q.State {
		return false
	}
	if q.Zip != "" && NormalizeZip(r.Zip) != q.Zip {
		return false
	}
	return true
}

// Conflict is an active lead matching a query.
type Conflict struct {
	LeadID       uuid.UUID
	Status       domain.Status
	SalesGroupID *uuid.UUID
}

// LeadStore finds active leads (not expired, not converted) matching a query.
type LeadStore interface {
	FindActiveConflicts(ctx context.Context, q Query) ([]Conflict, error)
}

// CustomerStore answers whether a matching customer was converted recently.
type CustomerStore interface {
	HasConversionSince(ctx context.Context, q Query, since time.Time) (bool, error)
}

// CoolingPeriod returns the current cooling period in days.
type CoolingPeriod func(ctx context.Context) (int, error)

// Decision is the outcome of a duplicate check. Err is a domain rule error
// when Allowed is false.
type Decision struct {
	Allowed        bool
	Err            error
	ConflictLeadID *uuid.UUID
}

func allow() Decision { return Decision{Allowed: true} }

func block(err error, leadID *uuid.UUID) Decision {
	return Decision{Err: err, ConflictLeadID: leadID}
}

// Checker applies the duplicate and cooling-period rules.
type Checker struct {
	leads     LeadStore
	customers CustomerStore
	cooling   CoolingPeriod
	now       func() time.Time
}

// NewChecker creates a checker. A nil clock defaults to time.Now.
func NewChecker(leads LeadStore, customers CustomerStore, cooling CoolingPeriod, now func() time.Time) *Checker {
	if now == nil {
		now = time.Now
	}
	return &Checker{leads: leads, customers: customers, cooling: cooling, now: now}
}

// Check decides a new registration for salesGroupID.
//
// Any conflicting lead that is not Lost blocks. When every conflict is Lost,
// registration is blocked only if one of them belongs to the same sales group.
// Without conflicts, a matching customer converted within the cooling period
// blocks regardless of group.
func (c *Checker) Check(ctx context.Context, r Registration, salesGroupID *uuid.UUID, exclude *uuid.UUID) (Decision, error) {
	q := NewQuery(r, exclude)
	if q.IsEmpty() {
		return allow(), nil
	}

	conflicts, err := c.leads.FindActiveConflicts(ctx, q)
	if err != nil {
		return Decision{}, fmt.Errorf("find duplicate leads: %w", err)
	}

	if len(conflicts) > 0 {
		for _, conflict := range conflicts {
			if conflict.Status != domain.StatusLost {
				return block(domain.ErrDuplicateLead, idRef(conflict.LeadID)), nil
			}
		}
		for _, conflict := range conflicts {
			if sameGroup(conflict.SalesGroupID, salesGroupID) {
				return block(domain.ErrLostLeadInGroup, idRef(conflict.LeadID)), nil
			}
		}
		return allow(), nil
	}

	return c.checkCoolingPeriod(ctx, q)
}

// CheckEdit decides an edit of an existing lead. Only the changed parts are
// queried: companyChanged enables the company predicate and addressChanged
// the address predicate, so unchanged values never collide with themselves
// or their old duplicates. There is no group override; any active conflict
// blocks.
func (c *Checker) CheckEdit(ctx context.Context, r Registration, companyChanged, addressChanged bool, leadID uuid.UUID) (Decision, error) {
	q := NewQuery(r, &leadID)
	if !companyChanged {
		q.Company = ""
	}
	if !addressChanged {
		q.Address, q.City, q.State, q.Zip = "", "", "", ""
	}
	if q.IsEmpty() {
		return allow(), nil
	}

	conflicts, err := c.leads.FindActiveConflicts(ctx, q)
	if err != nil {
		return Decision{}, fmt.Errorf("find duplicate leads: %w", err)
	}
	if len(conflicts) > 0 {
		return block(domain.ErrDuplicateLead, idRef(conflicts[0].LeadID)), nil
	}

	return c.checkCoolingPeriod(ctx, q)
}

// CanRegister is the boolean form of Check.
func (c *Checker) CanRegister(ctx context.Context, r Registration, salesGroupID *uuid.UUID, exclude *uuid.UUID) (bool, error) {
	d, err := c.Check(ctx, r, salesGroupID, exclude)
	return d.Allowed, err
}

// CanRegisterLead is the boolean form of CheckEdit.
func (c *Checker) CanRegisterLead(ctx context.Context, r Registration, companyChanged, addressChanged bool, leadID uuid.UUID) (bool, error) {
	d, err := c.CheckEdit(ctx, r, companyChanged, addressChanged, leadID)
	return d.Allowed, err
}

func (c *Checker) checkCoolingPeriod(ctx context.Context, q Query) (Decision, error) {
	days, err := c.cooling(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("read cooling period: %w", err)
	}
	if days <= 0 {
		return allow(), nil
	}

	since := c.now().UTC().AddDate(0, 0, -days)
	recent, err := c.customers.HasConversionSince(ctx, q, since)
	if err != nil {
		return Decision{}, fmt.Errorf("check recent conversions: %w", err)
	}
	if recent {
		return block(domain.ErrCoolingPeriod, nil), nil
	}
	return allow(), nil
}

func sameGroup(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

func idRef(id uuid.UUID) *uuid.UUID { return &id }
