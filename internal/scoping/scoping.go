// Package scoping decides which leads and customers an actor may see or act on.
// Roles form a closed set; hierarchy exists only in the breadth of each role's
// predicate, never in code inheritance. Every resolution fails closed.
package scoping

import (
	"github.com/google/uuid"
)

// Role is the actor's position in the sales hierarchy.
type Role string

const (
	RoleOrganizationAdmin Role = "OrganizationAdmin"
	RoleGroupAdmin        Role = "GroupAdmin"
	RoleSalesOrgAdmin     Role = "SalesOrgAdmin"
	RoleSalesRep          Role = "SalesRep"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOrganizationAdmin, RoleGroupAdmin, RoleSalesOrgAdmin, RoleSalesRep:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether r administers a scope larger than the actor's own records.
func (r Role) IsAdmin() bool {
	return r == RoleOrganizationAdmin || r == RoleGroupAdmin || r == RoleSalesOrgAdmin
}

// Actor is the resolved caller of an operation.
type Actor struct {
	UserID       uuid.UUID
	Role         Role
	SalesGroupID *uuid.UUID
	SalesOrgID   *uuid.UUID
}

// Kind enumerates the shapes a scope predicate can take.
type Kind int

const (
	// MatchNone is the zero value so an unset predicate hides everything.
	MatchNone Kind = iota
	MatchAll
	ByGroup
	ByAssigneeOrg
	ByAssignee
	ByRepOrConverter
)

// Predicate is a role-derived filter over leads or customers.
type Predicate struct {
	Kind    Kind
	GroupID uuid.UUID
	OrgID   uuid.UUID
	UserID  uuid.UUID
}

// LeadOwnership carries the lead attributes that scoping looks at.
// AssigneeSalesOrgID is the org of the assigned user, not the lead's own column.
type LeadOwnership struct {
	SalesGroupID       *uuid.UUID
	AssignedToID       *uuid.UUID
	AssigneeSalesOrgID *uuid.UUID
}

// CustomerOwnership carries the customer attributes that scoping looks at.
// SalesRepSalesOrgID is the org of the customer's current sales rep.
type CustomerOwnership struct {
	SalesGroupID       *uuid.UUID
	ConvertedByID      uuid.UUID
	SalesRepID         *uuid.UUID
	SalesRepSalesOrgID *uuid.UUID
}

// ResolveLeadScope returns the predicate selecting the leads actor may see.
func ResolveLeadScope(actor Actor) Predicate {
	switch actor.Role {
	case RoleOrganizationAdmin:
		return Predicate{Kind: MatchAll}
	case RoleGroupAdmin:
		if actor.SalesGroupID == nil {
			return Predicate{Kind: MatchNone}
		}
		return Predicate{Kind: ByGroup, GroupID: *actor.SalesGroupID}
	case RoleSalesOrgAdmin:
		if actor.SalesOrgID == nil {
			return Predicate{Kind: MatchNone}
		}
		return Predicate{Kind: ByAssigneeOrg, OrgID: *actor.SalesOrgID}
	case RoleSalesRep:
		if actor.UserID == uuid.Nil {
			return Predicate{Kind: MatchNone}
		}
		return Predicate{Kind: ByAssignee, UserID: actor.UserID}
	default:
		return Predicate{Kind: MatchNone}
	}
}

// ResolveCustomerScope returns the predicate selecting the customers actor may see.
// It differs from the lead scope only for sales reps, who also keep customers
// they converted after those customers were reassigned.
func ResolveCustomerScope(actor Actor) Predicate {
	p := ResolveLeadScope(actor)
	if p.Kind == ByAssignee {
		p.Kind = ByRepOrConverter
	}
	return p
}

// MatchesLead evaluates the predicate against a single lead.
func (p Predicate) MatchesLead(l LeadOwnership) bool {
	switch p.Kind {
	case MatchAll:
		return true
	case ByGroup:
		return equalID(l.SalesGroupID, p.GroupID)
	case ByAssigneeOrg:
		return equalID(l.AssigneeSalesOrgID, p.OrgID)
	case ByAssignee, ByRepOrConverter:
		return equalID(l.AssignedToID, p.UserID)
	default:
		return false
	}
}

// MatchesCustomer evaluates the predicate against a single customer.
func (p Predicate) MatchesCustomer(c CustomerOwnership) bool {
	switch p.Kind {
	case MatchAll:
		return true
	case ByGroup:
		return equalID(c.SalesGroupID, p.GroupID)
	case ByAssigneeOrg:
		return equalID(c.SalesRepSalesOrgID, p.OrgID)
	case ByAssignee:
		return equalID(c.SalesRepID, p.UserID)
	case ByRepOrConverter:
		return c.ConvertedByID == p.UserID || equalID(c.SalesRepID, p.UserID)
	default:
		return false
	}
}

// IsLeadAccessible reports whether actor may see the lead.
func IsLeadAccessible(actor Actor, l LeadOwnership) bool {
	return ResolveLeadScope(actor).MatchesLead(l)
}

// IsCustomerAccessible reports whether actor may see the customer.
func IsCustomerAccessible(actor Actor, c CustomerOwnership) bool {
	return ResolveCustomerScope(actor).MatchesCustomer(c)
}

func equalID(value *uuid.UUID, want uuid.UUID) bool {
	return value != nil && *value == want
}
