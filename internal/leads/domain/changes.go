package domain

import (
	"time"

	"salesrep_portal/internal/scoping"

	"github.com/google/uuid"
)

// Field names reported when an edit is silently reverted.
const (
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldCompany      = "company"
	FieldAddress      = "address"
	FieldCity         = "city"
	FieldState        = "state"
	FieldZip          = "zip"
	FieldNotes        = "notes"
	FieldStatus       = "status"
	FieldAssignedToID = "assignedToId"
	FieldSalesGroupID = "salesGroupId"
	FieldSalesOrgID   = "salesOrgId"
	FieldProducts     = "productIds"
)

// Changes is a partial update of a lead. Nil fields are left untouched.
// ProductIDs replaces the full tag set when non-nil.
type Changes struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Phone        *string
	Company      *string
	Address      *string
	City         *string
	State        *string
	Zip          *string
	Notes        *string
	Status       *Status
	AssignedToID *uuid.UUID
	SalesGroupID *uuid.UUID
	// SalesOrgID is derived from the new assignee by the caller, never taken from input.
	SalesOrgID *uuid.UUID
	ProductIDs []uuid.UUID
}

// Diff returns the subset of c that actually differs from current.
func (c Changes) Diff(current Lead) Changes {
	out := Changes{
		FirstName:    changedString(c.FirstName, current.FirstName),
		LastName:     changedString(c.LastName, current.LastName),
		Email:        changedString(c.Email, current.Email),
		Phone:        changedString(c.Phone, current.Phone),
		Company:      changedString(c.Company, current.Company),
		Address:      changedString(c.Address, current.Address),
		City:         changedString(c.City, current.City),
		State:        changedString(c.State, current.State),
		Zip:          changedString(c.Zip, current.Zip),
		Notes:        changedString(c.Notes, current.Notes),
		AssignedToID: changedID(c.AssignedToID, current.AssignedToID),
		SalesGroupID: changedID(c.SalesGroupID, current.SalesGroupID),
		SalesOrgID:   changedID(c.SalesOrgID, current.SalesOrgID),
	}
	if c.Status != nil && *c.Status != current.Status {
		s := *c.Status
		out.Status = &s
	}
	if c.ProductIDs != nil && !sameIDSet(c.ProductIDs, current.ProductIDs) {
		out.ProductIDs = append([]uuid.UUID{}, c.ProductIDs...)
	}
	return out
}

// IsEmpty reports whether c changes nothing.
func (c Changes) IsEmpty() bool {
	return !c.HasDescriptive() && c.Status == nil && !c.HasAssignment()
}

// HasDescriptive reports whether c touches contact, company, address, notes or products.
func (c Changes) HasDescriptive() bool {
	return c.FirstName != nil || c.LastName != nil || c.Email != nil || c.Phone != nil ||
		c.Company != nil || c.AddressChanged() || c.Notes != nil || c.ProductIDs != nil
}

// HasAssignment reports whether c moves the lead to another owner or unit.
func (c Changes) HasAssignment() bool {
	return c.AssignedToID != nil || c.SalesGroupID != nil || c.SalesOrgID != nil
}

// AddressChanged reports whether any part of the postal address changes.
func (c Changes) AddressChanged() bool {
	return c.Address != nil || c.City != nil || c.State != nil || c.Zip != nil
}

func (c *Changes) revertContact() []string {
	var fields []string
	revert := func(field string, value **string) {
		if *value != nil {
			*value = nil
			fields = append(fields, field)
		}
	}
	revert(FieldFirstName, &c.FirstName)
	revert(FieldLastName, &c.LastName)
	revert(FieldEmail, &c.Email)
	revert(FieldPhone, &c.Phone)
	revert(FieldAddress, &c.Address)
	revert(FieldCity, &c.City)
	revert(FieldState, &c.State)
	revert(FieldZip, &c.Zip)
	revert(FieldNotes, &c.Notes)
	if c.ProductIDs != nil {
		c.ProductIDs = nil
		fields = append(fields, FieldProducts)
	}
	return fields
}

func (c *Changes) revertCompany() []string {
	if c.Company == nil {
		return nil
	}
	c.Company = nil
	return []string{FieldCompany}
}

func (c *Changes) revertStatus() []string {
	if c.Status == nil {
		return nil
	}
	c.Status = nil
	return []string{FieldStatus}
}

func (c *Changes) revertAssignment() []string {
	var fields []string
	revert := func(field string, value **uuid.UUID) {
		if *value != nil {
			*value = nil
			fields = append(fields, field)
		}
	}
	revert(FieldAssignedToID, &c.AssignedToID)
	revert(FieldSalesGroupID, &c.SalesGroupID)
	revert(FieldSalesOrgID, &c.SalesOrgID)
	return fields
}

// Sanitized is a change-set after the field-level authorization filter.
type Sanitized struct {
	Changes  Changes
	Reverted []string
}

// SanitizeChanges drops every field the actor's role may not change and
// reports which submitted fields were reverted. Unauthorized fields are
// ignored rather than rejected.
//
//	OrganizationAdmin  everything
//	GroupAdmin         assignee only; group stays put
//	SalesOrgAdmin      assignee only, and only to users inside the admin's org
//	SalesRep           contact, address, notes and products; not company, status or assignment
//	anything else      nothing
func SanitizeChanges(actor scoping.Actor, current Lead, submitted Changes) Sanitized {
	c := submitted.Diff(current)
	var reverted []string

	switch actor.Role {
	case scoping.RoleOrganizationAdmin:
	case scoping.RoleGroupAdmin, scoping.RoleSalesOrgAdmin:
		reverted = append(reverted, c.revertContact()...)
		reverted = append(reverted, c.revertCompany()...)
		reverted = append(reverted, c.revertStatus()...)
		if c.SalesGroupID != nil {
			c.SalesGroupID = nil
			reverted = append(reverted, FieldSalesGroupID)
		}
		if actor.Role == scoping.RoleSalesOrgAdmin && c.SalesOrgID != nil &&
			(actor.SalesOrgID == nil || *c.SalesOrgID != *actor.SalesOrgID) {
			reverted = append(reverted, c.revertAssignment()...)
		}
	case scoping.RoleSalesRep:
		reverted = append(reverted, c.revertCompany()...)
		reverted = append(reverted, c.revertStatus()...)
		reverted = append(reverted, c.revertAssignment()...)
	default:
		reverted = append(reverted, c.revertContact()...)
		reverted = append(reverted, c.revertCompany()...)
		reverted = append(reverted, c.revertStatus()...)
		reverted = append(reverted, c.revertAssignment()...)
	}

	return Sanitized{Changes: c, Reverted: reverted}
}

// CheckEditable refuses any edit of converted or expired leads, including
// leads past their expiry at now that the sweep has not reached yet. Expired
// leads must be extended first.
func CheckEditable(current Lead, now time.Time) error {
	switch {
	case current.Status == StatusConverted:
		return ErrLeadConverted
	case current.IsExpired || current.Status == StatusExpired || current.IsDue(now):
		return ErrLeadExpired
	}
	return nil
}

// ValidateTransition applies the lifecycle rules to an already sanitized
// change-set. A lost lead only accepts a move to another sales group, which
// may carry a new assignee and, from an organization admin, a reopened status.
func ValidateTransition(current Lead, c Changes, now time.Time) error {
	if err := CheckEditable(current, now); err != nil {
		return err
	}
	if c.Status != nil && (*c.Status == StatusConverted || *c.Status == StatusExpired) {
		return ErrStatusNotEditable
	}
	if current.Status != StatusLost {
		return nil
	}

	if c.HasDescriptive() {
		return ErrLeadLost
	}
	crossGroup := c.SalesGroupID != nil
	if c.AssignedToID != nil && !crossGroup {
		return ErrLostSameGroup
	}
	if c.Status != nil && !crossGroup {
		return ErrLostReopenInGroup
	}
	return nil
}

// Apply writes c onto the lead.
func (l *Lead) Apply(c Changes) {
	assignString(&l.FirstName, c.FirstName)
	assignString(&l.LastName, c.LastName)
	assignString(&l.Email, c.Email)
	assignString(&l.Phone, c.Phone)
	assignString(&l.Company, c.Company)
	assignString(&l.Address, c.Address)
	assignString(&l.City, c.City)
	assignString(&l.State, c.State)
	assignString(&l.Zip, c.Zip)
	assignString(&l.Notes, c.Notes)
	if c.Status != nil {
		l.Status = *c.Status
	}
	if c.AssignedToID != nil {
		id := *c.AssignedToID
		l.AssignedToID = &id
	}
	if c.SalesGroupID != nil {
		id := *c.SalesGroupID
		l.SalesGroupID = &id
	}
	if c.SalesOrgID != nil {
		id := *c.SalesOrgID
		l.SalesOrgID = &id
		l.AssigneeSalesOrgID = &id
	}
	if c.ProductIDs != nil {
		l.ProductIDs = append([]uuid.UUID{}, c.ProductIDs...)
	}
}

func changedString(next *string, current string) *string {
	if next == nil || *next == current {
		return nil
	}
	v := *next
	return &v
}

func changedID(next *uuid.UUID, current *uuid.UUID) *uuid.UUID {
	if next == nil {
		return nil
	}
	if current != nil && *current == *next {
		return nil
	}
	v := *next
	return &v
}

func assignString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}

func sameIDSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[uuid.UUID]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}
