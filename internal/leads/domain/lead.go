// Package domain provides core business rules for the leads bounded context:
// the lead status lifecycle, the field-level edit filter, the one-time
// extension and the conversion preconditions. It has no persistence.
package domain

import (
	"time"

	"salesrep_portal/internal/scoping"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a lead.
type Status string

const (
	StatusNew         Status = "New"
	StatusContacted   Status = "Contacted"
	StatusQualified   Status = "Qualified"
	StatusProposal    Status = "Proposal"
	StatusNegotiation Status = "Negotiation"
	StatusConverted   Status = "Converted"
	StatusLost        Status = "Lost"
	StatusExpired     Status = "Expired"
)

var allStatuses = []Status{
	StatusNew, StatusContacted, StatusQualified, StatusProposal,
	StatusNegotiation, StatusConverted, StatusLost, StatusExpired,
}

// Statuses returns every known status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s ends the lead's working life.
func (s Status) IsTerminal() bool {
	return s == StatusConverted || s == StatusLost
}

// IsOpen reports whether a lead in s is still being worked.
func (s Status) IsOpen() bool {
	return s.Valid() && !s.IsTerminal() && s != StatusExpired
}

// Lead is a prospective sale.
type Lead struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Address   string
	City      string
	State     string
	Zip       string
	Notes     string
	Status    Status

	AssignedToID *uuid.UUID
	SalesGroupID *uuid.UUID
	// SalesOrgID mirrors the assignee's org at the time of the last assignment.
	SalesOrgID *uuid.UUID
	// AssigneeSalesOrgID is read through the users table and drives scoping.
	AssigneeSalesOrgID *uuid.UUID

	CreatedByID          uuid.UUID
	CreatedDate          time.Time
	ExpiryDate           time.Time
	ConvertedDate        *time.Time
	IsExpired            bool
	IsExtended           bool
	ExtensionGrantedDate *time.Time
	ExtensionGrantedBy   *uuid.UUID
	UpdatedAt            time.Time

	ProductIDs []uuid.UUID
}

// Ownership returns the attributes the scoping resolver evaluates.
func (l Lead) Ownership() scoping.LeadOwnership {
	return scoping.LeadOwnership{
		SalesGroupID:       l.SalesGroupID,
		AssignedToID:       l.AssignedToID,
		AssigneeSalesOrgID: l.AssigneeSalesOrgID,
	}
}

// NewLeadParams are the inputs of a lead registration.
type NewLeadParams struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Company      string
	Address      string
	City         string
	State        string
	Zip          string
	Notes        string
	AssignedToID *uuid.UUID
	SalesGroupID *uuid.UUID
	SalesOrgID   *uuid.UUID
	CreatedByID  uuid.UUID
	ProductIDs   []uuid.UUID
}

// NewLead builds a lead in status New whose expiry is initialExpiryDays from now.
func NewLead(p NewLeadParams, now time.Time, initialExpiryDays int) Lead {
	now = now.UTC()
	return Lead{
		ID:           uuid.New(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		Phone:        p.Phone,
		Company:      p.Company,
		Address:      p.Address,
		City:         p.City,
		State:        p.State,
		Zip:          p.Zip,
		Notes:        p.Notes,
		Status:       StatusNew,
		AssignedToID: p.AssignedToID,
		SalesGroupID: p.SalesGroupID,
		SalesOrgID:   p.SalesOrgID,
		CreatedByID:  p.CreatedByID,
		CreatedDate:  now,
		ExpiryDate:   now.AddDate(0, 0, initialExpiryDays),
		UpdatedAt:    now,
		ProductIDs:   p.ProductIDs,
	}
}

// IsDue reports whether the lead has reached its expiry without being swept yet.
func (l Lead) IsDue(now time.Time) bool {
	return !l.IsExpired && l.Status != StatusConverted && !l.ExpiryDate.After(now)
}

// MarkExpired moves the lead into Expired. Both fields always change together.
func (l *Lead) MarkExpired() {
	l.IsExpired = true
	l.Status = StatusExpired
}

// ExpirySummary describes a lead that expired or is about to, for notification.
type ExpirySummary struct {
	LeadID       uuid.UUID
	Company      string
	ExpiryDate   time.Time
	AssignedToID *uuid.UUID
	SalesOrgID   *uuid.UUID
}

// Product is a catalog entry a lead can be tagged with.
type Product struct {
	ID       uuid.UUID
	Name     string
	IsActive bool
}
