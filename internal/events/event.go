// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"salesrep_portal/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published after a lead registration commits.
type LeadCreated struct {
	BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	Company      string     `json:"company"`
	CreatedByID  uuid.UUID  `json:"createdById"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	ExpiryDate   time.Time  `json:"expiryDate"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadAssigned is published when a lead gets a new assignee, on create or reassignment.
type LeadAssigned struct {
	BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	Company      string     `json:"company"`
	PreviousID   *uuid.UUID `json:"previousAssigneeId,omitempty"`
	AssigneeID   uuid.UUID  `json:"assigneeId"`
	AssignedByID uuid.UUID  `json:"assignedById"`
}

func (e LeadAssigned) EventName() string { return "leads.lead.assigned" }

// LeadConverted is published after the conversion transaction commits.
type LeadConverted struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	CustomerID    uuid.UUID `json:"customerId"`
	ConvertedByID uuid.UUID `json:"convertedById"`
	DaysToConvert int       `json:"daysToConvert"`
}

func (e LeadConverted) EventName() string { return "leads.lead.converted" }

// LeadExtended is published after the one-time extension is granted.
type LeadExtended struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	GrantedByID    uuid.UUID `json:"grantedById"`
	PreviousExpiry time.Time `json:"previousExpiry"`
	NewExpiry      time.Time `json:"newExpiry"`
	Reopened       bool      `json:"reopened"`
}

func (e LeadExtended) EventName() string { return "leads.lead.extended" }

// LeadExpired is published by the sweeper for every lead it expired.
type LeadExpired struct {
	BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	Company      string     `json:"company"`
	ExpiryDate   time.Time  `json:"expiryDate"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	SalesOrgID   *uuid.UUID `json:"salesOrgId,omitempty"`
}

func (e LeadExpired) EventName() string { return "leads.lead.expired" }

// LeadExpiringSoon is published by the expiring-soon scan.
type LeadExpiringSoon struct {
	BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	Company      string     `json:"company"`
	ExpiryDate   time.Time  `json:"expiryDate"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
}

func (e LeadExpiringSoon) EventName() string { return "leads.lead.expiring_soon" }

// =============================================================================
// Customer Domain Events
// =============================================================================

// CustomerDeleted is published after a customer is soft-deleted and its lead reactivated as Lost.
type CustomerDeleted struct {
	BaseEvent
	CustomerID     uuid.UUID  `json:"customerId"`
	OriginalLeadID *uuid.UUID `json:"originalLeadId,omitempty"`
	DeletedByID    uuid.UUID  `json:"deletedById"`
}

func (e CustomerDeleted) EventName() string { return "customers.customer.deleted" }

// =============================================================================
// Settings Domain Events
// =============================================================================

// SettingsUpdated is published after an administrator changes the system settings.
type SettingsUpdated struct {
	BaseEvent
	UpdatedByID uuid.UUID `json:"updatedById"`
}

func (e SettingsUpdated) EventName() string { return "settings.updated" }
