package transport

import (
	"time"

	"salesrep_portal/internal/leads/domain"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	FirstName    string      `json:"firstName" validate:"required,min=1,max=100"`
	LastName     string      `json:"lastName" validate:"required,min=1,max=100"`
	Email        string      `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone        string      `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Company      string      `json:"company" validate:"required,min=1,max=200"`
	Address      string      `json:"address,omitempty" validate:"max=200"`
	City         string      `json:"city,omitempty" validate:"max=100"`
	State        string      `json:"state,omitempty" validate:"omitempty,len=2,alpha"`
	Zip          string      `json:"zip,omitempty" validate:"omitempty,zip"`
	Notes        string      `json:"notes,omitempty" validate:"max=4000"`
	AssignedToID *uuid.UUID  `json:"assignedToId,omitempty"`
	SalesGroupID *uuid.UUID  `json:"salesGroupId,omitempty"`
	ProductIDs   []uuid.UUID `json:"productIds,omitempty" validate:"max=50"`
}

// UpdateLeadRequest is a partial update; omitted fields are left untouched.
type UpdateLeadRequest struct {
	FirstName    *string      `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName     *string      `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email        *string      `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone        *string      `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Company      *string      `json:"company,omitempty" validate:"omitempty,min=1,max=200"`
	Address      *string      `json:"address,omitempty" validate:"omitempty,max=200"`
	City         *string      `json:"city,omitempty" validate:"omitempty,max=100"`
	State        *string      `json:"state,omitempty" validate:"omitempty,len=2,alpha"`
	Zip          *string      `json:"zip,omitempty" validate:"omitempty,zip"`
	Notes        *string      `json:"notes,omitempty" validate:"omitempty,max=4000"`
	Status       *string      `json:"status,omitempty" validate:"omitempty,oneof=New Contacted Qualified Proposal Negotiation Converted Lost Expired"`
	AssignedToID *uuid.UUID   `json:"assignedToId,omitempty"`
	SalesGroupID *uuid.UUID   `json:"salesGroupId,omitempty"`
	ProductIDs   *[]uuid.UUID `json:"productIds,omitempty" validate:"omitempty,max=50"`
}

type ListLeadsRequest struct {
	Status       string `form:"status" validate:"omitempty,oneof=New Contacted Qualified Proposal Negotiation Converted Lost Expired"`
	AssignedToID string `form:"assignedToId" validate:"omitempty,uuid"`
	SalesGroupID string `form:"salesGroupId" validate:"omitempty,uuid"`
	Search       string `form:"search" validate:"max=100"`
	Page         int    `form:"page" validate:"min=1"`
	PageSize     int    `form:"pageSize" validate:"min=1,max=100"`
	SortBy       string `form:"sortBy" validate:"omitempty,oneof=createdDate expiryDate company firstName lastName status city"`
	SortOrder    string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type TypeaheadRequest struct {
	Query string `form:"q" validate:"required,min=2,max=100"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=20"`
}

type DuplicateCheckRequest struct {
	Company       string     `json:"company" validate:"max=200"`
	Address       string     `json:"address" validate:"max=200"`
	City          string     `json:"city" validate:"max=100"`
	State         string     `json:"state" validate:"max=50"`
	Zip           string     `json:"zip" validate:"omitempty,zip"`
	SalesGroupID  *uuid.UUID `json:"salesGroupId,omitempty"`
	ExcludeLeadID *uuid.UUID `json:"excludeLeadId,omitempty"`
}

type ExpiringSoonRequest struct {
	Days int `form:"days" validate:"omitempty,min=1,max=90"`
}

type LeadResponse struct {
	ID                   uuid.UUID   `json:"id"`
	FirstName            string      `json:"firstName"`
	LastName             string      `json:"lastName"`
	Email                string      `json:"email,omitempty"`
	Phone                string      `json:"phone,omitempty"`
	Company              string      `json:"company"`
	Address              string      `json:"address,omitempty"`
	City                 string      `json:"city,omitempty"`
	State                string      `json:"state,omitempty"`
	Zip                  string      `json:"zip,omitempty"`
	Notes                string      `json:"notes,omitempty"`
	Status               string      `json:"status"`
	AssignedToID         *uuid.UUID  `json:"assignedToId,omitempty"`
	SalesGroupID         *uuid.UUID  `json:"salesGroupId,omitempty"`
	SalesOrgID           *uuid.UUID  `json:"salesOrgId,omitempty"`
	CreatedByID          uuid.UUID   `json:"createdById"`
	CreatedDate          time.Time   `json:"createdDate"`
	ExpiryDate           time.Time   `json:"expiryDate"`
	ConvertedDate        *time.Time  `json:"convertedDate,omitempty"`
	IsExpired            bool        `json:"isExpired"`
	IsExtended           bool        `json:"isExtended"`
	ExtensionGrantedDate *time.Time  `json:"extensionGrantedDate,omitempty"`
	ExtensionGrantedBy   *uuid.UUID  `json:"extensionGrantedBy,omitempty"`
	ProductIDs           []uuid.UUID `json:"productIds"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type UpdateLeadResponse struct {
	Lead           LeadResponse `json:"lead"`
	// RevertedFields lists submitted changes the caller's role may not make.
	RevertedFields []string     `json:"revertedFields"`
}

type DuplicateCheckResponse struct {
	Allowed        bool       `json:"allowed"`
	Reason         string     `json:"reason,omitempty"`
	Message        string     `json:"message,omitempty"`
	ConflictLeadID *uuid.UUID `json:"conflictLeadId,omitempty"`
}

type ExtensionResponse struct {
	LeadID         uuid.UUID `json:"leadId"`
	PreviousExpiry time.Time `json:"previousExpiry"`
	NewExpiry      time.Time `json:"newExpiry"`
	Reopened       bool      `json:"reopened"`
}

type ConvertResponse struct {
	LeadID        uuid.UUID `json:"leadId"`
	CustomerID    uuid.UUID `json:"customerId"`
	DaysToConvert int       `json:"daysToConvert"`
}

type DeleteLeadResponse struct {
	LeadID           uuid.UUID `json:"leadId"`
	DocumentsRemoved int       `json:"documentsRemoved"`
}

type ExpiringLeadResponse struct {
	LeadID       uuid.UUID  `json:"leadId"`
	Company      string     `json:"company"`
	ExpiryDate   time.Time  `json:"expiryDate"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	SalesOrgID   *uuid.UUID `json:"salesOrgId,omitempty"`
}

type ExpiringLeadsResponse struct {
	Items []ExpiringLeadResponse `json:"items"`
	Days  int                    `json:"days"`
}

type ProductResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
}

// ToLeadResponse maps a domain lead to its API representation.
func ToLeadResponse(l domain.Lead) LeadResponse {
	products := l.ProductIDs
	if products == nil {
		products = []uuid.UUID{}
	}
	return LeadResponse{
		ID:                   l.ID,
		FirstName:            l.FirstName,
		LastName:             l.LastName,
		Email:                l.Email,
		Phone:                l.Phone,
		Company:              l.Company,
		Address:              l.Address,
		City:                 l.City,
		State:                l.State,
		Zip:                  l.Zip,
		Notes:                l.Notes,
		Status:               string(l.Status),
		AssignedToID:         l.AssignedToID,
		SalesGroupID:         l.SalesGroupID,
		SalesOrgID:           l.SalesOrgID,
		CreatedByID:          l.CreatedByID,
		CreatedDate:          l.CreatedDate,
		ExpiryDate:           l.ExpiryDate,
		ConvertedDate:        l.ConvertedDate,
		IsExpired:            l.IsExpired,
		IsExtended:           l.IsExtended,
		ExtensionGrantedDate: l.ExtensionGrantedDate,
		ExtensionGrantedBy:   l.ExtensionGrantedBy,
		ProductIDs:           products,
	}
}

// ToLeadResponses maps a slice of leads.
func ToLeadResponses(leads []domain.Lead) []LeadResponse {
	items := make([]LeadResponse, len(leads))
	for i, l := range leads {
		items[i] = ToLeadResponse(l)
	}
	return items
}
