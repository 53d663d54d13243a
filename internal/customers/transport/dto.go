package transport

import (
	"time"

	"salesrep_portal/internal/customers/repository"

	"github.com/google/uuid"
)

type ListCustomersRequest struct {
	Search       string `form:"search" validate:"max=100"`
	SalesRepID   string `form:"salesRepId" validate:"omitempty,uuid"`
	SalesGroupID string `form:"salesGroupId" validate:"omitempty,uuid"`
	Page         int    `form:"page" validate:"min=1"`
	PageSize     int    `form:"pageSize" validate:"min=1,max=100"`
	SortBy       string `form:"sortBy" validate:"omitempty,oneof=conversionDate company lastName daysToConvert"`
	SortOrder    string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type CustomerResponse struct {
	ID              uuid.UUID  `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Company         string     `json:"company"`
	Address         string     `json:"address"`
	City            string     `json:"city"`
	State           string     `json:"state"`
	Zip             string     `json:"zip"`
	Notes           string     `json:"notes"`
	OriginalLeadID  *uuid.UUID `json:"originalLeadId,omitempty"`
	ConvertedByID   uuid.UUID  `json:"convertedById"`
	SalesRepID      *uuid.UUID `json:"salesRepId,omitempty"`
	SalesGroupID    *uuid.UUID `json:"salesGroupId,omitempty"`
	ConversionDate  time.Time  `json:"conversionDate"`
	LeadCreatedDate time.Time  `json:"leadCreatedDate"`
	DaysToConvert   int        `json:"daysToConvert"`
}

type CustomerListResponse struct {
	Items      []CustomerResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

type DeleteCustomerResponse struct {
	CustomerID uuid.UUID `json:"customerId"`
}

func ToCustomerResponse(c repository.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Email:           c.Email,
		Phone:           c.Phone,
		Company:         c.Company,
		Address:         c.Address,
		City:            c.City,
		State:           c.State,
		Zip:             c.Zip,
		Notes:           c.Notes,
		OriginalLeadID:  c.OriginalLeadID,
		ConvertedByID:   c.ConvertedByID,
		SalesRepID:      c.SalesRepID,
		SalesGroupID:    c.SalesGroupID,
		ConversionDate:  c.ConversionDate,
		LeadCreatedDate: c.LeadCreatedDate,
		DaysToConvert:   c.DaysToConvert,
	}
}

func ToCustomerResponses(items []repository.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(items))
	for i, c := range items {
		out[i] = ToCustomerResponse(c)
	}
	return out
}
