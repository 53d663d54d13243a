// Package adapter provides implementations of external interfaces that other domains need.
// The organization domain satisfies consumer-driven interfaces defined by the leads domain.
package adapter

import (
	"context"

	"salesrep_portal/internal/leads/ports"
	"salesrep_portal/internal/organization/service"

	"github.com/google/uuid"
)

// UserDirectoryAdapter implements leads/ports.UserDirectory using the organization service.
type UserDirectoryAdapter struct {
	svc *service.Service
}

func NewUserDirectoryAdapter(svc *service.Service) *UserDirectoryAdapter {
	return &UserDirectoryAdapter{svc: svc}
}

// GetUser implements ports.UserDirectory. Missing users surface as apperr NotFound.
func (a *UserDirectoryAdapter) GetUser(ctx context.Context, userID uuid.UUID) (ports.UserInfo, error) {
	u, err := a.svc.GetUser(ctx, userID)
	if err != nil {
		return ports.UserInfo{}, err
	}
	return ports.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		SalesGroupID: u.SalesGroupID,
		SalesOrgID:   u.SalesOrgID,
		IsActive:     u.IsActive,
	}, nil
}

var _ ports.UserDirectory = (*UserDirectoryAdapter)(nil)
