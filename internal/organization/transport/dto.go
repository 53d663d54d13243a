package transport

import (
	"salesrep_portal/internal/organization/repository"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"fullName"`
	Role         string     `json:"role"`
	SalesGroupID *uuid.UUID `json:"salesGroupId,omitempty"`
	SalesOrgID   *uuid.UUID `json:"salesOrgId,omitempty"`
}

func ToUserResponse(u repository.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         string(u.Role),
		SalesGroupID: u.SalesGroupID,
		SalesOrgID:   u.SalesOrgID,
	}
}
