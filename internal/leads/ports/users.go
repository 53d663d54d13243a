// Package ports defines consumer-driven interfaces for external dependencies.
// These interfaces are defined in the Leads domain based on what it needs,
// rather than what other domains choose to offer.
package ports

import (
	"context"

	"salesrep_portal/internal/scoping"

	"github.com/google/uuid"
)

// UserInfo represents the minimal user data the leads domain needs.
type UserInfo struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	Role         scoping.Role
	SalesGroupID *uuid.UUID
	SalesOrgID   *uuid.UUID
	IsActive     bool
}

// Actor converts the user into the scoping actor.
func (u UserInfo) Actor() scoping.Actor {
	return scoping.Actor{UserID: u.ID, Role: u.Role, SalesGroupID: u.SalesGroupID, SalesOrgID: u.SalesOrgID}
}

// UserDirectory resolves users for actor scoping, assignment and notification.
// This interface is defined here (consumer-driven) rather than in the organization domain.
type UserDirectory interface {
	// GetUser returns the user or an error wrapping a not-found condition.
	GetUser(ctx context.Context, userID uuid.UUID) (UserInfo, error)
}
