package ports

import (
	"context"

	"salesrep_portal/internal/leads/domain"

	"github.com/google/uuid"
)

// CustomerWriter is the customer side of a conversion. Implementations bound
// to a transaction must run both calls on that transaction.
type CustomerWriter interface {
	// HasActiveCustomerForLead reports whether a non-deleted customer already references the lead.
	HasActiveCustomerForLead(ctx context.Context, leadID uuid.UUID) (bool, error)
	// CreateFromSnapshot inserts the customer and returns its id.
	CreateFromSnapshot(ctx context.Context, snapshot domain.ConversionSnapshot) (uuid.UUID, error)
}
