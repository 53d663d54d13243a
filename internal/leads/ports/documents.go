package ports

import (
	"context"

	"github.com/google/uuid"
)

// DocumentCleanup removes every stored document of a lead and returns how many were removed.
type DocumentCleanup interface {
	DeleteLeadDocuments(ctx context.Context, leadID uuid.UUID) (int, error)
}
