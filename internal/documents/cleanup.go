// Package documents removes the stored files of a lead before the lead
// itself is deleted. Objects live under leads/<lead id>/ in one bucket.
package documents

import (
	"context"
	"fmt"

	"salesrep_portal/internal/leads/ports"
	"salesrep_portal/platform/logger"

	"github.com/google/uuid"
)

// ObjectStore is the subset of object storage the cleanup needs.
type ObjectStore interface {
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	RemoveKeys(ctx context.Context, bucket string, keys []string) error
}

// LeadPrefix is the key prefix of every document attached to the lead.
func LeadPrefix(leadID uuid.UUID) string {
	return "leads/" + leadID.String() + "/"
}

type Cleaner struct {
	store  ObjectStore
	bucket string
	log    *logger.Logger
}

func NewCleaner(store ObjectStore, bucket string, log *logger.Logger) *Cleaner {
	return &Cleaner{store: store, bucket: bucket, log: log}
}

// DeleteLeadDocuments implements ports.DocumentCleanup.
func (c *Cleaner) DeleteLeadDocuments(ctx context.Context, leadID uuid.UUID) (int, error) {
	keys, err := c.store.ListKeys(ctx, c.bucket, LeadPrefix(leadID))
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := c.store.RemoveKeys(ctx, c.bucket, keys); err != nil {
		return 0, fmt.Errorf("remove documents of lead %s: %w", leadID, err)
	}
	c.log.WithContext(ctx).Info("lead documents removed", "lead_id", leadID.String(), "count", len(keys))
	return len(keys), nil
}

// NoopCleaner is used when no object storage is configured; there is
// nothing to remove.
type NoopCleaner struct{}

func (NoopCleaner) DeleteLeadDocuments(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}

var (
	_ ports.DocumentCleanup = (*Cleaner)(nil)
	_ ports.DocumentCleanup = NoopCleaner{}
)
