package documents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"salesrep_portal/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObjects struct {
	keys      []string
	removeErr error
}

func (m *memObjects) ListKeys(_ context.Context, _ string, prefix string) ([]string, error) {
	var out []string
	for _, k := range m.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memObjects) RemoveKeys(_ context.Context, _ string, keys []string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	kept := m.keys[:0]
	for _, k := range m.keys {
		if !drop[k] {
			kept = append(kept, k)
		}
	}
	m.keys = kept
	return nil
}

func TestDeleteLeadDocumentsOnlyTouchesTheLead(t *testing.T) {
	lead := uuid.New()
	other := uuid.New()
	store := &memObjects{keys: []string{
		LeadPrefix(lead) + "contract.pdf",
		LeadPrefix(lead) + "photos/roof.jpg",
		LeadPrefix(other) + "contract.pdf",
	}}
	cleaner := NewCleaner(store, "lead-documents", logger.Discard())

	n, err := cleaner.DeleteLeadDocuments(context.Background(), lead)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{LeadPrefix(other) + "contract.pdf"}, store.keys)
}

func TestDeleteLeadDocumentsWithoutDocuments(t *testing.T) {
	cleaner := NewCleaner(&memObjects{}, "lead-documents", logger.Discard())

	n, err := cleaner.DeleteLeadDocuments(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteLeadDocumentsReportsRemovalFailure(t *testing.T) {
	lead := uuid.New()
	store := &memObjects{keys: []string{LeadPrefix(lead) + "a.pdf"}, removeErr: errors.New("access denied")}
	cleaner := NewCleaner(store, "lead-documents", logger.Discard())

	_, err := cleaner.DeleteLeadDocuments(context.Background(), lead)
	assert.Error(t, err)
}
