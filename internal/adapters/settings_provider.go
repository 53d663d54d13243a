package adapters

import (
	"context"

	"salesrep_portal/internal/leads/ports"
	settingsrepo "salesrep_portal/internal/settings/repository"
)

// SettingsReader is the narrow interface for reading system settings.
type SettingsReader interface {
	Get(ctx context.Context) (settingsrepo.Settings, error)
}

// SettingsProviderAdapter implements leads/ports.SettingsProvider using the
// cached settings service.
type SettingsProviderAdapter struct {
	svc SettingsReader
}

// NewSettingsProviderAdapter creates a new adapter.
func NewSettingsProviderAdapter(svc SettingsReader) *SettingsProviderAdapter {
	return &SettingsProviderAdapter{svc: svc}
}

func (a *SettingsProviderAdapter) Get(ctx context.Context) (ports.SystemSettings, error) {
	s, err := a.svc.Get(ctx)
	if err != nil {
		return ports.SystemSettings{}, err
	}
	return ports.SystemSettings{
		CoolingPeriodDays:     s.CoolingPeriodDays,
		LeadInitialExpiryDays: s.LeadInitialExpiryDays,
		LeadExtensionDays:     s.LeadExtensionDays,
	}, nil
}

// Compile-time check.
var _ ports.SettingsProvider = (*SettingsProviderAdapter)(nil)
