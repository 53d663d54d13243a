package ports

import "context"

// SystemSettings are the administrator-controlled lifecycle durations.
type SystemSettings struct {
	CoolingPeriodDays     int
	LeadInitialExpiryDays int
	LeadExtensionDays     int
}

// SettingsProvider reads the current system settings.
type SettingsProvider interface {
	Get(ctx context.Context) (SystemSettings, error)
}
