package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"salesrep_portal/internal/audit"
	"salesrep_portal/internal/leads/ports"
	settingsrepo "salesrep_portal/internal/settings/repository"
	"salesrep_portal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSettings struct {
	s   settingsrepo.Settings
	err error
}

func (s stubSettings) Get(context.Context) (settingsrepo.Settings, error) { return s.s, s.err }

func TestSettingsProviderMapsFields(t *testing.T) {
	a := NewSettingsProviderAdapter(stubSettings{s: settingsrepo.Settings{
		CoolingPeriodDays:     30,
		LeadInitialExpiryDays: 90,
		LeadExtensionDays:     14,
		UpdatedAt:             time.Now(),
	}})

	got, err := a.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ports.SystemSettings{CoolingPeriodDays: 30, LeadInitialExpiryDays: 90, LeadExtensionDays: 14}, got)
}

func TestSettingsProviderPassesErrors(t *testing.T) {
	a := NewSettingsProviderAdapter(stubSettings{err: errors.New("db down")})

	_, err := a.Get(context.Background())
	assert.Error(t, err)
}

type noBroker struct{}

func (noBroker) GetAMQPURL() string       { return "" }
func (noBroker) GetAuditExchange() string { return "audit" }
func (noBroker) IsAMQPEnabled() bool      { return false }

func TestAuditSinkWithoutBrokerLogsOnly(t *testing.T) {
	sink, closeFn, err := NewAuditSink(noBroker{}, logger.Discard())

	require.NoError(t, err)
	assert.IsType(t, &audit.LogSink{}, sink)
	assert.NoError(t, closeFn())
}
