// Package settings provides the system settings module: the lifecycle
// durations administrators tune and every lead operation reads.
package settings

import (
	"salesrep_portal/internal/events"
	apphttp "salesrep_portal/internal/http"
	"salesrep_portal/internal/settings/cache"
	"salesrep_portal/internal/settings/handler"
	"salesrep_portal/internal/settings/repository"
	"salesrep_portal/internal/settings/service"
	"salesrep_portal/platform/logger"
	"salesrep_portal/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the settings module implementing http.Module.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule creates the settings module. settingsCache may be nil.
func NewModule(pool *pgxpool.Pool, settingsCache *cache.Cache, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	var c service.Cache
	if settingsCache != nil {
		c = settingsCache
	}
	svc := service.New(repository.New(pool), c, eventBus, log)
	return &Module{service: svc, handler: handler.New(svc, val, log)}
}

func (m *Module) Name() string {
	return "settings"
}

// Service returns the settings service, which the leads module reads through an adapter.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/settings"))
}

var _ apphttp.Module = (*Module)(nil)
