// Package organization provides the sales hierarchy module: user lookup,
// actor resolution for every authenticated request, and the user directory
// the leads module assigns against.
package organization

import (
	apphttp "salesrep_portal/internal/http"
	"salesrep_portal/internal/organization/adapter"
	"salesrep_portal/internal/organization/handler"
	"salesrep_portal/internal/organization/repository"
	"salesrep_portal/internal/organization/service"
	"salesrep_portal/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the organization module implementing http.Module.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{service: svc, handler: handler.New(svc, log)}
}

func (m *Module) Name() string {
	return "organization"
}

// Service resolves actors for the HTTP middleware.
func (m *Module) Service() *service.Service {
	return m.service
}

// UserDirectory returns the adapter the leads module uses for assignee lookups.
func (m *Module) UserDirectory() *adapter.UserDirectoryAdapter {
	return adapter.NewUserDirectoryAdapter(m.service)
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/users"))
}

var _ apphttp.Module = (*Module)(nil)
