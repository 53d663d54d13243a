// Package customers provides the customer bounded context module: scoped
// reads of converted leads and the administrative soft delete.
package customers

import (
	"salesrep_portal/internal/customers/handler"
	"salesrep_portal/internal/customers/repository"
	"salesrep_portal/internal/customers/service"
	"salesrep_portal/internal/events"
	apphttp "salesrep_portal/internal/http"
	"salesrep_portal/platform/logger"
	"salesrep_portal/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the customers bounded context module implementing http.Module.
type Module struct {
	repo    *repository.Repository
	handler *handler.Handler
}

// NewModule creates the customers module.
func NewModule(pool *pgxpool.Pool, sink service.AuditSink, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, sink, eventBus, log)
	return &Module{
		repo:    repo,
		handler: handler.New(svc, val, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "customers"
}

// Repository returns the pool-bound repository. The leads module uses it for
// cooling-period checks and binds it to its own transactions for conversion.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts customer routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/customers"))
}

var _ apphttp.Module = (*Module)(nil)
