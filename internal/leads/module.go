// Package leads provides the lead lifecycle bounded context module.
// This file wires the repository, duplicate checker, service and handler and
// registers the routes.
package leads

import (
	"context"

	"salesrep_portal/internal/events"
	apphttp "salesrep_portal/internal/http"
	"salesrep_portal/internal/leads/duplicates"
	"salesrep_portal/internal/leads/expiry"
	"salesrep_portal/internal/leads/handler"
	"salesrep_portal/internal/leads/ports"
	"salesrep_portal/internal/leads/repository"
	"salesrep_portal/internal/leads/service"
	"salesrep_portal/platform/httpkit"
	"salesrep_portal/platform/logger"
	"salesrep_portal/platform/phone"
	"salesrep_portal/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps are the cross-module collaborators of the leads module. They are
// built by the composition root from the adapters package.
type Deps struct {
	UnitOfWork service.UnitOfWork
	Users      ports.UserDirectory
	Settings   ports.SettingsProvider
	Customers  duplicates.CustomerStore
	Documents  ports.DocumentCleanup
	Audit      ports.AuditSink
	EventBus   events.Bus
	Validator  *validator.Validator
	Phone      phone.Normalizer
	Logger     *logger.Logger

	// ExpiringSoonDays is the default window of the expiring-soon listing.
	ExpiringSoonDays int
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	repo      *repository.Repository
	service   *service.Service
	handler   *handler.Handler
	sweeper   *expiry.Sweeper
	typeahead *httpkit.IPRateLimiter
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, deps Deps) *Module {
	repo := repository.New(pool)

	cooling := func(ctx context.Context) (int, error) {
		s, err := deps.Settings.Get(ctx)
		if err != nil {
			return 0, err
		}
		return s.CoolingPeriodDays, nil
	}
	checker := duplicates.NewChecker(repo, deps.Customers, cooling, nil)

	svc := service.New(service.Deps{
		Reader:     repo,
		UnitOfWork: deps.UnitOfWork,
		Duplicates: checker,
		Users:      deps.Users,
		Settings:   deps.Settings,
		Documents:  deps.Documents,
		Audit:      deps.Audit,
		EventBus:   deps.EventBus,
		Phone:      deps.Phone,
		Logger:     deps.Logger,
	})

	return &Module{
		repo:      repo,
		service:   svc,
		handler:   handler.New(svc, deps.Validator, deps.Logger).WithExpiringSoonDays(deps.ExpiringSoonDays),
		sweeper:   expiry.NewSweeper(repo, deps.Audit, deps.EventBus, deps.Logger),
		typeahead: httpkit.NewTypeaheadRateLimiter(deps.Logger),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the pool-bound lead repository.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// Sweeper returns the expiry sweeper driven by the scheduler.
func (m *Module) Sweeper() *expiry.Sweeper {
	return m.sweeper
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require an authenticated, resolved actor
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"), m.typeahead.RateLimit())
	m.handler.RegisterProductRoutes(ctx.Protected.Group("/products"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
