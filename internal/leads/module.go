// Package leads provides the lead operations bounded context module:
// action submission, audit timeline and service order corrections.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/leads/handler"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/service"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{handler: h, svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service for cross-module use (activity metrics).
func (m *Module) Service() *service.Service {
	return m.svc
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/events/lead", m.handler.SubmitEvent)
	ctx.Protected.GET("/leads/:id/events", m.handler.ListEvents)
	ctx.Protected.PATCH("/service-orders/:id", m.handler.UpdateServiceOrder)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
