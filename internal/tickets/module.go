// Package tickets provides the ticket operations bounded context module:
// action submission with partner forwarding and the local audit timeline.
package tickets

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/tickets/handler"
	"salesdesk_backend/internal/tickets/partner"
	"salesdesk_backend/internal/tickets/repository"
	"salesdesk_backend/internal/tickets/service"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"
)

// Module is the tickets bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the tickets module with all its
// dependencies. When no partner API is configured, forwarded actions
// degrade to audit-only.
func NewModule(pool *pgxpool.Pool, cfg config.PartnerConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)

	var fwd service.Forwarder
	if client := partner.NewClient(cfg, partner.NewTokenCache(), log); client != nil {
		fwd = client
	}

	svc := service.New(repo, fwd, log)
	h := handler.New(svc, val)

	return &Module{handler: h, svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tickets"
}

// Service returns the tickets service for cross-module use (activity metrics).
func (m *Module) Service() *service.Service {
	return m.svc
}

// RegisterRoutes mounts ticket routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/events/ticket", m.handler.SubmitEvent)
	ctx.Protected.GET("/tickets/:id/events", m.handler.ListEvents)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
