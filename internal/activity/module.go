package activity

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/httpkit"
)

// defaultWindow is the metrics window used when the caller gives no range.
const defaultWindow = 30 * 24 * time.Hour

// Module is the activity metrics module implementing http.Module.
type Module struct {
	svc *Service
}

// NewModule creates the activity metrics module.
func NewModule(leads LeadSource, tickets TicketSource) *Module {
	return &Module{svc: New(leads, tickets)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "activity"
}

// RegisterRoutes mounts the metrics route. Aggregates expose per-consultant
// counts, so the route is manager-only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Manager.GET("/metrics/activity", m.getSummary)
}

// summaryResponse is the metrics envelope.
type summaryResponse struct {
	Success bool           `json:"success"`
	From    time.Time      `json:"from"`
	To      time.Time      `json:"to"`
	Total   int            `json:"total"`
	Leads   int            `json:"leads"`
	Tickets int            `json:"tickets"`
	Actions map[string]int `json:"actions"`
	Actors  map[string]int `json:"actors"`
}

func (m *Module) getSummary(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, "invalid time range", nil)
		return
	}

	summary, err := m.svc.Summary(c.Request.Context(), from, to)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, summaryResponse{
		Success: true,
		From:    summary.From,
		To:      summary.To,
		Total:   summary.Total,
		Leads:   summary.Leads,
		Tickets: summary.Tickets,
		Actions: summary.ByAction,
		Actors:  summary.ByActor,
	})
}

// parseWindow reads the from/to query params (RFC 3339), defaulting to the
// trailing 30 days.
func parseWindow(c *gin.Context) (from, to time.Time, ok bool) {
	now := time.Now().UTC()
	from, to = now.Add(-defaultWindow), now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
