// Package handler exposes the ticket action endpoints over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdesk_backend/internal/tickets/service"
	"salesdesk_backend/internal/tickets/transport"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SubmitEvent handles POST /events/ticket.
func (h *Handler) SubmitEvent(c *gin.Context) {
	var req transport.SubmitEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	event, err := h.svc.SubmitEvent(c.Request.Context(), req.TicketID, req.Action, req.Payload, req.Source, service.Actor{
		ID:          id.UserID(),
		Email:       id.Email(),
		DisplayName: id.DisplayName(),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.SubmitEventResponse{
		Success: true,
		Event:   transport.ToEventResponse(event),
	})
}

// ListEvents handles GET /tickets/:id/events.
func (h *Handler) ListEvents(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}

	events, err := h.svc.ListEvents(c.Request.Context(), ticketID, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToTimelineResponse(events))
}
