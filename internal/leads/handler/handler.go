// Package handler exposes the leads action endpoints over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/service"
	"salesdesk_backend/internal/leads/transport"
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

// SubmitEvent handles POST /events/lead.
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

	event, err := h.svc.SubmitEvent(c.Request.Context(), req.LeadID, req.Action, req.Payload, req.Source, service.Actor{
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

// ListEvents handles GET /leads/:id/events.
func (h *Handler) ListEvents(c *gin.Context) {
	leadID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || leadID <= 0 {
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

	entries, err := h.svc.ListEvents(c.Request.Context(), leadID, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToTimelineResponse(entries))
}

// UpdateServiceOrder handles PATCH /service-orders/:id.
func (h *Handler) UpdateServiceOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateServiceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	so, err := h.svc.UpdateServiceOrder(c.Request.Context(), id, repository.UpdateServiceOrderParams{
		PartsValue: req.PartsValue,
		LaborValue: req.LaborValue,
		Note:       req.Note,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ServiceOrderEnvelope{
		Success:      true,
		ServiceOrder: transport.ToServiceOrderResponse(so),
	})
}
