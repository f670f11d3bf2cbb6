// Package transport defines the request and response DTOs for the leads
// HTTP surface.
package transport

import (
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/service"
)

// SubmitEventRequest is one raw action submission. LeadID and Payload are
// deliberately loose: the action pipeline owns validation and normalization,
// so binding only rejects bodies that are not JSON objects at all.
type SubmitEventRequest struct {
	LeadID  any            `json:"leadId"`
	Action  string         `json:"action" validate:"required,min=1,max=100"`
	Payload map[string]any `json:"payload"`
	Source  string         `json:"source" validate:"omitempty,max=50"`
}

// UpdateServiceOrderRequest corrects a service order's values. Omitted
// fields are left untouched.
type UpdateServiceOrderRequest struct {
	PartsValue *float64 `json:"partsValue" validate:"omitempty,gte=0"`
	LaborValue *float64 `json:"laborValue" validate:"omitempty,gte=0"`
	Note       *string  `json:"note" validate:"omitempty,max=2000"`
}

// ActorResponse identifies who performed an action.
type ActorResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// EventResponse is one stored audit event.
type EventResponse struct {
	ID         uuid.UUID      `json:"id"`
	LeadID     int64          `json:"leadId"`
	Actor      ActorResponse  `json:"actor"`
	Action     string         `json:"action"`
	Source     string         `json:"source"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// ServiceOrderResponse is the current state of a service order.
type ServiceOrderResponse struct {
	ID         uuid.UUID `json:"id"`
	LeadID     int64     `json:"leadId"`
	OSNumber   string    `json:"osNumber"`
	PartsValue float64   `json:"partsValue"`
	LaborValue float64   `json:"laborValue"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TimelineEntryResponse is one audit event with its linked service order's
// current values joined in.
type TimelineEntryResponse struct {
	EventResponse
	ServiceOrder *ServiceOrderResponse `json:"serviceOrder,omitempty"`
}

// SubmitEventResponse is the success envelope for an applied action.
type SubmitEventResponse struct {
	Success bool          `json:"success"`
	Event   EventResponse `json:"event"`
}

// TimelineResponse is the success envelope for a lead's event timeline.
type TimelineResponse struct {
	Success bool                    `json:"success"`
	Items   []TimelineEntryResponse `json:"items"`
}

// ServiceOrderEnvelope is the success envelope for a service order.
type ServiceOrderEnvelope struct {
	Success      bool                 `json:"success"`
	ServiceOrder ServiceOrderResponse `json:"serviceOrder"`
}

// ToEventResponse maps a stored event to its response DTO.
func ToEventResponse(e repository.Event) EventResponse {
	return EventResponse{
		ID:     e.ID,
		LeadID: e.LeadID,
		Actor: ActorResponse{
			ID:    e.ActorID,
			Email: e.ActorEmail,
			Name:  e.ActorName,
		},
		Action:     e.Action,
		Source:     e.Source,
		Payload:    e.Payload,
		OccurredAt: e.OccurredAt,
	}
}

// ToServiceOrderResponse maps a service order to its response DTO.
func ToServiceOrderResponse(so repository.ServiceOrder) ServiceOrderResponse {
	return ServiceOrderResponse{
		ID:         so.ID,
		LeadID:     so.LeadID,
		OSNumber:   so.OSNumber,
		PartsValue: so.PartsValue,
		LaborValue: so.LaborValue,
		Note:       so.Note,
		CreatedAt:  so.CreatedAt,
		UpdatedAt:  so.UpdatedAt,
	}
}

// ToTimelineResponse maps enriched timeline entries to the response envelope.
func ToTimelineResponse(entries []service.TimelineEntry) TimelineResponse {
	items := make([]TimelineEntryResponse, 0, len(entries))
	for _, entry := range entries {
		item := TimelineEntryResponse{EventResponse: ToEventResponse(entry.Event)}
		if entry.ServiceOrder != nil {
			so := ToServiceOrderResponse(*entry.ServiceOrder)
			item.ServiceOrder = &so
		}
		items = append(items, item)
	}
	return TimelineResponse{Success: true, Items: items}
}
