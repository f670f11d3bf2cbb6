// Package transport defines the request and response DTOs for the tickets
// HTTP surface.
package transport

import (
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/tickets/repository"
)

// SubmitEventRequest is one raw action submission against a partner ticket.
// TicketID and Payload are deliberately loose: the action pipeline owns
// validation and normalization.
type SubmitEventRequest struct {
	TicketID any            `json:"ticketId"`
	Action   string         `json:"action" validate:"required,min=1,max=100"`
	Payload  map[string]any `json:"payload"`
	Source   string         `json:"source" validate:"omitempty,max=50"`
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
	TicketID   uuid.UUID      `json:"ticketId"`
	Actor      ActorResponse  `json:"actor"`
	Action     string         `json:"action"`
	Source     string         `json:"source"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// SubmitEventResponse is the success envelope for an applied action.
type SubmitEventResponse struct {
	Success bool          `json:"success"`
	Event   EventResponse `json:"event"`
}

// TimelineResponse is the success envelope for a ticket's event timeline.
type TimelineResponse struct {
	Success bool            `json:"success"`
	Items   []EventResponse `json:"items"`
}

// ToEventResponse maps a stored event to its response DTO.
func ToEventResponse(e repository.Event) EventResponse {
	return EventResponse{
		ID:       e.ID,
		TicketID: e.TicketID,
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

// ToTimelineResponse maps events to the timeline envelope.
func ToTimelineResponse(events []repository.Event) TimelineResponse {
	items := make([]EventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, ToEventResponse(event))
	}
	return TimelineResponse{Success: true, Items: items}
}
