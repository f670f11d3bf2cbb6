// Package repository provides PostgreSQL persistence for the append-only
// ticket audit events. Tickets themselves live in the partner system; only
// the local audit trail is stored here.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/platform/apperr"
)

// Event is one immutable ticket audit row.
type Event struct {
	ID         uuid.UUID
	TicketID   uuid.UUID
	ActorID    uuid.UUID
	ActorEmail string
	ActorName  string
	Action     string
	Source     string
	Payload    map[string]any
	OccurredAt time.Time
}

// EventDraft carries one audit event to be appended.
type EventDraft struct {
	Action     string
	Source     string
	ActorID    uuid.UUID
	ActorEmail string
	ActorName  string
	Payload    map[string]any
}

// ActivitySummary aggregates ticket events for the dashboard metrics view.
type ActivitySummary struct {
	Total    int
	ByAction map[string]int
	ByActor  map[string]int
}

// Repository defines the persistence contract for the tickets module.
type Repository interface {
	AppendEvent(ctx context.Context, ticketID uuid.UUID, draft EventDraft) (Event, error)
	ListEvents(ctx context.Context, ticketID uuid.UUID, limit int) ([]Event, error)
	ActivitySummary(ctx context.Context, from, to time.Time) (ActivitySummary, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new tickets repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// AppendEvent appends one ticket audit event.
func (r *Repo) AppendEvent(ctx context.Context, ticketID uuid.UUID, draft EventDraft) (Event, error) {
	payloadJSON, err := json.Marshal(draft.Payload)
	if err != nil {
		return Event{}, apperr.Wrap(apperr.KindInternal, "could not encode event payload", err)
	}

	event := Event{
		TicketID:   ticketID,
		ActorID:    draft.ActorID,
		ActorEmail: draft.ActorEmail,
		ActorName:  draft.ActorName,
		Action:     draft.Action,
		Source:     draft.Source,
		Payload:    draft.Payload,
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO ticket_events (ticket_id, actor_id, actor_email, actor_name, action, source, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, occurred_at
	`, ticketID, draft.ActorID, draft.ActorEmail, draft.ActorName, draft.Action, draft.Source, payloadJSON).Scan(
		&event.ID,
		&event.OccurredAt,
	)
	if err != nil {
		return Event{}, apperr.Wrap(apperr.KindInternal, "could not append ticket event", err)
	}

	return event, nil
}

// ListEvents returns a ticket's events in reverse chronological order.
func (r *Repo) ListEvents(ctx context.Context, ticketID uuid.UUID, limit int) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, ticket_id, actor_id, actor_email, actor_name, action, source, payload, occurred_at
		FROM ticket_events
		WHERE ticket_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, ticketID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ticket events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var event Event
		var rawPayload []byte
		if err := rows.Scan(
			&event.ID, &event.TicketID, &event.ActorID, &event.ActorEmail, &event.ActorName,
			&event.Action, &event.Source, &rawPayload, &event.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan ticket event: %w", err)
		}
		if len(rawPayload) > 0 {
			_ = json.Unmarshal(rawPayload, &event.Payload)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ticket events: %w", err)
	}
	return events, nil
}

// ActivitySummary counts ticket events in the window, grouped by action and
// by acting consultant.
func (r *Repo) ActivitySummary(ctx context.Context, from, to time.Time) (ActivitySummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT action, actor_name, COUNT(*)
		FROM ticket_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY action, actor_name
	`, from, to)
	if err != nil {
		return ActivitySummary{}, fmt.Errorf("ticket activity summary: %w", err)
	}
	defer rows.Close()

	summary := ActivitySummary{
		ByAction: make(map[string]int),
		ByActor:  make(map[string]int),
	}
	for rows.Next() {
		var action, actor string
		var count int
		if err := rows.Scan(&action, &actor, &count); err != nil {
			return ActivitySummary{}, fmt.Errorf("scan ticket activity row: %w", err)
		}
		summary.ByAction[action] += count
		summary.ByActor[actor] += count
		summary.Total += count
	}
	if err := rows.Err(); err != nil {
		return ActivitySummary{}, fmt.Errorf("ticket activity summary: %w", err)
	}
	return summary, nil
}
