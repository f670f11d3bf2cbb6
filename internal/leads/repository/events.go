package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salesdesk_backend/platform/apperr"
)

// Event is one immutable audit row. Append is the only write primitive;
// rows are never updated or deleted.
type Event struct {
	ID         uuid.UUID
	LeadID     int64
	ActorID    uuid.UUID
	ActorEmail string
	ActorName  string
	Action     string
	Source     string
	Payload    map[string]any
	OccurredAt time.Time
}

// pgxExecutor is satisfied by both *pgxpool.Pool and pgx.Tx so event inserts
// can run standalone or inside an action transaction.
type pgxExecutor interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertLeadEvent(ctx context.Context, q pgxExecutor, leadID int64, draft EventDraft) (Event, error) {
	payloadJSON, err := json.Marshal(draft.Payload)
	if err != nil {
		return Event{}, apperr.Wrap(apperr.KindInternal, "could not encode event payload", err)
	}

	event := Event{
		LeadID:     leadID,
		ActorID:    draft.ActorID,
		ActorEmail: draft.ActorEmail,
		ActorName:  draft.ActorName,
		Action:     draft.Action,
		Source:     draft.Source,
		// payload is excluded from RETURNING: we already hold it as a Go value
		// and re-scanning the stored JSONB would just add a redundant unmarshal.
		Payload: draft.Payload,
	}
	err = q.QueryRow(ctx, `
		INSERT INTO lead_events (lead_id, actor_id, actor_email, actor_name, action, source, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, occurred_at
	`, leadID, draft.ActorID, draft.ActorEmail, draft.ActorName, draft.Action, draft.Source, payloadJSON).Scan(
		&event.ID,
		&event.OccurredAt,
	)
	if err != nil {
		return Event{}, apperr.Wrap(apperr.KindInternal, "could not append lead event", err)
	}

	return event, nil
}

// AppendEvent appends one audit event outside any action transaction.
func (r *Repo) AppendEvent(ctx context.Context, leadID int64, draft EventDraft) (Event, error) {
	return insertLeadEvent(ctx, r.pool, leadID, draft)
}

// ListEvents returns a lead's events in reverse chronological order.
func (r *Repo) ListEvents(ctx context.Context, leadID int64, limit int) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, actor_id, actor_email, actor_name, action, source, payload, occurred_at
		FROM lead_events
		WHERE lead_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("list lead events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var event Event
		var rawPayload []byte
		if err := rows.Scan(
			&event.ID, &event.LeadID, &event.ActorID, &event.ActorEmail, &event.ActorName,
			&event.Action, &event.Source, &rawPayload, &event.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead event: %w", err)
		}
		if len(rawPayload) > 0 {
			_ = json.Unmarshal(rawPayload, &event.Payload)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lead events: %w", err)
	}
	return events, nil
}
