// Package repository provides PostgreSQL persistence for leads, their
// append-only audit events and the service orders derived from close actions.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/platform/apperr"
)

const leadNotFoundMessage = "lead not found"

// Lead is one sales lead row.
type Lead struct {
	ID        int64
	Name      string
	Phone     *string
	City      *string
	Consultor string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetLead retrieves a lead by its ID.
func (r *Repo) GetLead(ctx context.Context, id int64) (Lead, error) {
	query := `
		SELECT id, name, phone, city, consultor, status, created_at, updated_at
		FROM leads
		WHERE id = $1`

	var lead Lead
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&lead.ID, &lead.Name, &lead.Phone, &lead.City, &lead.Consultor,
		&lead.Status, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}

	return lead, nil
}

// ServiceOrderDraft carries the values for a service order to be created as
// part of an action. The ID is assigned by the caller so the audit event can
// reference the record inside the same transaction.
type ServiceOrderDraft struct {
	ID         uuid.UUID
	OSNumber   string
	PartsValue float64
	LaborValue float64
	Note       string
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

// ApplyActionParams describes the full write set of one validated lead action.
type ApplyActionParams struct {
	LeadID int64
	// NewStatus is empty when the action leaves the status untouched.
	NewStatus string
	// NewOwner, when set, updates the lead's consultor column.
	NewOwner *string
	// ServiceOrder is non-nil only for close_with_os.
	ServiceOrder *ServiceOrderDraft
	Event        EventDraft
}

// ApplyAction performs the action's writes in one transaction, in order:
// dependent service order, status/owner mutation, audit event. The returned
// event is the stored row. Status writes are last-write-wins; no row lock is
// taken, so two concurrent actions on the same lead race (documented
// behavior).
func (r *Repo) ApplyAction(ctx context.Context, params ApplyActionParams) (Event, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Event{}, apperr.Wrap(apperr.KindInternal, "could not start transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if so := params.ServiceOrder; so != nil {
		_, err := tx.Exec(ctx, `
			INSERT INTO service_orders (id, lead_id, os_number, parts_value, labor_value, note)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		`, so.ID, params.LeadID, so.OSNumber, so.PartsValue, so.LaborValue, so.Note)
		if err != nil {
			return Event{}, apperr.Wrap(apperr.KindInternal, "could not create service order", err)
		}
	}

	if params.NewStatus != "" || params.NewOwner != nil {
		tag, err := tx.Exec(ctx, `
			UPDATE leads
			SET status = COALESCE(NULLIF($2, ''), status),
			    consultor = COALESCE($3, consultor),
			    updated_at = now()
			WHERE id = $1
		`, params.LeadID, params.NewStatus, params.NewOwner)
		if err != nil {
			return Event{}, apperr.Wrap(apperr.KindInternal, "could not update lead", err)
		}
		if tag.RowsAffected() == 0 {
			return Event{}, apperr.NotFound(leadNotFoundMessage)
		}
	}

	event, err := insertLeadEvent(ctx, tx, params.LeadID, params.Event)
	if err != nil {
		return Event{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Event{}, apperr.Wrap(apperr.KindInternal, "could not commit action", err)
	}
	return event, nil
}
