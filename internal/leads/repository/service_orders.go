package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salesdesk_backend/platform/apperr"
)

const serviceOrderNotFoundMessage = "service order not found"

// ServiceOrder is the billing record created when a lead closes with
// billable work. Values may be corrected after creation; the originating
// audit event keeps only the order's id.
type ServiceOrder struct {
	ID         uuid.UUID
	LeadID     int64
	OSNumber   string
	PartsValue float64
	LaborValue float64
	Note       *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GetServiceOrders fetches the given service orders, keyed by id. Missing
// ids are simply absent from the result.
func (r *Repo) GetServiceOrders(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ServiceOrder, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]ServiceOrder{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, os_number, parts_value, labor_value, note, created_at, updated_at
		FROM service_orders
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("get service orders: %w", err)
	}
	defer rows.Close()

	orders := make(map[uuid.UUID]ServiceOrder, len(ids))
	for rows.Next() {
		var so ServiceOrder
		if err := rows.Scan(
			&so.ID, &so.LeadID, &so.OSNumber, &so.PartsValue, &so.LaborValue,
			&so.Note, &so.CreatedAt, &so.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan service order: %w", err)
		}
		orders[so.ID] = so
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get service orders: %w", err)
	}
	return orders, nil
}

// UpdateServiceOrderParams carries value corrections; nil fields are left
// untouched.
type UpdateServiceOrderParams struct {
	PartsValue *float64
	LaborValue *float64
	Note       *string
}

// UpdateServiceOrder corrects a service order's values. The originating
// audit event is not touched; timelines pick the new values up through the
// read-time join.
func (r *Repo) UpdateServiceOrder(ctx context.Context, id uuid.UUID, params UpdateServiceOrderParams) (ServiceOrder, error) {
	var so ServiceOrder
	err := r.pool.QueryRow(ctx, `
		UPDATE service_orders
		SET parts_value = COALESCE($2, parts_value),
		    labor_value = COALESCE($3, labor_value),
		    note = COALESCE($4, note),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, lead_id, os_number, parts_value, labor_value, note, created_at, updated_at
	`, id, params.PartsValue, params.LaborValue, params.Note).Scan(
		&so.ID, &so.LeadID, &so.OSNumber, &so.PartsValue, &so.LaborValue,
		&so.Note, &so.CreatedAt, &so.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ServiceOrder{}, apperr.NotFound(serviceOrderNotFoundMessage)
		}
		return ServiceOrder{}, fmt.Errorf("update service order: %w", err)
	}
	return so, nil
}
