package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for the leads module.
// The service layer depends on this interface so tests can substitute an
// in-memory fake.
type Repository interface {
	GetLead(ctx context.Context, id int64) (Lead, error)
	ApplyAction(ctx context.Context, params ApplyActionParams) (Event, error)
	AppendEvent(ctx context.Context, leadID int64, draft EventDraft) (Event, error)
	ListEvents(ctx context.Context, leadID int64, limit int) ([]Event, error)
	GetServiceOrders(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ServiceOrder, error)
	UpdateServiceOrder(ctx context.Context, id uuid.UUID, params UpdateServiceOrderParams) (ServiceOrder, error)
	ActivitySummary(ctx context.Context, from, to time.Time) (ActivitySummary, error)
}
