// Package service implements the lead action pipeline: validation, state
// transition, dependent service order creation and audit event persistence.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/actions"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/platform/logger"
)

const (
	// DefaultSource tags events submitted without an explicit source.
	DefaultSource = "dashboard"

	defaultTimelineLimit = 50
	maxTimelineLimit     = 200

	// serviceOrderIDKey links an audit event to its derived billing record.
	serviceOrderIDKey = "serviceOrderId"
)

// Service orchestrates lead actions end to end.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new leads service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SubmitEvent runs the full pipeline for one raw action submission: validate,
// load the lead, plan the transition, apply the writes (service order, status,
// audit event — in that order, in one transaction) and return the stored
// event. Nothing is written when any stage rejects.
//
// Repeated identical submissions are not deduplicated: a double-submitted
// close_with_os creates two service orders and two events (at-least-once
// audit semantics, kept deliberately).
func (s *Service) SubmitEvent(ctx context.Context, rawLeadID any, action string, rawPayload any, source string, actor Actor) (repository.Event, error) {
	cmd, err := actions.ValidateLead(rawLeadID, action, rawPayload)
	if err != nil {
		return repository.Event{}, err
	}

	lead, err := s.repo.GetLead(ctx, cmd.LeadID)
	if err != nil {
		return repository.Event{}, err
	}
	if domain.IsTerminal(lead.Status) {
		// Allowed, just unusual: late notes and corrections keep their trail.
		s.log.Debug("action on terminal lead", "leadId", lead.ID, "status", lead.Status, "action", cmd.Command.ActionID())
	}

	outcome, err := planTransition(cmd.Command, lead, actor)
	if err != nil {
		return repository.Event{}, err
	}

	if outcome.ServiceOrder != nil {
		outcome.ServiceOrder.ID = uuid.New()
		if outcome.EventPayload == nil {
			outcome.EventPayload = make(map[string]any, 1)
		}
		outcome.EventPayload[serviceOrderIDKey] = outcome.ServiceOrder.ID.String()
	}

	event, err := s.repo.ApplyAction(ctx, repository.ApplyActionParams{
		LeadID:       cmd.LeadID,
		NewStatus:    outcome.NewStatus,
		NewOwner:     outcome.NewOwner,
		ServiceOrder: outcome.ServiceOrder,
		Event: repository.EventDraft{
			Action:     cmd.Command.ActionID(),
			Source:     normalizeSource(source),
			ActorID:    actor.ID,
			ActorEmail: actor.Email,
			ActorName:  actor.DisplayName,
			Payload:    outcome.EventPayload,
		},
	})
	if err != nil {
		return repository.Event{}, err
	}

	s.log.Info("lead action applied",
		"leadId", cmd.LeadID,
		"action", cmd.Command.ActionID(),
		"newStatus", outcome.NewStatus,
		"actor", actor.Email,
	)
	return event, nil
}

// TimelineEntry is one audit event prepared for display. Payload is a copy:
// when the event references a service order, the order's current values are
// joined in at read time. The stored row itself is never touched, so a later
// correction to the order retroactively changes what the timeline shows.
type TimelineEntry struct {
	Event        repository.Event
	ServiceOrder *repository.ServiceOrder
}

// ListEvents returns a lead's timeline, newest first, enriched with linked
// service order values.
func (s *Service) ListEvents(ctx context.Context, leadID int64, limit int) ([]TimelineEntry, error) {
	if limit <= 0 {
		limit = defaultTimelineLimit
	}
	if limit > maxTimelineLimit {
		limit = maxTimelineLimit
	}

	if _, err := s.repo.GetLead(ctx, leadID); err != nil {
		return nil, err
	}

	events, err := s.repo.ListEvents(ctx, leadID, limit)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]uuid.UUID, 0)
	for _, event := range events {
		if id, ok := serviceOrderID(event.Payload); ok {
			orderIDs = append(orderIDs, id)
		}
	}

	orders, err := s.repo.GetServiceOrders(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]TimelineEntry, 0, len(events))
	for _, event := range events {
		entry := TimelineEntry{Event: event}
		if id, ok := serviceOrderID(event.Payload); ok {
			if so, found := orders[id]; found {
				order := so
				entry.ServiceOrder = &order
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// UpdateServiceOrder corrects a service order's values.
func (s *Service) UpdateServiceOrder(ctx context.Context, id uuid.UUID, params repository.UpdateServiceOrderParams) (repository.ServiceOrder, error) {
	so, err := s.repo.UpdateServiceOrder(ctx, id, params)
	if err != nil {
		return repository.ServiceOrder{}, err
	}
	s.log.Info("service order updated", "serviceOrderId", id.String(), "leadId", so.LeadID)
	return so, nil
}

// ActivitySummary exposes the lead-side event aggregates.
func (s *Service) ActivitySummary(ctx context.Context, from, to time.Time) (repository.ActivitySummary, error) {
	return s.repo.ActivitySummary(ctx, from, to)
}

func serviceOrderID(payload map[string]any) (uuid.UUID, bool) {
	raw, ok := payload[serviceOrderIDKey].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func normalizeSource(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return DefaultSource
	}
	return source
}
