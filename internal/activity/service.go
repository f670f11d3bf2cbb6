// Package activity aggregates audit events from the leads and tickets
// contexts into the dashboard activity metrics view.
package activity

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	leadrepo "salesdesk_backend/internal/leads/repository"
	ticketrepo "salesdesk_backend/internal/tickets/repository"
)

// LeadSource exposes the lead-side event aggregates.
type LeadSource interface {
	ActivitySummary(ctx context.Context, from, to time.Time) (leadrepo.ActivitySummary, error)
}

// TicketSource exposes the ticket-side event aggregates.
type TicketSource interface {
	ActivitySummary(ctx context.Context, from, to time.Time) (ticketrepo.ActivitySummary, error)
}

// Summary is the merged activity view across both event stores.
type Summary struct {
	From     time.Time
	To       time.Time
	Total    int
	Leads    int
	Tickets  int
	ByAction map[string]int
	ByActor  map[string]int
}

// Service fans the aggregate query out to both contexts.
type Service struct {
	leads   LeadSource
	tickets TicketSource
}

// New creates a new activity service.
func New(leads LeadSource, tickets TicketSource) *Service {
	return &Service{leads: leads, tickets: tickets}
}

// Summary queries both event stores concurrently and merges the counts.
// Either side failing fails the whole read.
func (s *Service) Summary(ctx context.Context, from, to time.Time) (Summary, error) {
	var (
		leadSummary   leadrepo.ActivitySummary
		ticketSummary ticketrepo.ActivitySummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leadSummary, err = s.leads.ActivitySummary(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		ticketSummary, err = s.tickets.ActivitySummary(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	merged := Summary{
		From:     from,
		To:       to,
		Total:    leadSummary.Total + ticketSummary.Total,
		Leads:    leadSummary.Total,
		Tickets:  ticketSummary.Total,
		ByAction: make(map[string]int),
		ByActor:  make(map[string]int),
	}
	for action, count := range leadSummary.ByAction {
		merged.ByAction[action] += count
	}
	for action, count := range ticketSummary.ByAction {
		merged.ByAction[action] += count
	}
	for actor, count := range leadSummary.ByActor {
		merged.ByActor[actor] += count
	}
	for actor, count := range ticketSummary.ByActor {
		merged.ByActor[actor] += count
	}
	return merged, nil
}
