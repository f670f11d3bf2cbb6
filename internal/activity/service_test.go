package activity

import (
	"context"
	"testing"
	"time"

	leadrepo "salesdesk_backend/internal/leads/repository"
	ticketrepo "salesdesk_backend/internal/tickets/repository"
	"salesdesk_backend/platform/apperr"
)

type stubLeads struct {
	summary leadrepo.ActivitySummary
	err     error
}

func (s stubLeads) ActivitySummary(context.Context, time.Time, time.Time) (leadrepo.ActivitySummary, error) {
	return s.summary, s.err
}

type stubTickets struct {
	summary ticketrepo.ActivitySummary
	err     error
}

func (s stubTickets) ActivitySummary(context.Context, time.Time, time.Time) (ticketrepo.ActivitySummary, error) {
	return s.summary, s.err
}

func TestSummary_MergesBothSides(t *testing.T) {
	svc := New(
		stubLeads{summary: leadrepo.ActivitySummary{
			Total:    3,
			ByAction: map[string]int{"assign": 2, "discard": 1},
			ByActor:  map[string]int{"Maria": 3},
		}},
		stubTickets{summary: ticketrepo.ActivitySummary{
			Total:    2,
			ByAction: map[string]int{"close": 1, "assign": 1},
			ByActor:  map[string]int{"Maria": 1, "Joao": 1},
		}},
	)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	summary, err := svc.Summary(context.Background(), from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Total != 5 || summary.Leads != 3 || summary.Tickets != 2 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.ByAction["assign"] != 3 {
		t.Fatalf("expected assign counts merged across contexts, got %d", summary.ByAction["assign"])
	}
	if summary.ByActor["Maria"] != 4 || summary.ByActor["Joao"] != 1 {
		t.Fatalf("unexpected actor counts: %+v", summary.ByActor)
	}
}

func TestSummary_EitherSideFailureFailsRead(t *testing.T) {
	svc := New(
		stubLeads{err: apperr.Internal("lead store down")},
		stubTickets{},
	)

	_, err := svc.Summary(context.Background(), time.Now().Add(-time.Hour), time.Now())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
