package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/actions"
	"salesdesk_backend/internal/tickets/repository"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"
)

type fakeRepo struct {
	events    []repository.Event
	appendErr error
}

func (r *fakeRepo) AppendEvent(_ context.Context, ticketID uuid.UUID, draft repository.EventDraft) (repository.Event, error) {
	if r.appendErr != nil {
		return repository.Event{}, r.appendErr
	}
	event := repository.Event{
		ID:         uuid.New(),
		TicketID:   ticketID,
		ActorID:    draft.ActorID,
		ActorEmail: draft.ActorEmail,
		ActorName:  draft.ActorName,
		Action:     draft.Action,
		Source:     draft.Source,
		Payload:    draft.Payload,
		OccurredAt: time.Now(),
	}
	r.events = append(r.events, event)
	return event, nil
}

func (r *fakeRepo) ListEvents(_ context.Context, ticketID uuid.UUID, limit int) ([]repository.Event, error) {
	out := make([]repository.Event, 0)
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if r.events[i].TicketID == ticketID {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}

func (r *fakeRepo) ActivitySummary(context.Context, time.Time, time.Time) (repository.ActivitySummary, error) {
	return repository.ActivitySummary{}, nil
}

var _ repository.Repository = (*fakeRepo)(nil)

type forwardCall struct {
	op     string
	tags   []string
	text   string
	fields map[string]string
}

type fakeForwarder struct {
	calls []forwardCall
	err   error
}

func (f *fakeForwarder) AddTags(_ context.Context, _ uuid.UUID, tags []string) error {
	f.calls = append(f.calls, forwardCall{op: "add_tags", tags: tags})
	return f.err
}

func (f *fakeForwarder) RemoveTags(_ context.Context, _ uuid.UUID, tags []string) error {
	f.calls = append(f.calls, forwardCall{op: "remove_tags", tags: tags})
	return f.err
}

func (f *fakeForwarder) Close(_ context.Context, _ uuid.UUID, resolution string) error {
	f.calls = append(f.calls, forwardCall{op: "close", text: resolution})
	return f.err
}

func (f *fakeForwarder) UpdateFields(_ context.Context, _ uuid.UUID, fields map[string]string) error {
	f.calls = append(f.calls, forwardCall{op: "update_fields", fields: fields})
	return f.err
}

func testActor() Actor {
	return Actor{ID: uuid.New(), Email: "user@example.com", DisplayName: "Maria"}
}

func TestSubmitEvent_ForwardedActions(t *testing.T) {
	ticketID := uuid.New().String()

	cases := []struct {
		name    string
		action  string
		payload map[string]any
		wantOp  string
	}{
		{"add_tags", actions.ActionAddTags, map[string]any{"tags": []any{"vip"}}, "add_tags"},
		{"remove_tags", actions.ActionRemoveTags, map[string]any{"tags": []any{"vip"}}, "remove_tags"},
		{"close", actions.ActionClose, map[string]any{"reason": "resolvido"}, "close"},
		{"update_field", actions.ActionUpdateField, map[string]any{"changedFields": map[string]any{"status": "done"}}, "update_fields"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			fwd := &fakeForwarder{}
			svc := New(repo, fwd, logger.New("development"))

			if _, err := svc.SubmitEvent(context.Background(), ticketID, tc.action, tc.payload, "", testActor()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(fwd.calls) != 1 || fwd.calls[0].op != tc.wantOp {
				t.Fatalf("expected one %s forward, got %+v", tc.wantOp, fwd.calls)
			}
			if len(repo.events) != 1 {
				t.Fatalf("expected one stored event, got %d", len(repo.events))
			}
		})
	}
}

func TestSubmitEvent_AuditOnlyActionsNeverForward(t *testing.T) {
	ticketID := uuid.New().String()

	cases := []struct {
		action  string
		payload map[string]any
	}{
		{actions.ActionView, nil},
		{actions.ActionAddNote, map[string]any{"note": "interno"}},
		{actions.ActionAssign, map[string]any{"assignee": "Maria"}},
		{actions.ActionExternalUpdate, map[string]any{"changedFields": map[string]any{"status": "done"}}},
	}
	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			repo := &fakeRepo{}
			fwd := &fakeForwarder{}
			svc := New(repo, fwd, logger.New("development"))

			if _, err := svc.SubmitEvent(context.Background(), ticketID, tc.action, tc.payload, "", testActor()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(fwd.calls) != 0 {
				t.Fatalf("audit-only action %s must not forward, got %+v", tc.action, fwd.calls)
			}
			if len(repo.events) != 1 {
				t.Fatalf("expected one stored event, got %d", len(repo.events))
			}
		})
	}
}

func TestSubmitEvent_ResolutionTextForcesForward(t *testing.T) {
	// add_note is audit-only, but a payload carrying resolution text touches
	// partner-owned state and is pushed upstream as a field update.
	repo := &fakeRepo{}
	fwd := &fakeForwarder{}
	svc := New(repo, fwd, logger.New("development"))

	_, err := svc.SubmitEvent(context.Background(), uuid.New().String(), actions.ActionAddNote,
		map[string]any{"note": "fechado", "resolution": "peça trocada"}, "", testActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fwd.calls) != 1 || fwd.calls[0].op != "update_fields" {
		t.Fatalf("expected update_fields forward, got %+v", fwd.calls)
	}
	if fwd.calls[0].fields["resolution"] != "peça trocada" {
		t.Fatalf("expected resolution field forwarded, got %+v", fwd.calls[0].fields)
	}
}

func TestSubmitEvent_ForwardFailureSkipsAudit(t *testing.T) {
	repo := &fakeRepo{}
	fwd := &fakeForwarder{err: apperr.Upstream("upstream_error")}
	svc := New(repo, fwd, logger.New("development"))

	_, err := svc.SubmitEvent(context.Background(), uuid.New().String(), actions.ActionClose,
		map[string]any{}, "", testActor())
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(repo.events) != 0 {
		t.Fatal("failed forward must not store an event")
	}
}

func TestSubmitEvent_AppendFailureAfterForward(t *testing.T) {
	repo := &fakeRepo{appendErr: apperr.Internal("boom")}
	fwd := &fakeForwarder{}
	svc := New(repo, fwd, logger.New("development"))

	_, err := svc.SubmitEvent(context.Background(), uuid.New().String(), actions.ActionClose,
		map[string]any{}, "", testActor())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if err.Error() != "ticket updated upstream but audit event could not be stored" {
		t.Fatalf("partial failure must be distinguishable, got %q", err.Error())
	}
	if len(fwd.calls) != 1 {
		t.Fatalf("expected the forward to have happened, got %+v", fwd.calls)
	}
}

func TestSubmitEvent_NilForwarderDegradesToAuditOnly(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, nil, logger.New("development"))

	_, err := svc.SubmitEvent(context.Background(), uuid.New().String(), actions.ActionAddTags,
		map[string]any{"tags": []any{"vip"}}, "", testActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected one stored event, got %d", len(repo.events))
	}
}

func TestSubmitEvent_ValidationRejectionWritesNothing(t *testing.T) {
	repo := &fakeRepo{}
	fwd := &fakeForwarder{}
	svc := New(repo, fwd, logger.New("development"))

	_, err := svc.SubmitEvent(context.Background(), uuid.New().String(), "discard",
		map[string]any{"reason": "x"}, "", testActor())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for cross-kind action, got %v", err)
	}
	if len(repo.events) != 0 || len(fwd.calls) != 0 {
		t.Fatal("rejected submission must not forward or store")
	}
}

func TestSubmitEvent_ViewDefaultMethod(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, &fakeForwarder{}, logger.New("development"))

	event, err := svc.SubmitEvent(context.Background(), uuid.New().String(), actions.ActionView, nil, "mobile", testActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Payload["method"] != "web" {
		t.Fatalf("expected catalog default method, got %v", event.Payload)
	}
	if event.Source != "mobile" {
		t.Fatalf("expected source mobile, got %q", event.Source)
	}
}
