// Package service implements the ticket action pipeline: validation,
// partner forwarding and audit event persistence.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/actions"
	"salesdesk_backend/internal/tickets/repository"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/logger"
)

const (
	// DefaultSource tags events submitted without an explicit source.
	DefaultSource = "dashboard"

	defaultTimelineLimit = 50
	maxTimelineLimit     = 200
)

// Forwarder pushes ticket mutations to the partner ticketing system.
// Implemented by partner.Client.
type Forwarder interface {
	AddTags(ctx context.Context, ticketID uuid.UUID, tags []string) error
	RemoveTags(ctx context.Context, ticketID uuid.UUID, tags []string) error
	Close(ctx context.Context, ticketID uuid.UUID, resolution string) error
	UpdateFields(ctx context.Context, ticketID uuid.UUID, fields map[string]string) error
}

// Actor is the authenticated consultant performing an action.
type Actor struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
}

// Service orchestrates ticket actions end to end.
type Service struct {
	repo repository.Repository
	fwd  Forwarder
	log  *logger.Logger
}

// New creates a new tickets service. fwd may be nil when no partner system
// is configured; forwarded actions then degrade to audit-only.
func New(repo repository.Repository, fwd Forwarder, log *logger.Logger) *Service {
	return &Service{repo: repo, fwd: fwd, log: log}
}

// SubmitEvent runs the full pipeline for one raw ticket action: validate,
// forward to the partner system when the action mutates partner-owned state,
// then append the audit event. Forwarding and the audit write are separate
// failure domains: a forward failure returns before anything is stored, and
// an append failure after a successful forward surfaces as a persistence
// error while the partner-side change stands.
func (s *Service) SubmitEvent(ctx context.Context, rawTicketID any, action string, rawPayload any, source string, actor Actor) (repository.Event, error) {
	cmd, err := actions.ValidateTicket(rawTicketID, action, rawPayload)
	if err != nil {
		return repository.Event{}, err
	}

	forwarded, err := s.forward(ctx, cmd)
	if err != nil {
		return repository.Event{}, err
	}

	event, err := s.repo.AppendEvent(ctx, cmd.TicketID, repository.EventDraft{
		Action:     cmd.Command.ActionID(),
		Source:     normalizeSource(source),
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		ActorName:  actor.DisplayName,
		Payload:    cmd.Command.EventPayload(),
	})
	if err != nil {
		if forwarded {
			return repository.Event{}, apperr.Wrap(apperr.KindInternal,
				"ticket updated upstream but audit event could not be stored", err)
		}
		return repository.Event{}, err
	}

	s.log.Info("ticket action applied",
		"ticketId", cmd.TicketID.String(),
		"action", cmd.Command.ActionID(),
		"forwarded", forwarded,
		"actor", actor.Email,
	)
	return event, nil
}

// forward pushes the command to the partner system when the action touches
// partner-owned state. Returns whether a forward actually happened.
func (s *Service) forward(ctx context.Context, cmd actions.TicketCommand) (bool, error) {
	call, ok := s.forwardCall(cmd)
	if !ok {
		return false, nil
	}
	if s.fwd == nil {
		// No partner configured: record the intent locally and move on.
		s.log.Warn("partner forwarding disabled, recording audit event only",
			"ticketId", cmd.TicketID.String(), "action", cmd.Command.ActionID())
		return false, nil
	}
	if err := call(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// forwardCall resolves which partner call a command maps to. Tag and field
// mutations and closes are always forwarded; any other action carrying
// resolution or description text is treated as a field update, since those
// fields live in the partner system.
func (s *Service) forwardCall(cmd actions.TicketCommand) (func(context.Context) error, bool) {
	ticketID := cmd.TicketID

	switch c := cmd.Command.(type) {
	case actions.AddTicketTags:
		return func(ctx context.Context) error { return s.fwd.AddTags(ctx, ticketID, c.Tags) }, true

	case actions.RemoveTicketTags:
		return func(ctx context.Context) error { return s.fwd.RemoveTags(ctx, ticketID, c.Tags) }, true

	case actions.CloseTicket:
		resolution := extraString(c.Extra, "resolution")
		if resolution == "" {
			resolution = c.Reason
		}
		return func(ctx context.Context) error { return s.fwd.Close(ctx, ticketID, resolution) }, true

	case actions.UpdateTicketFields:
		return func(ctx context.Context) error { return s.fwd.UpdateFields(ctx, ticketID, c.Changed) }, true

	default:
		fields := partnerTextFields(cmd.Command.EventPayload())
		if len(fields) == 0 {
			return nil, false
		}
		return func(ctx context.Context) error { return s.fwd.UpdateFields(ctx, ticketID, fields) }, true
	}
}

// ListEvents returns a ticket's audit timeline, newest first.
func (s *Service) ListEvents(ctx context.Context, ticketID uuid.UUID, limit int) ([]repository.Event, error) {
	if limit <= 0 {
		limit = defaultTimelineLimit
	}
	if limit > maxTimelineLimit {
		limit = maxTimelineLimit
	}
	return s.repo.ListEvents(ctx, ticketID, limit)
}

// ActivitySummary exposes the ticket-side event aggregates.
func (s *Service) ActivitySummary(ctx context.Context, from, to time.Time) (repository.ActivitySummary, error) {
	return s.repo.ActivitySummary(ctx, from, to)
}

func partnerTextFields(payload map[string]any) map[string]string {
	fields := make(map[string]string)
	for _, key := range []string{"resolution", "description"} {
		if v, ok := payload[key].(string); ok && v != "" {
			fields[key] = v
		}
	}
	return fields
}

func extraString(extra map[string]any, key string) string {
	v, _ := extra[key].(string)
	return v
}

func normalizeSource(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return DefaultSource
	}
	return source
}
