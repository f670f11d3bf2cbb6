package service

import (
	"strings"

	"github.com/google/uuid"

	"salesdesk_backend/internal/actions"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/platform/apperr"
)

// Actor is the authenticated consultant performing an action.
type Actor struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
}

// transitionOutcome is the planned write set for one validated lead command:
// the status mutation, the dependent service order (if any) and the payload
// the audit event will carry. The service order draft leaves ID unset; the
// caller assigns it and injects it into the event payload.
type transitionOutcome struct {
	NewStatus    string
	NewOwner     *string
	ServiceOrder *repository.ServiceOrderDraft
	EventPayload map[string]any
}

// planTransition derives the authoritative mutation for a lead command.
// Pure: no I/O, deterministic given its inputs. Ownership on
// register_contact is the only authorization rule and is checked here,
// after structural validation has already passed, so the failure surfaces
// as 403 rather than 400.
//
// Terminal statuses do not block further commands; late events keep their
// audit trail by design.
func planTransition(cmd actions.Command, lead repository.Lead, actor Actor) (transitionOutcome, error) {
	switch c := cmd.(type) {
	case actions.AssignLead:
		owner := c.Assignee
		return transitionOutcome{
			NewStatus:    domain.StatusAtribuido,
			NewOwner:     &owner,
			EventPayload: c.EventPayload(),
		}, nil

	case actions.RegisterContact:
		if !sameConsultant(lead.Consultor, actor.DisplayName) {
			return transitionOutcome{}, apperr.Forbidden("only the lead's owning consultant can register contact")
		}
		return transitionOutcome{
			NewStatus:    domain.StatusEmContato,
			EventPayload: c.EventPayload(),
		}, nil

	case actions.DiscardLead:
		return transitionOutcome{
			NewStatus:    domain.StatusDescartado,
			EventPayload: c.EventPayload(),
		}, nil

	case actions.CloseLeadWithoutOS:
		return transitionOutcome{
			NewStatus:    domain.StatusFechadoSemOS,
			EventPayload: c.EventPayload(),
		}, nil

	case actions.CloseLeadWithOS:
		// The raw money fields and note move into the service order; the
		// event payload keeps only the order's id (assigned by the caller).
		return transitionOutcome{
			NewStatus: domain.StatusFechadoComOS,
			ServiceOrder: &repository.ServiceOrderDraft{
				OSNumber:   c.OSNumber,
				PartsValue: c.PartsValue,
				LaborValue: c.LaborValue,
				Note:       c.Note,
			},
			EventPayload: c.EventPayload(),
		}, nil

	case actions.ConvertLeadToTicket:
		// Audit-only: status unchanged.
		return transitionOutcome{EventPayload: c.EventPayload()}, nil

	default:
		return transitionOutcome{}, apperr.Internal("unhandled lead command")
	}
}

// sameConsultant compares the lead's owner with the acting consultant's
// display name, trimmed and case-insensitive.
func sameConsultant(owner, actorName string) bool {
	owner = strings.TrimSpace(owner)
	actorName = strings.TrimSpace(actorName)
	return owner != "" && strings.EqualFold(owner, actorName)
}
