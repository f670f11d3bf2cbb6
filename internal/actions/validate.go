package actions

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// ValidateLead turns a raw lead action submission into a typed LeadCommand.
// It is deterministic and has no side effects: catalog lookup, defaults
// merge, payload normalization, entity id parsing and required-field checks,
// in that order. Nothing downstream runs on a rejected submission.
func ValidateLead(rawID any, action string, rawPayload any) (LeadCommand, error) {
	def, payload, err := resolve(KindLead, action, rawPayload)
	if err != nil {
		return LeadCommand{}, err
	}

	leadID, err := parseLeadID(rawID)
	if err != nil {
		return LeadCommand{}, err
	}

	if err := checkRequired(def, payload); err != nil {
		return LeadCommand{}, err
	}

	return LeadCommand{LeadID: leadID, Command: buildLeadCommand(def.ID, payload)}, nil
}

// ValidateTicket is the ticket-side counterpart of ValidateLead.
func ValidateTicket(rawID any, action string, rawPayload any) (TicketCommand, error) {
	def, payload, err := resolve(KindTicket, action, rawPayload)
	if err != nil {
		return TicketCommand{}, err
	}

	ticketID, err := parseTicketID(rawID)
	if err != nil {
		return TicketCommand{}, err
	}

	if err := checkRequired(def, payload); err != nil {
		return TicketCommand{}, err
	}

	return TicketCommand{TicketID: ticketID, Command: buildTicketCommand(def.ID, payload)}, nil
}

// resolve looks the action up in the kind's catalog, merges the action's
// default payload under the caller payload (caller values win) and runs the
// normalizer.
func resolve(kind EntityKind, action string, rawPayload any) (Definition, Payload, error) {
	action = strings.TrimSpace(action)
	def, ok := Lookup(kind, action)
	if !ok {
		return Definition{}, Payload{}, apperr.Validation("action not allowed").
			WithDetails(map[string]any{"action": action, "entityKind": string(kind)})
	}

	supplied, err := asObject(rawPayload)
	if err != nil {
		return Definition{}, Payload{}, err
	}

	merged := make(map[string]any, len(def.Defaults)+len(supplied))
	for key, value := range def.Defaults {
		merged[key] = value
	}
	for key, value := range supplied {
		merged[key] = value
	}

	payload, err := Normalize(merged)
	if err != nil {
		return Definition{}, Payload{}, err
	}
	return def, payload, nil
}

func asObject(rawPayload any) (map[string]any, error) {
	if rawPayload == nil {
		return nil, nil
	}
	obj, ok := rawPayload.(map[string]any)
	if !ok {
		return nil, apperr.Validation("payload must be an object")
	}
	return obj, nil
}

// parseLeadID accepts a JSON number or numeric string and requires a
// positive integer.
func parseLeadID(rawID any) (int64, error) {
	invalid := apperr.Validation("leadId must be a positive integer")

	var id int64
	switch t := rawID.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, invalid
		}
		id = int64(t)
	case int:
		id = int64(t)
	case int64:
		id = t
	case json.Number:
		parsed, err := t.Int64()
		if err != nil {
			return 0, invalid
		}
		id = parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, invalid
		}
		id = parsed
	default:
		return 0, invalid
	}

	if id <= 0 {
		return 0, invalid
	}
	return id, nil
}

// parseTicketID requires UUID v1-v5 syntax.
func parseTicketID(rawID any) (uuid.UUID, error) {
	invalid := apperr.Validation("ticketId must be a valid UUID")

	s, ok := rawID.(string)
	if !ok {
		return uuid.Nil, invalid
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, invalid
	}
	if v := id.Version(); v < 1 || v > 5 {
		return uuid.Nil, invalid
	}
	return id, nil
}

// checkRequired asserts each required payload field is present and non-empty
// after normalization, naming the offending field in the rejection.
func checkRequired(def Definition, p Payload) error {
	for _, required := range def.Requires {
		switch required {
		case RequireNote:
			if p.Note == "" {
				return apperr.Validation(fmt.Sprintf("note is required for %s", def.ID))
			}
		case RequireReason:
			if p.Reason == "" {
				return apperr.Validation(fmt.Sprintf("reason required for %s", def.ID))
			}
		case RequireTags:
			if len(p.Tags) == 0 {
				return apperr.Validation(fmt.Sprintf("tags required for %s", def.ID))
			}
		case RequireAssignee:
			if p.Assignee == "" {
				return apperr.Validation(fmt.Sprintf("assignee required for %s", def.ID))
			}
		case RequireServiceOrder:
			if p.OS == "" || p.PartsValue == nil || p.LaborValue == nil {
				return apperr.Validation(fmt.Sprintf("os and value required for %s", def.ID))
			}
		case RequireChangedFields:
			if len(p.ChangedFields) == 0 {
				return apperr.Validation(fmt.Sprintf("changedFields required for %s", def.ID))
			}
		}
	}
	return nil
}

func buildLeadCommand(actionID string, p Payload) Command {
	switch actionID {
	case ActionAssign:
		return AssignLead{Assignee: p.Assignee, Extra: p.rest("assignee")}
	case ActionRegisterContact:
		return RegisterContact{Note: p.Note, Method: p.Method, Extra: p.rest("note", "method")}
	case ActionDiscard:
		return DiscardLead{Reason: p.Reason, Extra: p.rest("reason")}
	case ActionCloseWithoutOS:
		return CloseLeadWithoutOS{Reason: p.Reason, Extra: p.rest("reason")}
	case ActionCloseWithOS:
		return CloseLeadWithOS{
			OSNumber:   p.OS,
			PartsValue: *p.PartsValue,
			LaborValue: *p.LaborValue,
			Note:       p.Note,
			Extra:      p.rest("os", "partsValue", "laborValue", "note"),
		}
	case ActionConvertToTicket:
		return ConvertLeadToTicket{Extra: p.rest()}
	default:
		// Unreachable: the catalog is closed and resolve already vetted the id.
		panic("unknown lead action: " + actionID)
	}
}

func buildTicketCommand(actionID string, p Payload) Command {
	switch actionID {
	case ActionView:
		return ViewTicket{Method: p.Method, Extra: p.rest("method")}
	case ActionAddNote:
		return AddTicketNote{Note: p.Note, Extra: p.rest("note")}
	case ActionAssign:
		return AssignTicket{Assignee: p.Assignee, Extra: p.rest("assignee")}
	case ActionAddTags:
		return AddTicketTags{Tags: p.Tags, Extra: p.rest("tags")}
	case ActionRemoveTags:
		return RemoveTicketTags{Tags: p.Tags, Extra: p.rest("tags")}
	case ActionClose:
		return CloseTicket{Reason: p.Reason, Extra: p.rest("reason")}
	case ActionUpdateField:
		return UpdateTicketFields{Changed: p.ChangedFields, Extra: p.rest("changedFields")}
	case ActionExternalUpdate:
		return ExternalTicketUpdate{Changed: p.ChangedFields, Extra: p.rest("changedFields")}
	default:
		panic("unknown ticket action: " + actionID)
	}
}
