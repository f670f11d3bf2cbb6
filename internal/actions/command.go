package actions

import (
	"github.com/google/uuid"
)

// Command is one validated, fully-normalized action. Each catalog action has
// its own variant carrying exactly the fields that action requires, plus an
// Extra map for pass-through keys. Downstream handlers switch on the concrete
// type, so a missing-field bug is a compile error rather than a runtime flag
// check.
type Command interface {
	// ActionID returns the catalog action id.
	ActionID() string
	// EventPayload returns the payload to persist on the audit event.
	EventPayload() map[string]any
}

// LeadCommand is a validated command targeting a lead.
type LeadCommand struct {
	LeadID  int64
	Command Command
}

// TicketCommand is a validated command targeting a partner ticket.
type TicketCommand struct {
	TicketID uuid.UUID
	Command  Command
}

// =============================================================================
// Lead command variants
// =============================================================================

// AssignLead hands the lead to a consultant.
type AssignLead struct {
	Assignee string
	Extra    map[string]any
}

func (c AssignLead) ActionID() string { return ActionAssign }

func (c AssignLead) EventPayload() map[string]any {
	return withExtra(c.Extra, "assignee", c.Assignee)
}

// RegisterContact records a contact attempt by the owning consultant.
type RegisterContact struct {
	Note   string
	Method string
	Extra  map[string]any
}

func (c RegisterContact) ActionID() string { return ActionRegisterContact }

func (c RegisterContact) EventPayload() map[string]any {
	m := withExtra(c.Extra, "note", c.Note)
	if c.Method != "" {
		m["method"] = c.Method
	}
	return m
}

// DiscardLead rejects the lead with a reason.
type DiscardLead struct {
	Reason string
	Extra  map[string]any
}

func (c DiscardLead) ActionID() string { return ActionDiscard }

func (c DiscardLead) EventPayload() map[string]any {
	return withExtra(c.Extra, "reason", c.Reason)
}

// CloseLeadWithoutOS closes the lead without billable work.
type CloseLeadWithoutOS struct {
	Reason string
	Extra  map[string]any
}

func (c CloseLeadWithoutOS) ActionID() string { return ActionCloseWithoutOS }

func (c CloseLeadWithoutOS) EventPayload() map[string]any {
	return withExtra(c.Extra, "reason", c.Reason)
}

// CloseLeadWithOS closes the lead with billable work, creating a service
// order. The raw money fields and note feed the service order record; the
// audit payload never carries them (the transition handler injects the
// created service order id instead).
type CloseLeadWithOS struct {
	OSNumber   string
	PartsValue float64
	LaborValue float64
	Note       string
	Extra      map[string]any
}

func (c CloseLeadWithOS) ActionID() string { return ActionCloseWithOS }

func (c CloseLeadWithOS) EventPayload() map[string]any {
	return withExtra(c.Extra)
}

// ConvertLeadToTicket is an audit-only marker; the catalog hides it in the UI
// but the engine accepts direct submissions.
type ConvertLeadToTicket struct {
	Extra map[string]any
}

func (c ConvertLeadToTicket) ActionID() string { return ActionConvertToTicket }

func (c ConvertLeadToTicket) EventPayload() map[string]any {
	return withExtra(c.Extra)
}

// =============================================================================
// Ticket command variants
// =============================================================================

// ViewTicket records that a consultant opened the ticket.
type ViewTicket struct {
	Method string
	Extra  map[string]any
}

func (c ViewTicket) ActionID() string { return ActionView }

func (c ViewTicket) EventPayload() map[string]any {
	m := withExtra(c.Extra)
	if c.Method != "" {
		m["method"] = c.Method
	}
	return m
}

// AddTicketNote records an internal note; never forwarded.
type AddTicketNote struct {
	Note  string
	Extra map[string]any
}

func (c AddTicketNote) ActionID() string { return ActionAddNote }

func (c AddTicketNote) EventPayload() map[string]any {
	return withExtra(c.Extra, "note", c.Note)
}

// AssignTicket records a local assignment; never forwarded.
type AssignTicket struct {
	Assignee string
	Extra    map[string]any
}

func (c AssignTicket) ActionID() string { return ActionAssign }

func (c AssignTicket) EventPayload() map[string]any {
	return withExtra(c.Extra, "assignee", c.Assignee)
}

// AddTicketTags adds tags upstream.
type AddTicketTags struct {
	Tags  []string
	Extra map[string]any
}

func (c AddTicketTags) ActionID() string { return ActionAddTags }

func (c AddTicketTags) EventPayload() map[string]any {
	return withExtra(c.Extra, "tags", c.Tags)
}

// RemoveTicketTags removes tags upstream.
type RemoveTicketTags struct {
	Tags  []string
	Extra map[string]any
}

func (c RemoveTicketTags) ActionID() string { return ActionRemoveTags }

func (c RemoveTicketTags) EventPayload() map[string]any {
	return withExtra(c.Extra, "tags", c.Tags)
}

// CloseTicket closes the ticket upstream. Resolution or description text,
// when supplied, rides in Extra and is forwarded verbatim.
type CloseTicket struct {
	Reason string
	Extra  map[string]any
}

func (c CloseTicket) ActionID() string { return ActionClose }

func (c CloseTicket) EventPayload() map[string]any {
	m := withExtra(c.Extra)
	if c.Reason != "" {
		m["reason"] = c.Reason
	}
	return m
}

// UpdateTicketFields pushes field changes upstream.
type UpdateTicketFields struct {
	Changed map[string]string
	Extra   map[string]any
}

func (c UpdateTicketFields) ActionID() string { return ActionUpdateField }

func (c UpdateTicketFields) EventPayload() map[string]any {
	return withExtra(c.Extra, "changedFields", c.Changed)
}

// ExternalTicketUpdate records a change detected in the partner system;
// audit-only by definition.
type ExternalTicketUpdate struct {
	Changed map[string]string
	Extra   map[string]any
}

func (c ExternalTicketUpdate) ActionID() string { return ActionExternalUpdate }

func (c ExternalTicketUpdate) EventPayload() map[string]any {
	m := withExtra(c.Extra)
	if len(c.Changed) > 0 {
		m["changedFields"] = c.Changed
	}
	return m
}

// withExtra copies the extension map and sets the given key/value pairs.
func withExtra(extra map[string]any, pairs ...any) map[string]any {
	m := make(map[string]any, len(extra)+len(pairs)/2)
	for k, v := range extra {
		m[k] = v
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i].(string)] = pairs[i+1]
	}
	return m
}
