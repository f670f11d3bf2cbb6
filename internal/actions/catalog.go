// Package actions implements the action validation engine: the per-entity
// action catalog, payload normalization, and the input validator that turns
// raw dashboard submissions into typed commands.
package actions

// EntityKind selects which action catalog and validation rules apply.
type EntityKind string

const (
	// KindLead identifies sales lead entities (numeric IDs).
	KindLead EntityKind = "lead"
	// KindTicket identifies partner support tickets (UUID IDs).
	KindTicket EntityKind = "ticket"
)

// Action IDs for leads.
const (
	ActionAssign          = "assign"
	ActionRegisterContact = "register_contact"
	ActionDiscard         = "discard"
	ActionCloseWithoutOS  = "close_without_os"
	ActionCloseWithOS     = "close_with_os"
	ActionConvertToTicket = "convert_to_ticket"
)

// Action IDs for tickets. ActionAssign is shared with leads.
const (
	ActionView           = "view"
	ActionAddNote        = "add_note"
	ActionAddTags        = "add_tags"
	ActionRemoveTags     = "remove_tags"
	ActionClose          = "close"
	ActionUpdateField    = "update_field"
	ActionExternalUpdate = "external_update_detected"
)

// RequiredField flags a normalized payload field an action demands.
type RequiredField string

const (
	RequireNote          RequiredField = "note"
	RequireReason        RequiredField = "reason"
	RequireTags          RequiredField = "tags"
	RequireAssignee      RequiredField = "assignee"
	RequireServiceOrder  RequiredField = "os" // os number plus parts and labor values
	RequireChangedFields RequiredField = "changedFields"
)

// Definition describes one catalog entry: an action an actor may perform
// against an entity of a given kind.
type Definition struct {
	ID string
	// Requires lists payload fields that must be present and non-empty
	// after normalization.
	Requires []RequiredField
	// Defaults is merged under the caller-supplied payload; caller values win.
	Defaults map[string]any
	// Forward marks ticket actions that propagate to the partner API.
	Forward bool
	// UIEnabled is false for actions hidden in the dashboard. The engine
	// still accepts them when submitted directly.
	UIEnabled bool
}

// The catalogs are static: loaded once at init, never mutated. An action id
// absent from its kind's catalog is always rejected.
var leadCatalog = []Definition{
	{ID: ActionAssign, Requires: []RequiredField{RequireAssignee}, UIEnabled: true},
	{ID: ActionRegisterContact, Requires: []RequiredField{RequireNote}, Defaults: map[string]any{"method": "phone"}, UIEnabled: true},
	{ID: ActionDiscard, Requires: []RequiredField{RequireReason}, UIEnabled: true},
	{ID: ActionCloseWithoutOS, Requires: []RequiredField{RequireReason}, UIEnabled: true},
	{ID: ActionCloseWithOS, Requires: []RequiredField{RequireServiceOrder}, UIEnabled: true},
	{ID: ActionConvertToTicket, UIEnabled: false},
}

var ticketCatalog = []Definition{
	{ID: ActionView, Defaults: map[string]any{"method": "web"}, UIEnabled: true},
	{ID: ActionAddNote, Requires: []RequiredField{RequireNote}, UIEnabled: true},
	{ID: ActionAssign, Requires: []RequiredField{RequireAssignee}, UIEnabled: true},
	{ID: ActionAddTags, Requires: []RequiredField{RequireTags}, Forward: true, UIEnabled: true},
	{ID: ActionRemoveTags, Requires: []RequiredField{RequireTags}, Forward: true, UIEnabled: true},
	{ID: ActionClose, Forward: true, UIEnabled: true},
	{ID: ActionUpdateField, Requires: []RequiredField{RequireChangedFields}, Forward: true, UIEnabled: true},
	{ID: ActionExternalUpdate, UIEnabled: false},
}

var catalogIndex = buildIndex()

func buildIndex() map[EntityKind]map[string]Definition {
	index := make(map[EntityKind]map[string]Definition, 2)
	for kind, defs := range map[EntityKind][]Definition{KindLead: leadCatalog, KindTicket: ticketCatalog} {
		byID := make(map[string]Definition, len(defs))
		for _, def := range defs {
			byID[def.ID] = def
		}
		index[kind] = byID
	}
	return index
}

// DefinitionsFor returns the action catalog for an entity kind. The returned
// slice is a copy; callers may not mutate the catalog.
func DefinitionsFor(kind EntityKind) []Definition {
	var src []Definition
	switch kind {
	case KindLead:
		src = leadCatalog
	case KindTicket:
		src = ticketCatalog
	default:
		return nil
	}
	out := make([]Definition, len(src))
	copy(out, src)
	return out
}

// Lookup resolves an action id within a kind's catalog.
func Lookup(kind EntityKind, actionID string) (Definition, bool) {
	byID, ok := catalogIndex[kind]
	if !ok {
		return Definition{}, false
	}
	def, ok := byID[actionID]
	return def, ok
}
