package actions

import (
	"strings"
	"testing"

	"salesdesk_backend/platform/apperr"
)

func TestValidateLead_UnknownActionAlwaysRejected(t *testing.T) {
	payloads := []any{
		nil,
		map[string]any{},
		map[string]any{"note": "anything"},
	}
	for _, payload := range payloads {
		_, err := ValidateLead(1.0, "explode", payload)
		if err == nil {
			t.Fatal("expected rejection for unknown action")
		}
		if !strings.Contains(err.Error(), "action not allowed") {
			t.Fatalf("expected 'action not allowed', got %q", err.Error())
		}
	}

	// Ticket actions are not valid lead actions and vice versa.
	if _, err := ValidateLead(1.0, ActionAddTags, map[string]any{"tags": []any{"x"}}); err == nil {
		t.Fatal("add_tags is not in the lead catalog")
	}
	if _, err := ValidateTicket("7f9c24e5-2b31-4bce-9f3d-8a2c5a9d1f11", ActionCloseWithOS, nil); err == nil {
		t.Fatal("close_with_os is not in the ticket catalog")
	}
}

func TestValidateLead_CloseWithOS(t *testing.T) {
	cmd, err := ValidateLead(42.0, ActionCloseWithOS, map[string]any{
		"os":         "123",
		"partsValue": "1.200,50",
		"laborValue": 200.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.LeadID != 42 {
		t.Fatalf("expected lead id 42, got %d", cmd.LeadID)
	}

	closeCmd, ok := cmd.Command.(CloseLeadWithOS)
	if !ok {
		t.Fatalf("expected CloseLeadWithOS, got %T", cmd.Command)
	}
	if closeCmd.OSNumber != "123" {
		t.Fatalf("expected os 123, got %q", closeCmd.OSNumber)
	}
	if closeCmd.PartsValue != 1200.50 {
		t.Fatalf("expected partsValue 1200.50, got %v", closeCmd.PartsValue)
	}
	if closeCmd.LaborValue != 200 {
		t.Fatalf("expected laborValue 200, got %v", closeCmd.LaborValue)
	}

	// The audit payload never carries the raw money fields.
	payload := closeCmd.EventPayload()
	for _, key := range []string{"os", "partsValue", "laborValue", "note"} {
		if _, present := payload[key]; present {
			t.Fatalf("event payload must not contain %q", key)
		}
	}
}

func TestValidateLead_CloseWithOSRejectsBadValues(t *testing.T) {
	cases := []map[string]any{
		{"os": "", "partsValue": -1.0, "laborValue": 0.0},
		{"os": "123", "laborValue": 0.0},
		{"os": "123", "partsValue": 1.0},
		{"os": "123", "partsValue": "abc", "laborValue": 0.0},
	}
	for _, payload := range cases {
		if _, err := ValidateLead(1.0, ActionCloseWithOS, payload); err == nil {
			t.Fatalf("expected rejection for payload %v", payload)
		}
	}
}

func TestValidateLead_RequiredFieldMessagesNameTheField(t *testing.T) {
	cases := []struct {
		action  string
		payload map[string]any
		want    string
	}{
		{ActionRegisterContact, nil, "note is required for register_contact"},
		{ActionAssign, nil, "assignee required for assign"},
		{ActionDiscard, nil, "reason required for discard"},
		{ActionCloseWithoutOS, nil, "reason required for close_without_os"},
		{ActionCloseWithOS, nil, "os and value required for close_with_os"},
	}
	for _, tc := range cases {
		_, err := ValidateLead(1.0, tc.action, tc.payload)
		if err == nil {
			t.Fatalf("%s: expected rejection", tc.action)
		}
		if err.Error() != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.action, tc.want, err.Error())
		}
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation kind", tc.action)
		}
	}
}

func TestValidateTicket_RequiredFields(t *testing.T) {
	const ticketID = "7f9c24e5-2b31-4bce-9f3d-8a2c5a9d1f11"

	_, err := ValidateTicket(ticketID, ActionAddTags, map[string]any{"tags": []any{" ", ""}})
	if err == nil || err.Error() != "tags required for add_tags" {
		t.Fatalf("expected tags rejection, got %v", err)
	}

	_, err = ValidateTicket(ticketID, ActionUpdateField, map[string]any{
		"changedFields": map[string]any{" ": "x", "status": "  "},
	})
	if err == nil || err.Error() != "changedFields required for update_field" {
		t.Fatalf("expected changedFields rejection, got %v", err)
	}

	cmd, err := ValidateTicket(ticketID, ActionUpdateField, map[string]any{
		"changedFields": map[string]any{"status": "em_andamento"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	update, ok := cmd.Command.(UpdateTicketFields)
	if !ok {
		t.Fatalf("expected UpdateTicketFields, got %T", cmd.Command)
	}
	if update.Changed["status"] != "em_andamento" {
		t.Fatalf("expected surviving entry, got %v", update.Changed)
	}
}

func TestValidateLead_LeadIDParsing(t *testing.T) {
	for _, bad := range []any{0.0, -1.0, 1.5, "abc", "", nil, true} {
		_, err := ValidateLead(bad, ActionConvertToTicket, nil)
		if err == nil {
			t.Fatalf("expected rejection for leadId %v", bad)
		}
		if err.Error() != "leadId must be a positive integer" {
			t.Fatalf("expected leadId message, got %q", err.Error())
		}
	}

	cmd, err := ValidateLead("17", ActionConvertToTicket, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.LeadID != 17 {
		t.Fatalf("expected 17, got %d", cmd.LeadID)
	}
}

func TestValidateTicket_TicketIDParsing(t *testing.T) {
	for _, bad := range []any{"not-a-uuid", "", nil, 12.0, "00000000-0000-0000-0000-000000000000"} {
		_, err := ValidateTicket(bad, ActionView, nil)
		if err == nil {
			t.Fatalf("expected rejection for ticketId %v", bad)
		}
		if err.Error() != "ticketId must be a valid UUID" {
			t.Fatalf("expected ticketId message, got %q", err.Error())
		}
	}
}

func TestValidateTicket_DefaultPayloadMergedUnderCaller(t *testing.T) {
	const ticketID = "7f9c24e5-2b31-4bce-9f3d-8a2c5a9d1f11"

	cmd, err := ValidateTicket(ticketID, ActionView, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, ok := cmd.Command.(ViewTicket)
	if !ok {
		t.Fatalf("expected ViewTicket, got %T", cmd.Command)
	}
	if view.Method != "web" {
		t.Fatalf("expected default method web, got %q", view.Method)
	}

	cmd, err = ValidateTicket(ticketID, ActionView, map[string]any{"method": "mobile"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Command.(ViewTicket).Method != "mobile" {
		t.Fatal("caller-supplied method should win over the default")
	}
}

func TestValidateLead_PayloadMustBeObject(t *testing.T) {
	_, err := ValidateLead(1.0, ActionDiscard, "not an object")
	if err == nil || err.Error() != "payload must be an object" {
		t.Fatalf("expected object rejection, got %v", err)
	}
}

func TestValidateLead_ConvertToTicketAcceptedThoughUIDisabled(t *testing.T) {
	def, ok := Lookup(KindLead, ActionConvertToTicket)
	if !ok {
		t.Fatal("convert_to_ticket must be in the lead catalog")
	}
	if def.UIEnabled {
		t.Fatal("convert_to_ticket should be hidden in the UI")
	}

	cmd, err := ValidateLead(5.0, ActionConvertToTicket, map[string]any{"origin": "kanban"})
	if err != nil {
		t.Fatalf("direct submission must still validate: %v", err)
	}
	if cmd.Command.EventPayload()["origin"] != "kanban" {
		t.Fatal("pass-through keys should survive into the event payload")
	}
}

func TestCatalog_ClosedAndExhaustive(t *testing.T) {
	for _, kind := range []EntityKind{KindLead, KindTicket} {
		defs := DefinitionsFor(kind)
		if len(defs) == 0 {
			t.Fatalf("%s catalog must not be empty", kind)
		}
		seen := make(map[string]bool, len(defs))
		for _, def := range defs {
			if seen[def.ID] {
				t.Fatalf("%s catalog has duplicate id %q", kind, def.ID)
			}
			seen[def.ID] = true
		}
	}
	if DefinitionsFor(EntityKind("bogus")) != nil {
		t.Fatal("unknown kinds have no catalog")
	}
}
