package actions

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize_TagsDedupAndEmptyRemoval(t *testing.T) {
	p, err := Normalize(map[string]any{
		"tags": []any{"vip", "vip", "  ", "urgente"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"vip", "urgente"}
	if !reflect.DeepEqual(p.Tags, want) {
		t.Fatalf("expected tags %v, got %v", want, p.Tags)
	}

	// Normalizing the result again yields the same list.
	again, err := Normalize(map[string]any{"tags": p.Tags})
	if err != nil {
		t.Fatalf("unexpected error on re-normalize: %v", err)
	}
	if !reflect.DeepEqual(again.Tags, want) {
		t.Fatalf("normalization is not idempotent: got %v", again.Tags)
	}
}

func TestNormalize_TagsCappedAtTwenty(t *testing.T) {
	raw := make([]any, 0, 30)
	for i := 0; i < 30; i++ {
		raw = append(raw, "tag-"+strings.Repeat("x", i+1))
	}
	p, err := Normalize(map[string]any{"tags": raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Tags) != 20 {
		t.Fatalf("expected 20 tags, got %d", len(p.Tags))
	}
}

func TestNormalize_TagTooLongRejected(t *testing.T) {
	_, err := Normalize(map[string]any{"tags": []any{strings.Repeat("a", 51)}})
	if err == nil {
		t.Fatal("expected error for oversized tag")
	}
}

func TestNormalize_NoteLengthCap(t *testing.T) {
	if _, err := Normalize(map[string]any{"note": strings.Repeat("a", 2000)}); err != nil {
		t.Fatalf("2000-char note should pass: %v", err)
	}
	if _, err := Normalize(map[string]any{"note": strings.Repeat("a", 2001)}); err == nil {
		t.Fatal("expected error for 2001-char note")
	}
	if _, err := Normalize(map[string]any{"reason": strings.Repeat("a", 501)}); err == nil {
		t.Fatal("expected error for 501-char reason")
	}
}

func TestNormalize_NoteTrimmedAndOmittedWhenBlank(t *testing.T) {
	p, err := Normalize(map[string]any{"note": "  hello  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Note != "hello" {
		t.Fatalf("expected trimmed note, got %q", p.Note)
	}

	p, err = Normalize(map[string]any{"note": "   "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Note != "" {
		t.Fatalf("blank note should normalize to absent, got %q", p.Note)
	}
}

func TestNormalize_MoneyLocaleParsing(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  float64
	}{
		{"plain number", 200.0, 200},
		{"integer string", "200", 200},
		{"comma decimal", "12,5", 12.5},
		{"dot thousands comma decimal", "1.200,50", 1200.50},
		{"currency prefix", "R$ 1.200,50", 1200.50},
		{"dot decimal", "1200.50", 1200.50},
		{"zero", 0.0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Normalize(map[string]any{"partsValue": tc.input})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.PartsValue == nil {
				t.Fatal("expected value, got nil")
			}
			if *p.PartsValue != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, *p.PartsValue)
			}
		})
	}
}

func TestNormalize_MoneyInvalidIsDistinctFromMissing(t *testing.T) {
	// Absent: no error, nil value.
	p, err := Normalize(map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.LaborValue != nil {
		t.Fatal("absent laborValue should be nil")
	}

	// Blank string carries no value either.
	p, err = Normalize(map[string]any{"laborValue": "  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.LaborValue != nil {
		t.Fatal("blank laborValue should be nil")
	}

	// Present but invalid: an error.
	for _, bad := range []any{-1.0, "-5", "abc", true} {
		if _, err := Normalize(map[string]any{"laborValue": bad}); err == nil {
			t.Fatalf("expected error for laborValue=%v", bad)
		}
	}
}

func TestNormalize_ChangedFieldsDropsEmptyEntries(t *testing.T) {
	p, err := Normalize(map[string]any{
		"changedFields": map[string]any{" ": "x", "status": "  "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.ChangedFields) != 0 {
		t.Fatalf("expected no surviving entries, got %v", p.ChangedFields)
	}

	p, err = Normalize(map[string]any{
		"changedFields": map[string]any{"status": "em_andamento"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ChangedFields["status"] != "em_andamento" {
		t.Fatalf("expected status entry, got %v", p.ChangedFields)
	}
}

func TestNormalize_UnknownKeysPassThrough(t *testing.T) {
	p, err := Normalize(map[string]any{"customField": 42.0, "note": "n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Extra["customField"] != 42.0 {
		t.Fatalf("expected customField to pass through, got %v", p.Extra)
	}
}

func TestNormalize_OSReferenceCoercion(t *testing.T) {
	p, err := Normalize(map[string]any{"os": 123.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.OS != "123" {
		t.Fatalf("expected os \"123\", got %q", p.OS)
	}
}
