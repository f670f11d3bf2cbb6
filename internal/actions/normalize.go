package actions

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"salesdesk_backend/platform/apperr"
)

// Field bounds for recognized payload fields.
const (
	noteMaxLen   = 2000
	reasonMaxLen = 500
	tagMaxLen    = 50
	maxTags      = 20
)

// Payload holds the normalized, bounded values of the recognized payload
// fields. A nil/zero field means the caller did not supply it; absence is
// never an error at this stage. Unrecognized keys pass through in Extra.
type Payload struct {
	Note          string
	Reason        string
	Tags          []string
	Assignee      string
	OS            string
	PartsValue    *float64
	LaborValue    *float64
	Method        string
	ChangedFields map[string]string
	Extra         map[string]any
}

// Normalize coerces an untyped payload object into a Payload, applying each
// recognized field's rule independently. It never looks at which action is
// being performed.
func Normalize(raw map[string]any) (Payload, error) {
	var p Payload

	for key, value := range raw {
		var err error
		switch key {
		case "note":
			p.Note, err = normalizeText(key, value, noteMaxLen)
		case "reason":
			p.Reason, err = normalizeText(key, value, reasonMaxLen)
		case "tags":
			p.Tags, err = normalizeTags(value)
		case "assignee":
			p.Assignee, err = normalizeText(key, value, 0)
		case "os":
			p.OS, err = normalizeReference(key, value)
		case "partsValue":
			p.PartsValue, err = normalizeMoney(key, value)
		case "laborValue":
			p.LaborValue, err = normalizeMoney(key, value)
		case "method":
			p.Method, err = normalizeText(key, value, 0)
		case "changedFields":
			p.ChangedFields, err = normalizeChangedFields(value)
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]any)
			}
			p.Extra[key] = value
		}
		if err != nil {
			return Payload{}, err
		}
	}

	return p, nil
}

// rest returns the normalized fields that the command variant did not consume,
// merged with the pass-through keys. Used to populate the variant's Extra map.
func (p Payload) rest(consumed ...string) map[string]any {
	taken := make(map[string]bool, len(consumed))
	for _, key := range consumed {
		taken[key] = true
	}

	out := make(map[string]any)
	for key, value := range p.Extra {
		out[key] = value
	}
	if p.Note != "" && !taken["note"] {
		out["note"] = p.Note
	}
	if p.Reason != "" && !taken["reason"] {
		out["reason"] = p.Reason
	}
	if len(p.Tags) > 0 && !taken["tags"] {
		out["tags"] = p.Tags
	}
	if p.Assignee != "" && !taken["assignee"] {
		out["assignee"] = p.Assignee
	}
	if p.OS != "" && !taken["os"] {
		out["os"] = p.OS
	}
	if p.PartsValue != nil && !taken["partsValue"] {
		out["partsValue"] = *p.PartsValue
	}
	if p.LaborValue != nil && !taken["laborValue"] {
		out["laborValue"] = *p.LaborValue
	}
	if p.Method != "" && !taken["method"] {
		out["method"] = p.Method
	}
	if len(p.ChangedFields) > 0 && !taken["changedFields"] {
		out["changedFields"] = p.ChangedFields
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeText trims a free-form text field. maxLen of 0 means unbounded.
// An empty result is treated as absent, never stored as "".
func normalizeText(field string, value any, maxLen int) (string, error) {
	s, ok := asString(value)
	if !ok {
		return "", apperr.Validation(fmt.Sprintf("%s must be text", field))
	}
	s = strings.TrimSpace(s)
	if maxLen > 0 && len(s) > maxLen {
		return "", apperr.Validation(fmt.Sprintf("%s exceeds maximum length of %d characters", field, maxLen))
	}
	return s, nil
}

// normalizeTags trims entries, drops empties, de-duplicates preserving first
// occurrence and caps the list at maxTags entries.
func normalizeTags(value any) ([]string, error) {
	items, ok := asSlice(value)
	if !ok {
		return nil, apperr.Validation("tags must be a list")
	}

	seen := make(map[string]bool, len(items))
	tags := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := asString(item)
		if !ok {
			return nil, apperr.Validation("tags must be a list of text values")
		}
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		if len(s) > tagMaxLen {
			return nil, apperr.Validation(fmt.Sprintf("tag exceeds maximum length of %d characters", tagMaxLen))
		}
		seen[s] = true
		tags = append(tags, s)
		if len(tags) == maxTags {
			break
		}
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

// normalizeReference accepts an OS reference as text or a bare number.
func normalizeReference(field string, value any) (string, error) {
	switch t := value.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10), nil
		}
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case json.Number:
		return t.String(), nil
	default:
		return "", apperr.Validation(fmt.Sprintf("%s must be text", field))
	}
}

// normalizeMoney parses a monetary amount. Accepts a number directly or a
// string in locale notation: "1.200,50" (dot thousands, comma decimal) and
// "12,5" (comma decimal) both parse. The field is invalid when the result is
// not finite or negative, which is distinct from the field being absent.
func normalizeMoney(field string, value any) (*float64, error) {
	var amount float64

	switch t := value.(type) {
	case float64:
		amount = t
	case int:
		amount = float64(t)
	case int64:
		amount = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("%s must be a number", field))
		}
		amount = f
	case string:
		s := stripCurrency(t)
		if s == "" {
			// A blank string carries no value; treat as absent.
			return nil, nil
		}
		hasComma := strings.Contains(s, ",")
		hasDot := strings.Contains(s, ".")
		switch {
		case hasComma && hasDot:
			// Dot is a thousands separator, comma the decimal mark.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		case hasComma:
			s = strings.Replace(s, ",", ".", 1)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("%s must be a number", field))
		}
		amount = f
	default:
		return nil, apperr.Validation(fmt.Sprintf("%s must be a number", field))
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, apperr.Validation(fmt.Sprintf("%s must be a non-negative amount", field))
	}
	return &amount, nil
}

// normalizeChangedFields keeps only entries where both key and value are
// non-empty after trimming.
func normalizeChangedFields(value any) (map[string]string, error) {
	raw, ok := value.(map[string]any)
	if !ok {
		if typed, isTyped := value.(map[string]string); isTyped {
			raw = make(map[string]any, len(typed))
			for k, v := range typed {
				raw[k] = v
			}
		} else {
			return nil, apperr.Validation("changedFields must be an object")
		}
	}

	fields := make(map[string]string, len(raw))
	for key, item := range raw {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		s, ok := asString(item)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		fields[key] = s
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

// stripCurrency removes currency symbols and spacing, keeping digits,
// separators and sign.
func stripCurrency(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-', r == '+':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func asString(value any) (string, bool) {
	switch t := value.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func asSlice(value any) ([]any, bool) {
	switch t := value.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
