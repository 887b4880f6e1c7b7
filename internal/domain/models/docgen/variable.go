package docgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// VariableType describes how a variable is entered and validated
type VariableType string

const (
	VariableTypeText     VariableType = "text"
	VariableTypeTextarea VariableType = "textarea"
	VariableTypeNumber   VariableType = "number"
	VariableTypeCurrency VariableType = "currency"
	VariableTypeDate     VariableType = "date"
	VariableTypeSelect   VariableType = "select"
)

// VariableTypes lists every valid VariableType
var VariableTypes = []interface{}{
	VariableTypeText,
	VariableTypeTextarea,
	VariableTypeNumber,
	VariableTypeCurrency,
	VariableTypeDate,
	VariableTypeSelect,
}

// VariableSource tells the UI where a value is auto-populated from
type VariableSource string

const (
	VariableSourceManual  VariableSource = "manual"
	VariableSourceClient  VariableSource = "client"
	VariableSourceProject VariableSource = "project"
	VariableSourceUser    VariableSource = "user"
	VariableSourceSystem  VariableSource = "system"
)

// VariableSources lists every valid VariableSource
var VariableSources = []interface{}{
	VariableSourceManual,
	VariableSourceClient,
	VariableSourceProject,
	VariableSourceUser,
	VariableSourceSystem,
}

// VariableDefinition declares one placeholder of a template
type VariableDefinition struct {
	Key          string         `json:"key"`
	Label        string         `json:"label"`
	Type         VariableType   `json:"type"`
	Source       VariableSource `json:"source"`
	Required     bool           `json:"required"`
	DefaultValue *string        `json:"defaultValue,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Options      []string       `json:"options,omitempty"`
}

// ValueKind tags the variant held by a Value
type ValueKind string

const (
	ValueKindText   ValueKind = "text"
	ValueKindNumber ValueKind = "number"
	ValueKindBool   ValueKind = "bool"
)

// Value is a variable value: text, number or boolean.
// The zero Value is "null" and renders as the empty string.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
}

// Text creates a text value
func Text(s string) Value { return Value{Kind: ValueKindText, Text: s} }

// Number creates a numeric value
func Number(n float64) Value { return Value{Kind: ValueKindNumber, Number: n} }

// Bool creates a boolean value
func Bool(b bool) Value { return Value{Kind: ValueKindBool, Bool: b} }

// IsNull reports whether the value carries nothing
func (v Value) IsNull() bool { return v.Kind == "" }

// String renders the value for substitution
func (v Value) String() string {
	switch v.Kind {
	case ValueKindText:
		return v.Text
	case ValueKindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValueKindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// MarshalJSON encodes the value as a bare JSON scalar
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueKindText:
		return json.Marshal(v.Text)
	case ValueKindNumber:
		return json.Marshal(v.Number)
	case ValueKindBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON string, number, boolean or null
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*v = Value{}
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}

	switch x := raw.(type) {
	case string:
		*v = Text(x)
	case float64:
		*v = Number(x)
	case bool:
		*v = Bool(x)
	default:
		return fmt.Errorf("variable value must be a string, number or boolean")
	}
	return nil
}

// Variables maps placeholder keys to values
type Variables map[string]Value

// Clone returns a shallow copy (Values are immutable)
func (v Variables) Clone() Variables {
	out := make(Variables, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Merge copies every entry of other into v, overwriting existing keys
func (v Variables) Merge(other Variables) {
	for k, val := range other {
		v[k] = val
	}
}

// Coerce validates a raw value against its definition and returns the
// normalized value. Empty values pass through; Required is enforced over the
// whole mapping by the generator.
func (d *VariableDefinition) Coerce(raw Value) (Value, error) {
	if raw.IsNull() || (raw.Kind == ValueKindText && strings.TrimSpace(raw.Text) == "") {
		return raw, nil
	}

	switch d.Type {
	case VariableTypeNumber:
		switch raw.Kind {
		case ValueKindNumber:
			return raw, nil
		case ValueKindText:
			n, err := strconv.ParseFloat(strings.TrimSpace(raw.Text), 64)
			if err != nil {
				return Value{}, fmt.Errorf("%s must be a number", d.Key)
			}
			return Number(n), nil
		}
		return Value{}, fmt.Errorf("%s must be a number", d.Key)

	case VariableTypeCurrency:
		switch raw.Kind {
		case ValueKindNumber:
			return raw, nil
		case ValueKindText:
			if _, err := ParseAmount(raw.Text); err != nil {
				return Value{}, fmt.Errorf("%s must be an amount", d.Key)
			}
			return raw, nil
		}
		return Value{}, fmt.Errorf("%s must be an amount", d.Key)

	case VariableTypeDate:
		if raw.Kind != ValueKindText {
			return Value{}, fmt.Errorf("%s must be a date", d.Key)
		}
		if _, err := ParseDate(raw.Text); err != nil {
			return Value{}, fmt.Errorf("%s must be a date (YYYY-MM-DD)", d.Key)
		}
		return raw, nil

	case VariableTypeSelect:
		s := raw.String()
		if !slices.Contains(d.Options, s) {
			return Value{}, fmt.Errorf("%s must be one of %s", d.Key, strings.Join(d.Options, ", "))
		}
		return Text(s), nil

	default:
		return Text(raw.String()), nil
	}
}

// ParseAmount parses a currency amount such as "$1,250.50" or "1250".
func ParseAmount(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥', ',', ' ':
			return -1
		}
		return r
	}, s)
	return strconv.ParseFloat(cleaned, 64)
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
