package aitools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// Payload is an untyped structured request, as decoded from JSON
type Payload map[string]any

// ParsePayload decodes a JSON object into a Payload. An empty input yields an
// empty payload.
func ParsePayload(data []byte) (Payload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Payload{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid payload: unexpected data after the JSON object")
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// DecodeErrorKind classifies a DecodeError
type DecodeErrorKind int

const (
	UnknownAction DecodeErrorKind = iota + 1
	MissingField
	TypeMismatch
)

func (k DecodeErrorKind) String() string {
	switch k {
	case UnknownAction:
		return "UnknownAction"
	case MissingField:
		return "MissingField"
	case TypeMismatch:
		return "TypeMismatch"
	default:
		return fmt.Sprintf("DecodeErrorKind(%d)", int(k))
	}
}

// DecodeError reports a malformed request. It never reflects on the state of
// the tool that produced it.
type DecodeError struct {
	Kind     DecodeErrorKind
	Action   string
	Field    string
	Expected PropertyType
	Actual   string
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case UnknownAction:
		// Field is set when the discriminant was present but unrecognized
		if e.Action == "" && e.Field == "" {
			return "unknown action: payload has no 'action' field"
		}
		return fmt.Sprintf("unknown action: %q", e.Action)
	case MissingField:
		if e.Action != "" {
			return fmt.Sprintf("missing required field '%s' for action '%s'", e.Field, e.Action)
		}
		return fmt.Sprintf("missing required field '%s'", e.Field)
	case TypeMismatch:
		return fmt.Sprintf("field '%s': expected %s, got %s", e.Field, e.Expected, e.Actual)
	default:
		return "invalid payload"
	}
}

// Has reports whether field is present and not null
func (p Payload) Has(field string) bool {
	v, ok := p[field]
	return ok && v != nil
}

// String reads a required string field
func (p Payload) String(field string) (string, error) {
	v, ok := p[field]
	if !ok || v == nil {
		return "", &DecodeError{Kind: MissingField, Field: field}
	}
	s, ok := v.(string)
	if !ok {
		return "", mismatch(field, TypeString, v)
	}
	return s, nil
}

// Int reads a required integer field. JSON numbers with an integral value
// are accepted; fractional numbers are a type mismatch.
func (p Payload) Int(field string) (int, error) {
	v, ok := p[field]
	if !ok || v == nil {
		return 0, &DecodeError{Kind: MissingField, Field: field}
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return integral(field, n, v)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			if i > math.MaxInt32 || i < math.MinInt32 {
				return 0, outOfRange(field)
			}
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, mismatch(field, TypeInteger, v)
		}
		return integral(field, f, v)
	default:
		return 0, mismatch(field, TypeInteger, v)
	}
}

// Bool reads a required boolean field
func (p Payload) Bool(field string) (bool, error) {
	v, ok := p[field]
	if !ok || v == nil {
		return false, &DecodeError{Kind: MissingField, Field: field}
	}
	b, ok := v.(bool)
	if !ok {
		return false, mismatch(field, TypeBoolean, v)
	}
	return b, nil
}

// OptionalBool reads a boolean field, returning def when it is absent or null
func (p Payload) OptionalBool(field string, def bool) (bool, error) {
	if !p.Has(field) {
		return def, nil
	}
	return p.Bool(field)
}

func mismatch(field string, expected PropertyType, v any) *DecodeError {
	return &DecodeError{Kind: TypeMismatch, Field: field, Expected: expected, Actual: JSONTypeName(v)}
}

func integral(field string, n float64, v any) (int, error) {
	if n != math.Trunc(n) || math.IsInf(n, 0) {
		return 0, mismatch(field, TypeInteger, v)
	}
	if math.Abs(n) > math.MaxInt32 {
		return 0, outOfRange(field)
	}
	return int(n), nil
}

func outOfRange(field string) *DecodeError {
	return &DecodeError{Kind: TypeMismatch, Field: field, Expected: TypeInteger, Actual: "integer out of range"}
}

// JSONTypeName returns the JSON type name of a decoded value
func JSONTypeName(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		if n == math.Trunc(n) {
			return "integer"
		}
		return "number"
	case json.Number:
		if f, err := n.Float64(); err == nil && f == math.Trunc(f) {
			return "integer"
		}
		return "number"
	case int, int32, int64:
		return "integer"
	case float32:
		return "number"
	case map[string]any, Payload:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
