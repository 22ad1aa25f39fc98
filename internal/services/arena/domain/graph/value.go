package graph

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueFloat
	ValueBool
	ValueString
)

// Value is a closed tagged variable value. Values are comparable with ==.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	b    bool
	s    string
}

func Int(v int64) Value         { return Value{kind: ValueInt, i: v} }
func Float(v float64) Value     { return Value{kind: ValueFloat, f: v} }
func Bool(v bool) Value         { return Value{kind: ValueBool, b: v} }
func String(v string) Value     { return Value{kind: ValueString, s: v} }
func (v Value) Kind() ValueKind { return v.kind }

// IsZero reports whether the value holds no variant.
func (v Value) IsZero() bool { return v.kind == ValueNone }

// Numeric reports whether the value is an Int or a Float.
func (v Value) Numeric() bool { return v.kind == ValueInt || v.kind == ValueFloat }

// AsInt returns the value as an integer. Floats are truncated.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case ValueInt:
		return v.i, true
	case ValueFloat:
		return int64(v.f), true
	}
	return 0, false
}

// AsFloat returns the value as a float.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case ValueInt:
		return float64(v.i), true
	case ValueFloat:
		return v.f, true
	}
	return 0, false
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != ValueBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsString() (string, bool) {
	if v.kind != ValueString {
		return "", false
	}
	return v.s, true
}

func (v Value) String() string {
	switch v.kind {
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueString:
		return v.s
	}
	return "<none>"
}

type valueJSON struct {
	Int    *int64   `json:"int,omitempty"`
	Float  *float64 `json:"float,omitempty"`
	Bool   *bool    `json:"bool,omitempty"`
	String *string  `json:"string,omitempty"`
}

// MarshalJSON encodes the value as a single-key object naming its variant.
func (v Value) MarshalJSON() ([]byte, error) {
	var out valueJSON
	switch v.kind {
	case ValueInt:
		out.Int = &v.i
	case ValueFloat:
		out.Float = &v.f
	case ValueBool:
		out.Bool = &v.b
	case ValueString:
		out.String = &v.s
	default:
		return []byte("null"), nil
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the single-key object written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	switch {
	case in.Int != nil:
		*v = Int(*in.Int)
	case in.Float != nil:
		*v = Float(*in.Float)
	case in.Bool != nil:
		*v = Bool(*in.Bool)
	case in.String != nil:
		*v = String(*in.String)
	default:
		*v = Value{}
	}
	return nil
}
