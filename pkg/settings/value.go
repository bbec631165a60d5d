package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ValueKind classifies a resolved default.
type ValueKind int

const (
	// ValueUnresolved means no default is known. It is distinct from null
	// and is never serialized.
	ValueUnresolved ValueKind = iota
	ValueNull
	ValueString
	ValueNumber
	ValueBool
	ValueArray
	ValueObject
)

func (k ValueKind) String() string {
	switch k {
	case ValueUnresolved:
		return "unresolved"
	case ValueNull:
		return "null"
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	case ValueArray:
		return "array"
	case ValueObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a statically resolved JSON-like value. The zero Value is
// Unresolved.
type Value struct {
	kind    ValueKind
	str     string
	num     float64
	integer bool
	boolean bool
	items   []Value
	fields  *orderedmap.OrderedMap[string, Value]
}

// ErrUnresolvedValue is returned when marshaling an Unresolved value.
var ErrUnresolvedValue = errors.New("unresolved value cannot be serialized")

func Unresolved() Value          { return Value{} }
func Null() Value                { return Value{kind: ValueNull} }
func String(s string) Value      { return Value{kind: ValueString, str: s} }
func Bool(b bool) Value          { return Value{kind: ValueBool, boolean: b} }
func Int(i int64) Value          { return Value{kind: ValueNumber, num: float64(i), integer: true} }
func Float(f float64) Value      { return Value{kind: ValueNumber, num: f} }
func Array(items ...Value) Value { return Value{kind: ValueArray, items: append([]Value{}, items...)} }
func Number(f float64, integer bool) Value {
	return Value{kind: ValueNumber, num: f, integer: integer}
}

// Object builds an object value from ordered fields. A nil map yields `{}`.
func Object(fields *orderedmap.OrderedMap[string, Value]) Value {
	if fields == nil {
		fields = orderedmap.New[string, Value]()
	}
	return Value{kind: ValueObject, fields: fields}
}

// EmptyArray and EmptyObject are the shape-only defaults.
func EmptyArray() Value  { return Array() }
func EmptyObject() Value { return Object(nil) }

func (v Value) Kind() ValueKind  { return v.kind }
func (v Value) IsResolved() bool { return v.kind != ValueUnresolved }
func (v Value) IsNull() bool     { return v.kind == ValueNull }

// IsNullish reports whether v carries no concrete value.
func (v Value) IsNullish() bool { return v.kind == ValueNull || v.kind == ValueUnresolved }

func (v Value) StringValue() (string, bool)  { return v.str, v.kind == ValueString }
func (v Value) NumberValue() (float64, bool) { return v.num, v.kind == ValueNumber }
func (v Value) BoolValue() (bool, bool)      { return v.boolean, v.kind == ValueBool }

// IsInteger reports whether a number was written as an integer.
func (v Value) IsInteger() bool {
	return v.kind == ValueNumber && v.integer && v.num == math.Trunc(v.num)
}

// Items returns the elements of an array value.
func (v Value) Items() []Value { return v.items }

// Fields returns the fields of an object value.
func (v Value) Fields() *orderedmap.OrderedMap[string, Value] { return v.fields }

// Len returns the number of elements or fields.
func (v Value) Len() int {
	switch v.kind {
	case ValueArray:
		return len(v.items)
	case ValueObject:
		return v.fields.Len()
	}
	return 0
}

// Interface converts v to plain Go values (nil, string, float64, bool,
// []any, map[string]any). Unresolved converts to nil.
func (v Value) Interface() any {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return v.num
	case ValueBool:
		return v.boolean
	case ValueArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case ValueObject:
		out := make(map[string]any, v.fields.Len())
		for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = pair.Value.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes v, keeping object field order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueUnresolved:
		return nil, ErrUnresolvedValue
	case ValueNull:
		return []byte("null"), nil
	case ValueString:
		return json.Marshal(v.str)
	case ValueNumber:
		return []byte(FormatNumber(v.num)), nil
	case ValueBool:
		return []byte(strconv.FormatBool(v.boolean)), nil
	case ValueArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case ValueObject:
		var buf bytes.Buffer
		buf.WriteByte('{')
		first := true
		for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			key, _ := json.Marshal(pair.Key)
			buf.Write(key)
			buf.WriteByte(':')
			data, err := pair.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	return nil, errors.New("unknown value kind")
}

// FormatNumber renders a number the way JavaScript prints it for the
// common cases: integers without a fraction, others in shortest form.
// NaN and infinities, which JSON cannot carry, render as null.
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
