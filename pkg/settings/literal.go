package settings

import (
	"encoding/json"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// LiteralKind is the primitive type of an EnumLiteral.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBool
)

// EnumLiteral is a string, number or boolean. It is comparable, so it can
// key maps and be de-duplicated with ==.
type EnumLiteral struct {
	kind LiteralKind
	s    string
	n    float64
	b    bool
}

func StringLiteral(s string) EnumLiteral  { return EnumLiteral{kind: LiteralString, s: s} }
func NumberLiteral(n float64) EnumLiteral { return EnumLiteral{kind: LiteralNumber, n: n} }
func BoolLiteral(b bool) EnumLiteral      { return EnumLiteral{kind: LiteralBool, b: b} }

func (l EnumLiteral) Kind() LiteralKind { return l.kind }

func (l EnumLiteral) StringValue() (string, bool)  { return l.s, l.kind == LiteralString }
func (l EnumLiteral) NumberValue() (float64, bool) { return l.n, l.kind == LiteralNumber }
func (l EnumLiteral) BoolValue() (bool, bool)      { return l.b, l.kind == LiteralBool }

// String renders the literal without quotes.
func (l EnumLiteral) String() string {
	switch l.kind {
	case LiteralNumber:
		return FormatNumber(l.n)
	case LiteralBool:
		return strconv.FormatBool(l.b)
	default:
		return l.s
	}
}

// Interface returns the literal as string, float64 or bool.
func (l EnumLiteral) Interface() any {
	switch l.kind {
	case LiteralNumber:
		return l.n
	case LiteralBool:
		return l.b
	default:
		return l.s
	}
}

// Value converts the literal to a Value.
func (l EnumLiteral) Value() Value {
	switch l.kind {
	case LiteralNumber:
		return Number(l.n, isIntegral(l.n))
	case LiteralBool:
		return Bool(l.b)
	default:
		return String(l.s)
	}
}

// MarshalJSON encodes the literal as a JSON scalar.
func (l EnumLiteral) MarshalJSON() ([]byte, error) {
	switch l.kind {
	case LiteralNumber:
		return []byte(FormatNumber(l.n)), nil
	case LiteralBool:
		return []byte(strconv.FormatBool(l.b)), nil
	default:
		return json.Marshal(l.s)
	}
}

// LiteralFromValue converts a scalar Value to an EnumLiteral.
func LiteralFromValue(v Value) (EnumLiteral, bool) {
	switch v.Kind() {
	case ValueString:
		return StringLiteral(v.str), true
	case ValueNumber:
		return NumberLiteral(v.num), true
	case ValueBool:
		return BoolLiteral(v.boolean), true
	}
	return EnumLiteral{}, false
}

// Labels maps option values to display labels in insertion order.
type Labels = orderedmap.OrderedMap[EnumLiteral, string]

// NewLabels returns an empty label map.
func NewLabels() *Labels { return orderedmap.New[EnumLiteral, string]() }

// OptionsResult is the outcome of options extraction. Values keep source
// order; Labels only holds values whose label was a resolvable string.
type OptionsResult struct {
	Values []EnumLiteral
	Labels *Labels
}

func emptyOptions() OptionsResult {
	return OptionsResult{Labels: NewLabels()}
}

func (r *OptionsResult) add(v EnumLiteral, label string, hasLabel bool) {
	r.Values = append(r.Values, v)
	if hasLabel {
		r.Labels.Set(v, label)
	}
}

// Dedupe returns the values with later duplicates removed.
func Dedupe(values []EnumLiteral) []EnumLiteral {
	seen := make(map[EnumLiteral]bool, len(values))
	out := make([]EnumLiteral, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func isIntegral(f float64) bool {
	return f == float64(int64(f))
}
