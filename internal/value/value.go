// Package value implements the tagged value type that crosses the
// boundary between relational rows and graph properties.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which payload a Value carries.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindString
	KindList
	KindMap
)

// Value is a tagged union over the property-graph value domain: null,
// bool, int64, float64, string, an ordered list of Value, or an ordered
// map of string to Value.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	list   []Value
	fields *Map
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int64 wraps a 64-bit signed integer.
func Int64(i int64) Value { return Value{kind: KindInt64, i: i} }

// Float64 wraps an IEEE-754 double.
func Float64(f float64) Value { return Value{kind: KindFloat64, f: f} }

// String wraps a UTF-8 string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List wraps an ordered list of values. The slice is not copied; callers
// should not mutate it after handing it to List.
func List(items []Value) Value { return Value{kind: KindList, list: items} }

// MapValue wraps an ordered map of values.
func MapValue(m *Map) Value { return Value{kind: KindMap, fields: m} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() bool       { return v.b }
func (v Value) Int64() int64     { return v.i }
func (v Value) Float64() float64 { return v.f }
func (v Value) Str() string      { return v.s }
func (v Value) List() []Value    { return v.list }
func (v Value) Map() *Map        { return v.fields }

// String renders a human-readable form, used only for logging.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		return v.fields.String()
	default:
		return fmt.Sprintf("<invalid value kind %d>", v.kind)
	}
}

// Equal reports whether two values hold the same kind and payload,
// recursively for list and map values. Used by the determinism tests.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt64:
		return a.i == b.i
	case KindFloat64:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return a.fields.Equal(b.fields)
	default:
		return false
	}
}
