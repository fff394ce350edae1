package value

import "fmt"

// FromBool, FromInt64, FromFloat64 and FromString implement the direct
// rows of the spec §6 source-type conversion table.
func FromBool(b bool) Value       { return Bool(b) }
func FromInt64(i int64) Value     { return Int64(i) }
func FromFloat64(f float64) Value { return Float64(f) }
func FromString(s string) Value   { return String(s) }

// FromList converts a slice of already-converted elements into a list
// Value, supporting the recursive (nested array) case of spec §6.
func FromList(elems []Value) Value { return List(elems) }

// FromUnknown implements the "anything else" row of the spec §6 table:
// a driver value with no recognized logical type falls back to its
// default Go string representation.
func FromUnknown(v any) Value {
	if v == nil {
		return Null()
	}
	return String(fmt.Sprintf("%v", v))
}
