package value

import "strings"

// Map is an insertion-ordered map of string keys to Value. Keys are
// unique; statement generation over a Map always walks entries in the
// order they were inserted, which is what keeps emitted statements
// deterministic (spec property: same schema + same row order implies
// byte-identical statements).
type Map struct {
	order []string
	data  map[string]Value
}

// NewMap returns an empty ordered map with room for n entries.
func NewMap(n int) *Map {
	return &Map{data: make(map[string]Value, n)}
}

// Set inserts or overwrites key with val. Overwriting an existing key
// keeps its original position in the order.
func (m *Map) Set(key string, val Value) {
	if _, ok := m.data[key]; !ok {
		m.order = append(m.order, key)
	}
	m.data[key] = val
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return m.order
}

// Range calls fn for each entry in insertion order.
func (m *Map) Range(fn func(key string, val Value)) {
	if m == nil {
		return
	}
	for _, k := range m.order {
		fn(k, m.data[k])
	}
}

// HasNull reports whether any entry holds the null value. Used to decide
// whether a foreign-key matcher is well-defined.
func (m *Map) HasNull() bool {
	if m == nil {
		return false
	}
	for _, k := range m.order {
		if m.data[k].IsNull() {
			return true
		}
	}
	return false
}

func (m *Map) String() string {
	if m == nil {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range m.order {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(m.data[k].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Equal reports whether two maps contain the same keys in the same order
// with equal values.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i, k := range m.Keys() {
		if o.Keys()[i] != k {
			return false
		}
		mv, _ := m.Get(k)
		ov, _ := o.Get(k)
		if !Equal(mv, ov) {
			return false
		}
	}
	return true
}
