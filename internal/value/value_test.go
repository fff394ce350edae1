package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueString(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), "null"},
		{"bool", Bool(true), "true"},
		{"int64", Int64(-7), "-7"},
		{"float64", Float64(3.5), "3.5"},
		{"string", String(`say "hi"`), `"say \"hi\""`},
		{"list", List([]Value{Int64(1), String("a")}), `[1, "a"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.String())
		})
	}
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Equal(Int64(1), Int64(1)))
	assert.False(t, Equal(Int64(1), Int64(2)))
	assert.False(t, Equal(Int64(1), String("1")), "different kinds never compare equal")

	a := List([]Value{Int64(1), String("x")})
	b := List([]Value{Int64(1), String("x")})
	c := List([]Value{Int64(1), String("y")})
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))

	m1 := NewMap(1)
	m1.Set("k", Int64(1))
	m2 := NewMap(1)
	m2.Set("k", Int64(1))
	assert.True(t, Equal(MapValue(m1), MapValue(m2)))
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := NewMap(0)
	m.Set("b", Int64(2))
	m.Set("a", Int64(1))
	m.Set("c", Int64(3))

	require.Equal(t, []string{"b", "a", "c"}, m.Keys())
	assert.Equal(t, "{b: 2, a: 1, c: 3}", m.String())
}

func TestMapSetOverwritePreservesPosition(t *testing.T) {
	m := NewMap(0)
	m.Set("a", Int64(1))
	m.Set("b", Int64(2))
	m.Set("a", Int64(99))

	require.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(99), v.Int64())
}

func TestMapHasNull(t *testing.T) {
	m := NewMap(0)
	m.Set("a", Int64(1))
	assert.False(t, m.HasNull())
	m.Set("b", Null())
	assert.True(t, m.HasNull())
}

func TestMapEqual(t *testing.T) {
	a := NewMap(0)
	a.Set("x", Int64(1))
	a.Set("y", String("z"))

	b := NewMap(0)
	b.Set("x", Int64(1))
	b.Set("y", String("z"))
	assert.True(t, a.Equal(b))

	c := NewMap(0)
	c.Set("y", String("z"))
	c.Set("x", Int64(1))
	assert.False(t, a.Equal(c), "differing insertion order is not equal")

	d := NewMap(0)
	d.Set("x", Int64(1))
	assert.False(t, a.Equal(d), "differing length is not equal")
}

func TestNilMapIsEmpty(t *testing.T) {
	var m *Map
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Keys())
	assert.Equal(t, "{}", m.String())
	assert.False(t, m.HasNull())
}

func TestFromUnknownFallsBackToStringRepresentation(t *testing.T) {
	assert.True(t, Equal(Null(), FromUnknown(nil)))
	assert.True(t, Equal(String("[1 2]"), FromUnknown([]int{1, 2})))
}
