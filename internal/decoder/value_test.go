package decoder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueAccessorsRejectWrongKind(t *testing.T) {
	v := stringValue("x")

	_, ok := v.AsUint32()
	assert.False(t, ok)
	_, ok = v.AsMap()
	assert.False(t, ok)
	_, ok = v.AsBool()
	assert.False(t, ok)

	s, ok := v.AsString()
	assert.True(t, ok)
	assert.Equal(t, "x", s)
}

func TestMapGetAndRange(t *testing.T) {
	m := newMap(2)
	m.append("b", uint16Value(1))
	m.append("a", uint16Value(2))

	v, ok := m.Get("a")
	require.True(t, ok)
	n, _ := v.AsUint16()
	assert.Equal(t, uint16(2), n)

	_, ok = m.Get("missing")
	assert.False(t, ok)

	var seen []string
	m.Range(func(key string, _ Value) bool {
		seen = append(seen, key)
		return true
	})
	assert.Equal(t, []string{"b", "a"}, seen)

	seen = nil
	m.Range(func(key string, _ Value) bool {
		seen = append(seen, key)
		return false
	})
	assert.Equal(t, []string{"b"}, seen)
}

func TestNilContainersAreEmpty(t *testing.T) {
	var m *Map
	assert.Equal(t, 0, m.Len())
	_, ok := m.Get("x")
	assert.False(t, ok)

	var a *Array
	assert.Equal(t, 0, a.Len())
	_, ok = a.At(0)
	assert.False(t, ok)
}

func TestMarshalJSONBinaryIsNull(t *testing.T) {
	b, err := json.Marshal(binaryValue([]byte{0x01, 0x02}))
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestMarshalJSONMapPreservesInsertionOrder(t *testing.T) {
	m := newMap(3)
	m.append("zebra", booleanValue(true))
	m.append("apple", int32Value(-3))
	m.append("mango", doubleValue(1.5))

	b, err := json.Marshal(mapValue(m))
	require.NoError(t, err)
	assert.Equal(t, `{"zebra":true,"apple":-3,"mango":1.5}`, string(b))
}

func TestMarshalJSONArray(t *testing.T) {
	a := newArray(3)
	a.append(stringValue(`quo"te`))
	a.append(uint64Value(18446744073709551615))
	a.append(floatValue(0.25))

	b, err := json.Marshal(arrayValue(a))
	require.NoError(t, err)
	assert.Equal(t, `["quo\"te",18446744073709551615,0.25]`, string(b))
}

func TestMarshalJSONEscapesControlCharacters(t *testing.T) {
	b, err := json.Marshal(stringValue("a\nb\x01c"))
	require.NoError(t, err)
	assert.Equal(t, `"a\nb\u0001c"`, string(b))
}
