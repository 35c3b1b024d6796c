package decoder

import (
	"bytes"
	"strconv"
)

// Value is the tagged union produced by decoding one MMDB data-section
// entry. The zero Value has Kind KindExtended and is never produced by the
// decoder; callers should always check Kind() before reading a variant.
type Value struct {
	kind Kind

	str string
	bin []byte
	u64 uint64
	i32 int32
	f64 float64
	f32 float32
	b   bool
	m   *Map
	a   *Array
}

// Kind returns the value's discriminant.
func (v Value) Kind() Kind {
	return v.kind
}

func stringValue(s string) Value    { return Value{kind: KindString, str: s} }
func binaryValue(b []byte) Value    { return Value{kind: KindBinary, bin: b} }
func uint16Value(n uint16) Value    { return Value{kind: KindUint16, u64: uint64(n)} }
func uint32Value(n uint32) Value    { return Value{kind: KindUint32, u64: uint64(n)} }
func uint64Value(n uint64) Value    { return Value{kind: KindUint64, u64: n} }
func int32Value(n int32) Value      { return Value{kind: KindInt32, i32: n} }
func doubleValue(f float64) Value   { return Value{kind: KindDouble, f64: f} }
func floatValue(f float32) Value    { return Value{kind: KindFloat, f32: f} }
func booleanValue(b bool) Value     { return Value{kind: KindBoolean, b: b} }
func mapValue(m *Map) Value         { return Value{kind: KindMap, m: m} }
func arrayValue(a *Array) Value     { return Value{kind: KindArray, a: a} }

// AsString returns the string payload and true if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsBytes returns the raw byte payload and true if Kind is KindBinary. This
// also covers the on-wire Uint128 tag, which is surfaced as its 16 raw
// bytes rather than numerically decoded.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBinary {
		return nil, false
	}
	return v.bin, true
}

// AsUint16 returns the payload and true if Kind is KindUint16.
func (v Value) AsUint16() (uint16, bool) {
	if v.kind != KindUint16 {
		return 0, false
	}
	return uint16(v.u64), true
}

// AsUint32 returns the payload and true if Kind is KindUint32.
func (v Value) AsUint32() (uint32, bool) {
	if v.kind != KindUint32 {
		return 0, false
	}
	return uint32(v.u64), true
}

// AsUint64 returns the payload and true if Kind is KindUint64.
func (v Value) AsUint64() (uint64, bool) {
	if v.kind != KindUint64 {
		return 0, false
	}
	return v.u64, true
}

// AsInt32 returns the payload and true if Kind is KindInt32.
func (v Value) AsInt32() (int32, bool) {
	if v.kind != KindInt32 {
		return 0, false
	}
	return v.i32, true
}

// AsFloat64 returns the payload and true if Kind is KindDouble.
func (v Value) AsFloat64() (float64, bool) {
	if v.kind != KindDouble {
		return 0, false
	}
	return v.f64, true
}

// AsFloat32 returns the payload and true if Kind is KindFloat.
func (v Value) AsFloat32() (float32, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f32, true
}

// AsBool returns the payload and true if Kind is KindBoolean.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

// AsMap returns the map payload and true if Kind is KindMap.
func (v Value) AsMap() (*Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// AsArray returns the array payload and true if Kind is KindArray.
func (v Value) AsArray() (*Array, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.a, true
}

// Map is an insertion-ordered mapping from string keys to Values. Key
// uniqueness is the only invariant the format requires; this type allows
// duplicate keys to be inserted (the last write for a given key wins when
// looked up via Get, matching how a real map would collapse them), since the
// decoder must still accept already-invalid-but-readable databases without
// panicking.
type Map struct {
	keys []string
	vals []Value
	idx  map[string]int
}

func newMap(pairCount uint) *Map {
	return &Map{
		keys: make([]string, 0, pairCount),
		vals: make([]Value, 0, pairCount),
		idx:  make(map[string]int, pairCount),
	}
}

func (m *Map) append(key string, val Value) {
	if i, ok := m.idx[key]; ok {
		m.vals[i] = val
		return
	}
	m.idx[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, val)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by the caller.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Get looks up key and reports whether it was present.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.idx[key]
	if !ok {
		return Value{}, false
	}
	return m.vals[i], true
}

// Range iterates entries in insertion order, stopping early if fn returns
// false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for i, k := range m.keys {
		if !fn(k, m.vals[i]) {
			return
		}
	}
}

// Array is an ordered sequence of Values.
type Array struct {
	vals []Value
}

func newArray(count uint) *Array {
	return &Array{vals: make([]Value, 0, count)}
}

func (a *Array) append(val Value) {
	a.vals = append(a.vals, val)
}

// Len returns the number of elements.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.vals)
}

// At returns the element at index i and reports whether i was in range.
func (a *Array) At(i int) (Value, bool) {
	if a == nil || i < 0 || i >= len(a.vals) {
		return Value{}, false
	}
	return a.vals[i], true
}

// Range iterates elements in order, stopping early if fn returns false.
func (a *Array) Range(fn func(i int, v Value) bool) {
	if a == nil {
		return
	}
	for i, v := range a.vals {
		if !fn(i, v) {
			return
		}
	}
}

// MarshalJSON renders the Value as JSON. Binary (including the Uint128
// case) has no JSON representation and renders as null; Map preserves
// insertion order, which encoding/json's native map handling cannot do
// since it always sorts map[string]any keys alphabetically.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return marshalJSONString(v.str), nil
	case KindBinary:
		return []byte("null"), nil
	case KindUint16, KindUint32, KindUint64:
		return []byte(strconv.FormatUint(v.u64, 10)), nil
	case KindInt32:
		return []byte(strconv.FormatInt(int64(v.i32), 10)), nil
	case KindDouble:
		return []byte(strconv.FormatFloat(v.f64, 'g', -1, 64)), nil
	case KindFloat:
		return []byte(strconv.FormatFloat(float64(v.f32), 'g', -1, 32)), nil
	case KindBoolean:
		if v.b {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindMap:
		return v.m.marshalJSON()
	case KindArray:
		return v.a.marshalJSON()
	default:
		return []byte("null"), nil
	}
}

func (m *Map) marshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(marshalJSONString(k))
		buf.WriteByte(':')
		val, _ := m.Get(k)
		b, err := val.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *Array) marshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	n := a.Len()
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, _ := a.At(i)
		b, err := val.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalJSONString(s string) []byte {
	var buf bytes.Buffer
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u`)
				const hex = "0123456789abcdef"
				buf.WriteByte(hex[(r>>12)&0xf])
				buf.WriteByte(hex[(r>>8)&0xf])
				buf.WriteByte(hex[(r>>4)&0xf])
				buf.WriteByte(hex[r&0xf])
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return buf.Bytes()
}
