package decoder

import (
	"testing"

	"github.com/maxpoulin64/mmdb-go/internal/mmdberrors"
	"github.com/stretchr/testify/require"
)

func TestDecode_EmptyString(t *testing.T) {
	data := []byte{0b010_00000}
	d := New(data)
	v, next, err := d.Decode(0)
	require.NoError(t, err)
	require.Equal(t, uint(1), next)
	s, ok := v.AsString()
	require.True(t, ok)
	require.Equal(t, "", s)
}

func TestDecode_ShortString(t *testing.T) {
	data := append([]byte{0b010_00101}, "hello"...)
	d := New(data)
	v, next, err := d.Decode(0)
	require.NoError(t, err)
	require.Equal(t, uint(len(data)), next)
	s, ok := v.AsString()
	require.True(t, ok)
	require.Equal(t, "hello", s)
}

func TestDecode_Pointer(t *testing.T) {
	// Control byte 0b001_01_000 (tag=Pointer, size_sel=01, extra=000),
	// two extra bytes 0x00 0x00: target = (0<<16 | 0x0000) + 2048 = 2048.
	data := make([]byte, 2048+1)
	data[0] = 0b001_01_000
	data[1] = 0x00
	data[2] = 0x00
	data[2048] = 0b010_00000 // empty string at the target
	d := New(data)
	v, next, err := d.Decode(0)
	require.NoError(t, err)
	require.Equal(t, uint(3), next, "pointer decode reports offset past its own bytes")
	s, ok := v.AsString()
	require.True(t, ok)
	require.Equal(t, "", s)
}

func TestDecode_MapWithExtendedSize(t *testing.T) {
	// Control byte tag=7 (Map), size=30 plus two size bytes 0x00 0x00 means
	// 285 + 0 = 285 pairs.
	data := []byte{0b111_11110, 0x00, 0x00}
	d := New(data)
	kind, size, _, err := d.decodeCtrlData(0)
	require.NoError(t, err)
	require.Equal(t, KindMap, kind)
	require.Equal(t, uint(285), size)
}

func TestDecode_Uint16(t *testing.T) {
	data := []byte{0b101_00010, 0x01, 0x2c} // tag 5, size 2, value 300
	d := New(data)
	v, _, err := d.Decode(0)
	require.NoError(t, err)
	n, ok := v.AsUint16()
	require.True(t, ok)
	require.Equal(t, uint16(300), n)
}

func TestDecode_Boolean(t *testing.T) {
	// Boolean's tag (14) is encoded via the Extended continuation byte.
	trueByte := []byte{0b000_00001, byte(KindBoolean - 7)}
	falseByte := []byte{0b000_00000, byte(KindBoolean - 7)}

	v, _, err := New(trueByte).Decode(0)
	require.NoError(t, err)
	b, ok := v.AsBool()
	require.True(t, ok)
	require.True(t, b)

	v, _, err = New(falseByte).Decode(0)
	require.NoError(t, err)
	b, ok = v.AsBool()
	require.True(t, ok)
	require.False(t, b)
}

func TestDecode_ArrayOfStrings(t *testing.T) {
	var data []byte
	data = append(data, 0b000_00010, byte(KindArray-7)) // Extended -> Array, size 2
	data = append(data, 0b010_00011)
	data = append(data, "foo"...)
	data = append(data, 0b010_00011)
	data = append(data, "bar"...)

	v, next, err := New(data).Decode(0)
	require.NoError(t, err)
	require.Equal(t, uint(len(data)), next)

	arr, ok := v.AsArray()
	require.True(t, ok)
	require.Equal(t, 2, arr.Len())

	el, ok := arr.At(0)
	require.True(t, ok)
	s, ok := el.AsString()
	require.True(t, ok)
	require.Equal(t, "foo", s)

	el, ok = arr.At(1)
	require.True(t, ok)
	s, ok = el.AsString()
	require.True(t, ok)
	require.Equal(t, "bar", s)
}

func TestDecode_MapPreservesInsertionOrder(t *testing.T) {
	var data []byte
	data = append(data, 0b111_00010) // Map, size 2
	data = append(data, 0b010_00011)
	data = append(data, "zoo"...)
	data = append(data, 0b101_00001)
	data = append(data, 0x01)
	data = append(data, 0b010_00011)
	data = append(data, "abc"...)
	data = append(data, 0b101_00001)
	data = append(data, 0x02)

	v, _, err := New(data).Decode(0)
	require.NoError(t, err)
	m, ok := v.AsMap()
	require.True(t, ok)
	require.Equal(t, []string{"zoo", "abc"}, m.Keys())
}

func TestDecode_MalformedMapKey(t *testing.T) {
	var data []byte
	data = append(data, 0b111_00001) // Map, size 1
	data = append(data, 0b101_00001) // key is Uint16, not a String
	data = append(data, 0x01)
	data = append(data, 0b010_00000)

	_, _, err := New(data).Decode(0)
	require.Error(t, err)
}

func TestDecode_DepthExceeded(t *testing.T) {
	// A pointer at offset 0 that points to itself causes unbounded
	// recursion; the depth guard must stop it instead of looping forever.
	data := []byte{0b001_00_000, 0x00}
	d := New(data).WithMaxDepth(4)
	_, _, err := d.Decode(0)
	require.Error(t, err)
}

func TestDecode_Uint128AsBinary(t *testing.T) {
	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	// Uint128's tag (10) doesn't fit the control byte's 3-bit tag field, so
	// it is always encoded via the Extended continuation byte.
	data := []byte{0b000_10000, byte(KindUint128 - 7)}
	data = append(data, payload...)

	v, _, err := New(data).Decode(0)
	require.NoError(t, err)
	b, ok := v.AsBytes()
	require.True(t, ok)
	require.Equal(t, payload, b)
}

func TestNextValueOffset_SkipsMapEntirely(t *testing.T) {
	var data []byte
	data = append(data, 0b111_00001) // Map, size 1
	data = append(data, 0b010_00011)
	data = append(data, "key"...)
	data = append(data, 0b010_00011)
	data = append(data, "val"...)
	data = append(data, 0b010_00001)
	data = append(data, "z"...)

	d := New(data)
	next, err := d.NextValueOffset(0, 1)
	require.NoError(t, err)
	v, _, err := d.Decode(next)
	require.NoError(t, err)
	s, ok := v.AsString()
	require.True(t, ok)
	require.Equal(t, "z", s)
}

func TestDecode_TransitivePointer(t *testing.T) {
	// A pointer at offset 0 to offset 8, where a second pointer targets the
	// string at offset 16; the outer decode must yield the final value.
	data := make([]byte, 32)
	data[0] = 0b001_00_000 // size_sel=0, extra=0, target from next byte
	data[1] = 8
	data[8] = 0b001_00_000
	data[9] = 16
	data[16] = 0b010_00010
	data[17] = 'h'
	data[18] = 'i'

	v, next, err := New(data).Decode(0)
	require.NoError(t, err)
	require.Equal(t, uint(2), next, "outer pointer reports offset past its own bytes")
	s, ok := v.AsString()
	require.True(t, ok)
	require.Equal(t, "hi", s)
}

func TestDecode_UintMinimalEncodingRoundTrip(t *testing.T) {
	encode := func(tag byte, n uint64) []byte {
		var payload []byte
		for v := n; v > 0; v >>= 8 {
			payload = append([]byte{byte(v)}, payload...)
		}
		return append([]byte{tag<<5 | byte(len(payload))}, payload...)
	}

	for _, n := range []uint64{0, 1, 255, 256, 65535, 65536, 1 << 24, 1<<32 - 1} {
		v, _, err := New(encode(0b101, n)).Decode(0)
		if n <= 0xffff {
			require.NoError(t, err, n)
			got, ok := v.AsUint16()
			require.True(t, ok)
			require.Equal(t, uint16(n), got)
			continue
		}
		// Values past two bytes overflow the Uint16 tag and must error.
		require.Error(t, err, n)
	}

	for _, n := range []uint64{0, 255, 65536, 1<<32 - 1} {
		v, _, err := New(encode(0b110, n)).Decode(0)
		require.NoError(t, err, n)
		got, ok := v.AsUint32()
		require.True(t, ok)
		require.Equal(t, uint32(n), got)
	}

	for _, n := range []uint64{0, 1, 1 << 40, ^uint64(0)} {
		data := []byte{0b000_00000, byte(KindUint64 - 7)}
		var payload []byte
		for v := n; v > 0; v >>= 8 {
			payload = append([]byte{byte(v)}, payload...)
		}
		data[0] |= byte(len(payload))
		data = append(data, payload...)

		v, _, err := New(data).Decode(0)
		require.NoError(t, err, n)
		got, ok := v.AsUint64()
		require.True(t, ok)
		require.Equal(t, n, got)
	}
}

func TestDecode_Int32(t *testing.T) {
	// Int32's tag (8) is encoded via the Extended continuation byte. Two
	// magnitude bytes zero-extend to a positive value.
	data := []byte{0b000_00010, byte(KindInt32 - 7), 0x01, 0x00}
	v, _, err := New(data).Decode(0)
	require.NoError(t, err)
	n, ok := v.AsInt32()
	require.True(t, ok)
	require.Equal(t, int32(256), n)

	// A full four bytes carry the sign bit through.
	data = []byte{0b000_00100, byte(KindInt32 - 7), 0xff, 0xff, 0xff, 0xff}
	v, _, err = New(data).Decode(0)
	require.NoError(t, err)
	n, ok = v.AsInt32()
	require.True(t, ok)
	require.Equal(t, int32(-1), n)
}

func TestDecode_DoubleAndFloat(t *testing.T) {
	// 1.5 as IEEE 754: double 0x3FF8000000000000, float 0x3FC00000.
	double := []byte{0b011_01000, 0x3f, 0xf8, 0, 0, 0, 0, 0, 0}
	v, _, err := New(double).Decode(0)
	require.NoError(t, err)
	f64, ok := v.AsFloat64()
	require.True(t, ok)
	require.Equal(t, 1.5, f64)

	float := []byte{0b000_00100, byte(KindFloat - 7), 0x3f, 0xc0, 0, 0}
	v, _, err = New(float).Decode(0)
	require.NoError(t, err)
	f32, ok := v.AsFloat32()
	require.True(t, ok)
	require.Equal(t, float32(1.5), f32)

	// A double of any size other than 8 is rejected.
	_, _, err = New([]byte{0b011_00100, 0x3f, 0xc0, 0, 0}).Decode(0)
	require.Error(t, err)
}

func TestDecode_UnsupportedTags(t *testing.T) {
	for _, kind := range []Kind{KindContainer, KindEndMarker} {
		data := []byte{0b000_00000, byte(kind - 7)}
		_, _, err := New(data).Decode(0)
		require.Error(t, err, kind.String())
		require.ErrorAs(t, err, &mmdberrors.UnsupportedTagError{}, kind.String())
	}
}

func TestDecode_ZeroSizeUintIsZero(t *testing.T) {
	v, next, err := New([]byte{0b110_00000}).Decode(0)
	require.NoError(t, err)
	require.Equal(t, uint(1), next)
	n, ok := v.AsUint32()
	require.True(t, ok)
	require.Equal(t, uint32(0), n)
}

func TestDecode_PointerOutOfRange(t *testing.T) {
	// size_sel=3 reads four target bytes with no bias; a target far past
	// the data section must be rejected rather than read.
	data := []byte{0b001_11_000, 0x7f, 0xff, 0xff, 0xff}
	_, _, err := New(data).Decode(0)
	require.Error(t, err)
	require.ErrorAs(t, err, &mmdberrors.PointerOutOfRangeError{})
}

func TestDecodeMapAt_StopsWithoutBuildingRest(t *testing.T) {
	var data []byte
	data = append(data, 0b111_00010) // Map, 2 pairs
	data = append(data, 0b010_00001, 'a')
	data = append(data, 0b101_00001, 0x01)
	data = append(data, 0b010_00001, 'b')
	// The second value is a truncated control byte chain that would error
	// if decoded; stopping after the first pair must never touch it.
	data = append(data, 0b010_11111)

	var keys []string
	err := New(data).DecodeMapAt(0, func(key string, _ Value) bool {
		keys = append(keys, key)
		return false
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, keys)
}

func TestDecodeSliceAt_IteratesInOrder(t *testing.T) {
	var data []byte
	data = append(data, 0b000_00010, byte(KindArray-7)) // Extended -> Array, 2 elements
	data = append(data, 0b101_00001, 0x05)
	data = append(data, 0b101_00001, 0x09)

	var got []uint16
	err := New(data).DecodeSliceAt(0, func(_ int, v Value) bool {
		n, ok := v.AsUint16()
		require.True(t, ok)
		got = append(got, n)
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []uint16{5, 9}, got)

	err = New(data).DecodeSliceAt(0, func(_ int, _ Value) bool { return true })
	require.NoError(t, err)
}

func TestDecodeMapAt_RejectsNonMap(t *testing.T) {
	data := []byte{0b010_00001, 'x'}
	err := New(data).DecodeMapAt(0, func(string, Value) bool { return true })
	require.Error(t, err)
}

// pathTestData encodes {"a": [10, 20], "b": {"c": "deep"}, "d": true}.
func pathTestData() []byte {
	var data []byte
	data = append(data, 0b111_00011) // Map, 3 pairs
	data = append(data, 0b010_00001, 'a')
	data = append(data, 0b000_00010, byte(KindArray-7)) // Extended -> Array, 2 elements
	data = append(data, 0b101_00001, 10)
	data = append(data, 0b101_00001, 20)
	data = append(data, 0b010_00001, 'b')
	data = append(data, 0b111_00001) // Map, 1 pair
	data = append(data, 0b010_00001, 'c')
	data = append(data, 0b010_00100)
	data = append(data, "deep"...)
	data = append(data, 0b010_00001, 'd')
	data = append(data, 0b000_00001, byte(KindBoolean-7)) // Extended -> Boolean true
	return data
}

func TestDecodeAtPath(t *testing.T) {
	d := New(pathTestData())

	v, ok, err := d.DecodeAtPath(0, []any{"a", 1})
	require.NoError(t, err)
	require.True(t, ok)
	n, isUint := v.AsUint16()
	require.True(t, isUint)
	require.Equal(t, uint16(20), n)

	v, ok, err = d.DecodeAtPath(0, []any{"b", "c"})
	require.NoError(t, err)
	require.True(t, ok)
	s, isStr := v.AsString()
	require.True(t, isStr)
	require.Equal(t, "deep", s)

	// Reaching "d" has to skip both the array under "a" and the nested
	// map under "b" without decoding them.
	v, ok, err = d.DecodeAtPath(0, []any{"d"})
	require.NoError(t, err)
	require.True(t, ok)
	b, isBool := v.AsBool()
	require.True(t, isBool)
	require.True(t, b)
}

func TestDecodeAtPath_Absent(t *testing.T) {
	d := New(pathTestData())

	for _, path := range [][]any{
		{"missing"},
		{"a", 5},
		{"a", -1},
		{"a", "not-an-index"},
		{"d", "not-a-map"},
	} {
		v, ok, err := d.DecodeAtPath(0, path)
		require.NoError(t, err, path)
		require.False(t, ok, path)
		require.Equal(t, Value{}, v, path)
	}
}

func TestDecodeAtPath_BadElementType(t *testing.T) {
	_, _, err := New(pathTestData()).DecodeAtPath(0, []any{3.14})
	require.Error(t, err)
}
