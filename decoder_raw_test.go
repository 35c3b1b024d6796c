package maxminddb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecordDecoder(t *testing.T) *Decoder {
	t.Helper()
	db, err := FromBytes(buildTestDBv6(t))
	require.NoError(t, err)

	hit := db.Lookup("::")
	require.NoError(t, hit.Err())
	require.True(t, hit.Found())
	return db.Decoder(hit.RecordOffset())
}

func TestDecodeMapCallback(t *testing.T) {
	dec := testRecordDecoder(t)

	var keys, vals []string
	err := dec.DecodeMap(func(key string, v Value) bool {
		keys = append(keys, key)
		s, ok := v.AsString()
		require.True(t, ok)
		vals = append(vals, s)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)
	assert.Equal(t, []string{"v"}, vals)
}

func TestDecodeSliceRejectsMap(t *testing.T) {
	dec := testRecordDecoder(t)
	err := dec.DecodeSlice(func(int, Value) bool { return true })
	require.Error(t, err)
}

func TestDecodePath(t *testing.T) {
	dec := testRecordDecoder(t)

	v, ok, err := dec.DecodePath("k")
	require.NoError(t, err)
	require.True(t, ok)
	s, isStr := v.AsString()
	require.True(t, isStr)
	assert.Equal(t, "v", s)

	_, ok, err = dec.DecodePath("absent")
	require.NoError(t, err)
	assert.False(t, ok)
}
