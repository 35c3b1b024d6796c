package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadByteAdvances(t *testing.T) {
	c := New([]byte{0x01, 0x02})

	b, err := c.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)
	assert.Equal(t, uint(1), c.Offset())

	b, err = c.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), b)

	_, err = c.ReadByte()
	require.Error(t, err)
}

func TestReadBytesZeroCopy(t *testing.T) {
	backing := []byte{0x0a, 0x0b, 0x0c}
	c := New(backing)

	b, err := c.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x0b}, b)
	assert.Equal(t, uint(2), c.Offset())

	// The returned slice aliases the backing buffer.
	backing[0] = 0xff
	assert.Equal(t, byte(0xff), b[0])

	_, err = c.ReadBytes(2)
	require.Error(t, err)
}

func TestReadUint(t *testing.T) {
	tests := []struct {
		buf  []byte
		n    uint
		want uint64
	}{
		{nil, 0, 0},
		{[]byte{0x2a}, 1, 42},
		{[]byte{0x01, 0x2c}, 2, 300},
		{[]byte{0x01, 0x00, 0x00}, 3, 1 << 16},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, 8, ^uint64(0)},
	}
	for _, tt := range tests {
		c := New(tt.buf)
		got, err := c.ReadUint(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.n, c.Offset())
	}
}

func TestReadUintOutOfBounds(t *testing.T) {
	c := New([]byte{0x01})
	_, err := c.ReadUint(2)
	require.Error(t, err)
}

func TestForkAt(t *testing.T) {
	c := New([]byte{0x01, 0x02, 0x03})
	_, err := c.ReadBytes(2)
	require.NoError(t, err)

	fork := c.ForkAt(0)
	b, err := fork.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)

	// The fork's reads do not move the original.
	assert.Equal(t, uint(2), c.Offset())

	b, err = c.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x03), b)

	// A fork past the buffer fails on first read, not at creation.
	far := c.ForkAt(10)
	_, err = far.ReadByte()
	require.Error(t, err)
}

func TestLen(t *testing.T) {
	c := New([]byte{0x01, 0x02, 0x03})
	assert.Equal(t, uint(3), c.Len())

	_, err := c.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, uint(3), c.Len())
}
