// Package cursor provides a positioned, bounds-checked view over a byte
// slice with the big-endian primitive reads the MMDB format needs.
package cursor

import "github.com/maxpoulin64/mmdb-go/internal/mmdberrors"

// Cursor is a positioned view over a backing byte slice. It never copies the
// backing slice; ForkAt and the zero-copy ReadBytes share it with the caller.
type Cursor struct {
	buf []byte
	off uint
}

// New creates a Cursor over buf starting at offset 0.
func New(buf []byte) Cursor {
	return Cursor{buf: buf}
}

// Offset returns the cursor's current position.
func (c Cursor) Offset() uint {
	return c.off
}

// Len returns the length of the backing buffer.
func (c Cursor) Len() uint {
	return uint(len(c.buf))
}

// ForkAt returns a new Cursor over the same backing bytes positioned at off,
// without validating it; the first read past the buffer fails with
// OutOfBounds. Mutating the fork's offset does not affect the original.
func (c Cursor) ForkAt(off uint) Cursor {
	return Cursor{buf: c.buf, off: off}
}

// ReadByte reads and consumes one byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.off >= uint(len(c.buf)) {
		return 0, mmdberrors.NewOutOfBoundsError()
	}
	b := c.buf[c.off]
	c.off++
	return b, nil
}

// ReadBytes reads and consumes n bytes, returning a zero-copy slice into the
// backing buffer.
func (c *Cursor) ReadBytes(n uint) ([]byte, error) {
	if c.off+n > uint(len(c.buf)) || c.off+n < c.off {
		return nil, mmdberrors.NewOutOfBoundsError()
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

// ReadUint reads n big-endian bytes (0 <= n <= 8), zero-extended into the
// low-order bytes of a 64-bit result. n = 0 yields zero without consuming any
// bytes.
func (c *Cursor) ReadUint(n uint) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	b, err := c.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	var val uint64
	for _, x := range b {
		val = (val << 8) | uint64(x)
	}
	return val, nil
}
