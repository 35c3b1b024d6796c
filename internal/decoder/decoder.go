package decoder

import (
	"fmt"
	"math"

	"github.com/maxpoulin64/mmdb-go/internal/cursor"
	"github.com/maxpoulin64/mmdb-go/internal/mmdberrors"
)

// DefaultMaxDepth is the recursion guard used when callers don't override
// it. It matches the value libmaxminddb uses.
const DefaultMaxDepth = 512

// StringInterner interns a string read from data[offset:offset+size],
// potentially returning a previously interned instance for the same
// (offset, size) pair. It lets repeated pointer targets — common in real
// MaxMind databases, which deduplicate heavily — share one allocation.
type StringInterner interface {
	InternAt(offset, size uint, data []byte) string
}

type noopInterner struct{}

func (noopInterner) InternAt(offset, size uint, data []byte) string {
	return string(data[offset : offset+size])
}

// NoopInterner performs no interning; every call allocates a fresh string.
var NoopInterner StringInterner = noopInterner{}

// ValueDecoder decodes MMDB data-section values at a given offset into a
// Value tree, following pointers and enforcing a maximum recursion depth.
//
// The buffer passed to New must be the data section alone: pointer targets
// are offsets relative to its start.
type ValueDecoder struct {
	data     []byte
	base     cursor.Cursor
	maxDepth int
	interner StringInterner
}

// New creates a ValueDecoder over the data section bytes.
func New(data []byte) ValueDecoder {
	return ValueDecoder{
		data:     data,
		base:     cursor.New(data),
		maxDepth: DefaultMaxDepth,
		interner: NoopInterner,
	}
}

// WithMaxDepth returns a copy of d with a different recursion ceiling.
func (d ValueDecoder) WithMaxDepth(max int) ValueDecoder {
	d.maxDepth = max
	return d
}

// WithInterner returns a copy of d that interns strings through interner.
func (d ValueDecoder) WithInterner(interner StringInterner) ValueDecoder {
	if interner == nil {
		interner = NoopInterner
	}
	d.interner = interner
	return d
}

// Decode decodes one value at offset, following pointers and recursing into
// maps and arrays, and returns the Value tree together with the offset just
// past the value's own encoding (a pointer reports the offset just past the
// pointer's bytes, not past the pointed-to value).
func (d ValueDecoder) Decode(offset uint) (Value, uint, error) {
	return d.decode(offset, 0)
}

func (d ValueDecoder) decode(offset uint, depth int) (Value, uint, error) {
	if depth > d.maxDepth {
		return Value{}, 0, mmdberrors.NewDepthExceededError(d.maxDepth)
	}

	kind, size, dataOffset, err := d.decodeCtrlData(offset)
	if err != nil {
		return Value{}, 0, err
	}

	if kind == KindPointer {
		target, afterPointer, err := d.decodePointer(size, dataOffset)
		if err != nil {
			return Value{}, 0, err
		}
		val, _, err := d.decode(target, depth+1)
		if err != nil {
			return Value{}, 0, err
		}
		return val, afterPointer, nil
	}

	return d.decodeByKind(kind, size, dataOffset, depth)
}

func (d ValueDecoder) decodeByKind(kind Kind, size, offset uint, depth int) (Value, uint, error) {
	switch kind {
	case KindString:
		s, next, err := d.readInternedString(size, offset)
		if err != nil {
			return Value{}, 0, err
		}
		return stringValue(s), next, nil
	case KindBinary, KindUint128:
		b, next, err := d.readBytes(size, offset)
		if err != nil {
			return Value{}, 0, err
		}
		return binaryValue(b), next, nil
	case KindUint16:
		n, next, err := d.readUint(size, offset, 2)
		if err != nil {
			return Value{}, 0, err
		}
		return uint16Value(uint16(n)), next, nil
	case KindUint32:
		n, next, err := d.readUint(size, offset, 4)
		if err != nil {
			return Value{}, 0, err
		}
		return uint32Value(uint32(n)), next, nil
	case KindUint64:
		n, next, err := d.readUint(size, offset, 8)
		if err != nil {
			return Value{}, 0, err
		}
		return uint64Value(n), next, nil
	case KindInt32:
		n, next, err := d.readInt32(size, offset)
		if err != nil {
			return Value{}, 0, err
		}
		return int32Value(n), next, nil
	case KindDouble:
		f, next, err := d.readFloat64(size, offset)
		if err != nil {
			return Value{}, 0, err
		}
		return doubleValue(f), next, nil
	case KindFloat:
		f, next, err := d.readFloat32(size, offset)
		if err != nil {
			return Value{}, 0, err
		}
		return floatValue(f), next, nil
	case KindBoolean:
		return booleanValue(size != 0), offset, nil
	case KindMap:
		return d.decodeMap(size, offset, depth)
	case KindArray:
		return d.decodeArray(size, offset, depth)
	default:
		return Value{}, 0, mmdberrors.NewUnsupportedTagError(int(kind))
	}
}

func (d ValueDecoder) decodeMap(pairCount, offset uint, depth int) (Value, uint, error) {
	m := newMap(pairCount)
	for i := uint(0); i < pairCount; i++ {
		key, next, err := d.decodeMapKey(offset, depth)
		if err != nil {
			return Value{}, 0, err
		}
		val, next2, err := d.decode(next, depth+1)
		if err != nil {
			return Value{}, 0, err
		}
		m.append(key, val)
		offset = next2
	}
	return mapValue(m), offset, nil
}

// decodeMapKey decodes the value at offset expecting a String, following
// pointers. A map key that does not decode to a String is MalformedMapKey.
func (d ValueDecoder) decodeMapKey(offset uint, depth int) (string, uint, error) {
	kind, size, dataOffset, err := d.decodeCtrlData(offset)
	if err != nil {
		return "", 0, err
	}
	if kind == KindPointer {
		target, afterPointer, err := d.decodePointer(size, dataOffset)
		if err != nil {
			return "", 0, err
		}
		key, _, err := d.decodeMapKey(target, depth+1)
		return key, afterPointer, err
	}
	if kind != KindString {
		return "", 0, mmdberrors.MalformedMapKeyError{}
	}
	s, next, err := d.readInternedString(size, dataOffset)
	if err != nil {
		return "", 0, err
	}
	return s, next, nil
}

func (d ValueDecoder) decodeArray(count, offset uint, depth int) (Value, uint, error) {
	a := newArray(count)
	for i := uint(0); i < count; i++ {
		val, next, err := d.decode(offset, depth+1)
		if err != nil {
			return Value{}, 0, err
		}
		a.append(val)
		offset = next
	}
	return arrayValue(a), offset, nil
}

// decodeCtrlData reads the control byte at offset, following the Extended
// tag-continuation byte, and returns the resolved Kind, payload size, and
// the offset of the payload itself.
func (d ValueDecoder) decodeCtrlData(offset uint) (Kind, uint, uint, error) {
	c := d.base.ForkAt(offset)
	ctrl, err := c.ReadByte()
	if err != nil {
		return 0, 0, 0, err
	}

	kind := Kind(ctrl >> 5)
	if kind == KindExtended {
		next, err := c.ReadByte()
		if err != nil {
			return 0, 0, 0, err
		}
		kind = Kind(next) + 7
	}

	size, newOffset, err := d.sizeFromCtrlByte(ctrl, c.Offset(), kind)
	if err != nil {
		return 0, 0, 0, err
	}
	return kind, size, newOffset, nil
}

func (d ValueDecoder) sizeFromCtrlByte(ctrl byte, offset uint, kind Kind) (uint, uint, error) {
	size := uint(ctrl & 0x1f)
	if kind == KindExtended {
		return size, offset, nil
	}
	if size < 29 {
		return size, offset, nil
	}

	c := d.base.ForkAt(offset)
	switch size {
	case 29:
		b, err := c.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		return 29 + uint(b), c.Offset(), nil
	case 30:
		n, err := c.ReadUint(2)
		if err != nil {
			return 0, 0, err
		}
		return 285 + uint(n), c.Offset(), nil
	default: // 31
		n, err := c.ReadUint(3)
		if err != nil {
			return 0, 0, err
		}
		return 65821 + uint(n), c.Offset(), nil
	}
}

// decodePointer decodes the pointer encoding: size is the control byte's
// low 5 bits, offset is the position just past the control byte. Returns
// the resolved data-section offset and the position just past the
// pointer's own bytes.
func (d ValueDecoder) decodePointer(size, offset uint) (uint, uint, error) {
	sizeSel := (size >> 3) & 0x3
	extra := size & 0x7

	c := d.base.ForkAt(offset)

	var target uint
	switch sizeSel {
	case 0:
		b0, err := c.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		target = (extra << 8) | uint(b0)
	case 1:
		n, err := c.ReadUint(2)
		if err != nil {
			return 0, 0, err
		}
		target = (extra<<16 | uint(n)) + 2048
	case 2:
		n, err := c.ReadUint(3)
		if err != nil {
			return 0, 0, err
		}
		target = (extra<<24 | uint(n)) + 526336
	default: // 3
		n, err := c.ReadUint(4)
		if err != nil {
			return 0, 0, err
		}
		target = uint(n)
	}

	if target >= uint(len(d.data)) {
		return 0, 0, mmdberrors.NewPointerOutOfRangeError(target)
	}
	return target, c.Offset(), nil
}

func (d ValueDecoder) readBytes(size, offset uint) ([]byte, uint, error) {
	c := d.base.ForkAt(offset)
	b, err := c.ReadBytes(size)
	if err != nil {
		return nil, 0, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, c.Offset(), nil
}

func (d ValueDecoder) readInternedString(size, offset uint) (string, uint, error) {
	if offset+size > d.base.Len() || offset+size < offset {
		return "", 0, mmdberrors.NewOutOfBoundsError()
	}
	return d.interner.InternAt(offset, size, d.data), offset + size, nil
}

func (d ValueDecoder) readUint(size, offset, maxBytes uint) (uint64, uint, error) {
	if size > maxBytes {
		return 0, 0, mmdberrors.NewInvalidPayloadSizeError("unsigned integer", size)
	}
	c := d.base.ForkAt(offset)
	n, err := c.ReadUint(size)
	if err != nil {
		return 0, 0, err
	}
	return n, c.Offset(), nil
}

func (d ValueDecoder) readInt32(size, offset uint) (int32, uint, error) {
	if size > 4 {
		return 0, 0, mmdberrors.NewInvalidPayloadSizeError("Int32", size)
	}
	c := d.base.ForkAt(offset)
	b, err := c.ReadBytes(size)
	if err != nil {
		return 0, 0, err
	}
	var val int32
	for _, x := range b {
		val = (val << 8) | int32(x)
	}
	return val, c.Offset(), nil
}

func (d ValueDecoder) readFloat64(size, offset uint) (float64, uint, error) {
	if size != 8 {
		return 0, 0, mmdberrors.NewInvalidPayloadSizeError("Double", size)
	}
	c := d.base.ForkAt(offset)
	bits, err := c.ReadUint(8)
	if err != nil {
		return 0, 0, err
	}
	return math.Float64frombits(bits), c.Offset(), nil
}

func (d ValueDecoder) readFloat32(size, offset uint) (float32, uint, error) {
	if size != 4 {
		return 0, 0, mmdberrors.NewInvalidPayloadSizeError("Float", size)
	}
	c := d.base.ForkAt(offset)
	bits, err := c.ReadUint(4)
	if err != nil {
		return 0, 0, err
	}
	return math.Float32frombits(uint32(bits)), c.Offset(), nil
}

// NextValueOffset skips ahead numberToSkip logical values without building
// them, used by DecodeAtPath to step over values that are not on the
// requested path.
func (d ValueDecoder) NextValueOffset(offset, numberToSkip uint) (uint, error) {
	for numberToSkip > 0 {
		kind, size, next, err := d.decodeCtrlData(offset)
		if err != nil {
			return 0, err
		}
		switch kind {
		case KindPointer:
			_, next, err = d.decodePointer(size, next)
			if err != nil {
				return 0, err
			}
			offset = next
		case KindMap:
			numberToSkip += 2 * size
			offset = next
		case KindArray:
			numberToSkip += size
			offset = next
		case KindBoolean:
			offset = next
		default:
			offset = next + size
		}
		numberToSkip--
	}
	return offset, nil
}

// resolveContainer reads the control data at offset, following any chain of
// pointers to the value they target, and returns the resolved kind, size,
// and payload offset.
func (d ValueDecoder) resolveContainer(offset uint) (Kind, uint, uint, error) {
	for depth := 0; ; depth++ {
		if depth > d.maxDepth {
			return 0, 0, 0, mmdberrors.NewDepthExceededError(d.maxDepth)
		}
		kind, size, next, err := d.decodeCtrlData(offset)
		if err != nil {
			return 0, 0, 0, err
		}
		if kind != KindPointer {
			return kind, size, next, nil
		}
		target, _, err := d.decodePointer(size, next)
		if err != nil {
			return 0, 0, 0, err
		}
		offset = target
	}
}

// DecodeMapAt iterates the Map at offset pair by pair, invoking cb with each
// key and decoded value in insertion order. When cb returns false the
// remaining pairs are never materialized.
func (d ValueDecoder) DecodeMapAt(offset uint, cb func(key string, v Value) bool) error {
	kind, pairCount, next, err := d.resolveContainer(offset)
	if err != nil {
		return err
	}
	if kind != KindMap {
		return mmdberrors.NewInvalidDatabaseError(
			"the value at offset %d is a %s, not a Map", offset, kind)
	}
	for i := uint(0); i < pairCount; i++ {
		key, afterKey, err := d.decodeMapKey(next, 0)
		if err != nil {
			return err
		}
		val, afterVal, err := d.decode(afterKey, 0)
		if err != nil {
			return err
		}
		if !cb(key, val) {
			return nil
		}
		next = afterVal
	}
	return nil
}

// DecodeSliceAt iterates the Array at offset element by element, invoking cb
// with each index and decoded value in order. When cb returns false the
// remaining elements are never materialized.
func (d ValueDecoder) DecodeSliceAt(offset uint, cb func(i int, v Value) bool) error {
	kind, count, next, err := d.resolveContainer(offset)
	if err != nil {
		return err
	}
	if kind != KindArray {
		return mmdberrors.NewInvalidDatabaseError(
			"the value at offset %d is a %s, not an Array", offset, kind)
	}
	for i := uint(0); i < count; i++ {
		val, afterVal, err := d.decode(next, 0)
		if err != nil {
			return err
		}
		if !cb(int(i), val) {
			return nil
		}
		next = afterVal
	}
	return nil
}

// DecodeAtPath descends from offset through nested Maps and Arrays by path
// elements (string keys and int indexes) and builds only the value at the
// end of the path. Non-matching map entries and preceding array elements
// are skipped with NextValueOffset rather than decoded. The bool result is
// false when the path is not present in the data.
func (d ValueDecoder) DecodeAtPath(offset uint, path []any) (Value, bool, error) {
	for _, elem := range path {
		kind, size, next, err := d.resolveContainer(offset)
		if err != nil {
			return Value{}, false, err
		}
		switch elem := elem.(type) {
		case string:
			if kind != KindMap {
				return Value{}, false, nil
			}
			matched := false
			for i := uint(0); i < size; i++ {
				key, afterKey, err := d.decodeMapKey(next, 0)
				if err != nil {
					return Value{}, false, err
				}
				if key == elem {
					offset = afterKey
					matched = true
					break
				}
				next, err = d.NextValueOffset(afterKey, 1)
				if err != nil {
					return Value{}, false, err
				}
			}
			if !matched {
				return Value{}, false, nil
			}
		case int:
			if kind != KindArray || elem < 0 || uint(elem) >= size {
				return Value{}, false, nil
			}
			target, err := d.NextValueOffset(next, uint(elem))
			if err != nil {
				return Value{}, false, err
			}
			offset = target
		default:
			return Value{}, false, fmt.Errorf("unsupported path element type %T", elem)
		}
	}
	v, _, err := d.decode(offset, 0)
	return v, true, err
}
