// Package decoder implements the recursive, pointer-following decoder for
// the MMDB data section, producing a tagged-union Value tree.
package decoder

import "fmt"

// Kind is the discriminant tag on a decoded Value. The numeric values follow
// the on-the-wire control-byte tag space, including the tags that never
// surface as a Value variant (Extended is a decoding artifact; Pointer is
// resolved transparently; Container and EndMarker are reserved by the format
// and rejected wherever they are decoded as a value).
type Kind int

// Kind constants, in on-wire tag order.
const (
	KindExtended Kind = iota
	KindPointer
	KindString
	KindDouble
	KindBinary
	KindUint16
	KindUint32
	KindMap
	KindInt32
	KindUint64
	KindUint128
	KindArray
	KindContainer
	KindEndMarker
	KindBoolean
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindExtended:
		return "Extended"
	case KindPointer:
		return "Pointer"
	case KindString:
		return "String"
	case KindDouble:
		return "Double"
	case KindBinary:
		return "Binary"
	case KindUint16:
		return "Uint16"
	case KindUint32:
		return "Uint32"
	case KindMap:
		return "Map"
	case KindInt32:
		return "Int32"
	case KindUint64:
		return "Uint64"
	case KindUint128:
		return "Uint128"
	case KindArray:
		return "Array"
	case KindContainer:
		return "Container"
	case KindEndMarker:
		return "EndMarker"
	case KindBoolean:
		return "Boolean"
	case KindFloat:
		return "Float"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsContainer reports whether k is Map or Array.
func (k Kind) IsContainer() bool {
	return k == KindMap || k == KindArray
}

// IsScalar reports whether k is one of the non-container, non-meta data
// kinds that a decoded Value can hold directly.
func (k Kind) IsScalar() bool {
	switch k {
	case KindString, KindDouble, KindBinary, KindUint16, KindUint32,
		KindInt32, KindUint64, KindUint128, KindBoolean, KindFloat:
		return true
	default:
		return false
	}
}
