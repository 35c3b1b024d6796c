// Package mmdbdata provides the public value types produced by decoding an
// MMDB data-section entry: the tagged-union Value, its Kind discriminant,
// and the Map/Array container types. These are re-exported by the root
// package so callers can reference them either as maxminddb.Value or
// mmdbdata.Value.
package mmdbdata

import "github.com/maxpoulin64/mmdb-go/internal/decoder"

// Kind is the discriminant tag on a decoded Value.
type Kind = decoder.Kind

// Value is the tagged union produced by decoding one MMDB data-section
// entry: a string, binary blob, one of the fixed-width numeric types, a
// boolean, an insertion-ordered Map, or an ordered Array.
type Value = decoder.Value

// Map is an insertion-ordered mapping from string keys to Values.
type Map = decoder.Map

// Array is an ordered sequence of Values.
type Array = decoder.Array

// Kind constants, matching the on-wire control-byte tag space. Extended,
// Pointer, Container, and EndMarker never surface as a Value's Kind; they
// are decoding artifacts or tags the decoder resolves transparently.
const (
	KindExtended  = decoder.KindExtended
	KindPointer   = decoder.KindPointer
	KindString    = decoder.KindString
	KindDouble    = decoder.KindDouble
	KindBinary    = decoder.KindBinary
	KindUint16    = decoder.KindUint16
	KindUint32    = decoder.KindUint32
	KindMap       = decoder.KindMap
	KindInt32     = decoder.KindInt32
	KindUint64    = decoder.KindUint64
	KindUint128   = decoder.KindUint128
	KindArray     = decoder.KindArray
	KindContainer = decoder.KindContainer
	KindEndMarker = decoder.KindEndMarker
	KindBoolean   = decoder.KindBoolean
	KindFloat     = decoder.KindFloat
)
