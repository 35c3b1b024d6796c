package maxminddb

import "github.com/maxpoulin64/mmdb-go/mmdbdata"

// Value is the tagged union decoded from an MMDB data-section entry. See
// mmdbdata.Value for the full set of accessors (AsString, AsUint32,
// AsMap, ...).
type Value = mmdbdata.Value

// Kind is the discriminant tag on a decoded Value.
type Kind = mmdbdata.Kind

// Map is an insertion-ordered mapping from string keys to Values.
type Map = mmdbdata.Map

// Array is an ordered sequence of Values.
type Array = mmdbdata.Array

// Kind constants, re-exported from mmdbdata for convenience.
const (
	KindString  = mmdbdata.KindString
	KindDouble  = mmdbdata.KindDouble
	KindBinary  = mmdbdata.KindBinary
	KindUint16  = mmdbdata.KindUint16
	KindUint32  = mmdbdata.KindUint32
	KindMap     = mmdbdata.KindMap
	KindInt32   = mmdbdata.KindInt32
	KindUint64  = mmdbdata.KindUint64
	KindUint128 = mmdbdata.KindUint128
	KindArray   = mmdbdata.KindArray
	KindBoolean = mmdbdata.KindBoolean
	KindFloat   = mmdbdata.KindFloat
)
