package maxminddb

import "net/netip"

// A Result whose offset is notFoundOffset (see lookup.go) is a miss. The
// zero Result has offset 0, not notFoundOffset, so Found reports true for it.

// Result is the outcome of a Lookup: either an error, a miss (no record
// covers the address), or a hit together with enough information to
// decode its Value and recover the matched network.
type Result struct {
	r          *Reader
	err        error
	addr       [16]byte
	offset     uint
	depth      int
	is4        bool
	fromOffset bool
}

// Err reports an error encountered while looking up the address (address
// syntax errors, unsupported address family, or structural database
// corruption). It is nil for both hits and legitimate misses.
func (res Result) Err() error {
	return res.err
}

// Found reports whether the address matched a record. It is false for a
// legitimate miss and for an errored lookup.
func (res Result) Found() bool {
	return res.err == nil && res.offset != notFoundOffset
}

// Value decodes and returns the Value attached to the matched record. For
// a lookup that missed it returns the zero Value and a nil error; for one
// that errored it returns the lookup's error. Check Found first.
func (res Result) Value() (Value, error) {
	if res.err != nil {
		return Value{}, res.err
	}
	if res.offset == notFoundOffset || res.r == nil {
		return Value{}, nil
	}
	return res.r.decodeAt(res.offset)
}

// RecordOffset returns the data-section offset of the matched record. It
// can be passed to Reader.Decoder or Reader.LookupOffset to re-decode the
// same record without walking the trie again, or used as a
// database-version-scoped identifier to deduplicate records across
// lookups. It is only meaningful when Found returns true.
func (res Result) RecordOffset() uintptr {
	return uintptr(res.offset)
}

var zeroIP = netip.MustParseAddr("::")

// Prefix returns the network prefix the matched record covers. It is the
// zero netip.Prefix if the Result came from LookupOffset rather than a
// trie walk.
func (res Result) Prefix() netip.Prefix {
	if res.fromOffset {
		return netip.Prefix{}
	}

	depth := res.depth
	if res.is4 {
		// depth is counted in the hybrid 128-bit numbering Walk uses; an
		// IPv4 lookup's walk starts partway into it at ipv4StartBitDepth.
		// A record whose prefix length is shorter than the conventional
		// ::/96 split point (rare, but not excluded by the format) covers
		// the entire IPv4 space as seen through this database.
		if depth < 96 {
			pfx, _ := zeroIP.Prefix(depth)
			return pfx
		}
		depth -= 96
		addr := netip.AddrFrom4([4]byte{res.addr[12], res.addr[13], res.addr[14], res.addr[15]})
		pfx, _ := addr.Prefix(depth)
		return pfx
	}

	addr := netip.AddrFrom16(res.addr)
	pfx, _ := addr.Prefix(depth)
	return pfx
}
