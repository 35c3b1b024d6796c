package maxminddb

import (
	"net/netip"
	"strings"

	"github.com/maxpoulin64/mmdb-go/internal/address"
	"github.com/maxpoulin64/mmdb-go/internal/mmdberrors"
)

// notFoundOffset is the sentinel Result.offset value meaning "the trie was
// walked but no data pointer was reached" (the sentinel hit, or a
// not-well-formed database exhausting the bit stream).
const notFoundOffset = ^uint(0)

// Lookup parses address (an IPv4 dotted-quad or IPv6 colon-hex literal) and
// returns a Result describing the record attached to its longest matching
// prefix, if any.
func (r *Reader) Lookup(addr string) Result {
	if r.buffer == nil {
		return Result{err: closedDatabaseError{}}
	}

	bits, is4, err := parseAddress(addr)
	if err != nil {
		return Result{err: err}
	}
	return r.lookupBits(bits, is4)
}

// LookupNetIP is a convenience path for callers that already hold a parsed
// netip.Addr, skipping the AddressParser.
func (r *Reader) LookupNetIP(ip netip.Addr) Result {
	if r.buffer == nil {
		return Result{err: closedDatabaseError{}}
	}
	if ip.Is4In6() {
		ip = ip.Unmap()
	}
	return r.lookupBits(ip.As16(), ip.Is4())
}

func parseAddress(addr string) ([16]byte, bool, error) {
	if strings.Contains(addr, ":") {
		bits, err := address.ParseIPv6(addr)
		return bits, false, err
	}
	v4, err := address.ParseIPv4(addr)
	if err != nil {
		return [16]byte{}, true, err
	}
	return address.IPv4In6(v4), true, nil
}

func (r *Reader) lookupBits(addr [16]byte, is4 bool) Result {
	if r.Metadata.IPVersion == 4 && !is4 {
		return Result{err: mmdberrors.NewUnsupportedAddressFamilyError(address.FormatIPv6(addr))}
	}

	startNode, startBit := uint(0), 0
	if is4 {
		startNode, startBit = r.ipv4Start, r.ipv4StartBitDepth
	}

	node, depth, err := r.walker.Walk(addr, startNode, startBit, 128)
	if err != nil {
		return Result{err: err}
	}

	nodeCount := r.Metadata.NodeCount
	switch {
	case node <= nodeCount:
		// node == nodeCount is the format's "no record" sentinel; node <
		// nodeCount means the bit stream was exhausted before reaching a
		// terminal, which a well-formed database never produces. Both are
		// reported as "no record" rather than an error.
		return Result{depth: depth, addr: addr, is4: is4, offset: notFoundOffset}
	default:
		offset := node - nodeCount - dataSectionSeparatorSize
		return Result{depth: depth, addr: addr, is4: is4, offset: offset, r: r}
	}
}

// LookupOffset returns a Result for the value at a data-section offset
// previously obtained from Result.RecordOffset, bypassing the trie walk.
// Its Prefix method returns an invalid netip.Prefix, since no address
// walk produced this offset.
func (r *Reader) LookupOffset(offset uintptr) Result {
	if r.buffer == nil {
		return Result{err: closedDatabaseError{}}
	}
	return Result{offset: uint(offset), r: r, fromOffset: true}
}

type closedDatabaseError struct{}

func (closedDatabaseError) Error() string {
	return "cannot use a Reader after Close"
}
