package maxminddb

import (
	"iter"
	"net/netip"

	"github.com/maxpoulin64/mmdb-go/internal/address"
)

// networkFrame is one pending subtree in a Networks walk: the node to
// descend from, the address bits fixed by the path taken to reach it, and
// how many of those bits are meaningful.
type networkFrame struct {
	node  uint
	addr  [16]byte
	depth int
}

// Networks returns an iterator over every network the search tree assigns a
// record to, each paired with the Result for that record. Iteration visits
// the 0 (left) branch of a node before its 1 (right) branch, so results come
// out in ascending address order within any run of equal-length prefixes.
//
// A database whose Metadata.IPVersion is 4 yields IPv4 prefixes; one whose
// IPVersion is 6 yields IPv6 prefixes, including any IPv4-mapped addresses
// found under ::/96.
func (r *Reader) Networks() iter.Seq[Result] {
	return r.networksFrom(nil)
}

// NetworksWithin restricts Networks to the subtree that covers prefix. The
// prefix's address family need not match the database's: an IPv4 prefix
// against an IPv6 database is mapped onto ::/96 first.
func (r *Reader) NetworksWithin(prefix netip.Prefix) iter.Seq[Result] {
	return r.networksFrom(&prefix)
}

func (r *Reader) networksFrom(within *netip.Prefix) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		if r.buffer == nil {
			yield(Result{err: closedDatabaseError{}})
			return
		}

		root, is4, err := r.networksRoot(within)
		if err != nil {
			yield(Result{err: err})
			return
		}

		nodeCount := r.Metadata.NodeCount
		stack := []networkFrame{root}

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch {
			case f.node == nodeCount:
				// no record assigned to this subtree
			case f.node > nodeCount:
				offset := f.node - nodeCount - dataSectionSeparatorSize
				res := Result{r: r, offset: offset, addr: f.addr, depth: f.depth, is4: is4}
				if !yield(res) {
					return
				}
			default:
				left, err := r.walker.ReadNode(f.node, 0)
				if err != nil {
					yield(Result{err: err})
					return
				}
				right, err := r.walker.ReadNode(f.node, 1)
				if err != nil {
					yield(Result{err: err})
					return
				}

				rightAddr := f.addr
				rightAddr[f.depth>>3] |= 1 << uint(7-(f.depth&7))

				// Pushed right-then-left so left pops first, matching the
				// documented 0-before-1 iteration order.
				stack = append(stack, networkFrame{node: right, addr: rightAddr, depth: f.depth + 1})
				stack = append(stack, networkFrame{node: left, addr: f.addr, depth: f.depth + 1})
			}
		}
	}
}

// networksRoot resolves the (node, address prefix, depth) a Networks walk
// should start from, descending within's bits first when one is given.
func (r *Reader) networksRoot(within *netip.Prefix) (networkFrame, bool, error) {
	if within == nil {
		if r.Metadata.IPVersion != 6 {
			return networkFrame{node: 0, depth: 96}, true, nil
		}
		return networkFrame{node: 0, depth: 0}, false, nil
	}

	addr := within.Addr()
	bits := within.Bits()
	if addr.Is4In6() {
		addr = addr.Unmap()
	}

	if addr.Is4() {
		full := address.IPv4In6(addr.As4())
		node, depth, err := r.walker.Walk(full, r.ipv4Start, r.ipv4StartBitDepth, r.ipv4StartBitDepth+bits)
		if err != nil {
			return networkFrame{}, true, err
		}
		return networkFrame{node: node, addr: full, depth: depth}, true, nil
	}

	full := addr.As16()
	node, depth, err := r.walker.Walk(full, 0, 0, bits)
	if err != nil {
		return networkFrame{}, false, err
	}
	return networkFrame{node: node, addr: full, depth: depth}, false, nil
}
