// Package trie implements the bit-indexed binary search tree that maps IP
// address prefixes to data-section pointers (or to "not found").
package trie

import "github.com/maxpoulin64/mmdb-go/internal/mmdberrors"

// Walker reads nodes from a database's search tree and walks it bit by bit.
type Walker struct {
	buffer     []byte
	recordSize uint
	nodeCount  uint
	recordLen  uint // bytes per node record pair
}

// New creates a Walker over buffer, which must be exactly the search-tree
// section of the database (starting at offset 0, one node per recordSize*2
// bits). recordSize must be 24, 28, or 32.
func New(buffer []byte, recordSize, nodeCount uint) (Walker, error) {
	switch recordSize {
	case 24, 28, 32:
	default:
		return Walker{}, mmdberrors.NewInvalidNodeSizeError(recordSize)
	}
	return Walker{
		buffer:     buffer,
		recordSize: recordSize,
		nodeCount:  nodeCount,
		recordLen:  recordSize / 4,
	}, nil
}

// NodeCount returns the number of nodes in the tree.
func (w Walker) NodeCount() uint {
	return w.nodeCount
}

// RecordSize returns the configured record size in bits.
func (w Walker) RecordSize() uint {
	return w.recordSize
}

// SearchTreeSize returns the size in bytes of the search tree, i.e. the
// buffer Walker was constructed over.
func (w Walker) SearchTreeSize() uint {
	return w.nodeCount * w.recordLen
}

// ReadNode reads the record for the given bit (0 = left, 1 = right) of a
// node, handling the three record-size encodings, including the 28-bit
// case's shared byte whose two nibbles belong to the left and right
// records respectively.
func (w Walker) ReadNode(node, bit uint) (uint, error) {
	switch w.recordSize {
	case 24:
		offset := node * 6
		b, err := w.slice(offset, 6)
		if err != nil {
			return 0, err
		}
		off := bit * 3
		return uint(b[off])<<16 | uint(b[off+1])<<8 | uint(b[off+2]), nil
	case 28:
		offset := node * 7
		b, err := w.slice(offset, 7)
		if err != nil {
			return 0, err
		}
		shared := uint(b[3])
		if bit == 0 {
			return (shared&0xF0)<<20 | uint(b[0])<<16 | uint(b[1])<<8 | uint(b[2]), nil
		}
		return (shared&0x0F)<<24 | uint(b[4])<<16 | uint(b[5])<<8 | uint(b[6]), nil
	case 32:
		offset := node*8 + bit*4
		b, err := w.slice(offset, 4)
		if err != nil {
			return 0, err
		}
		return uint(b[0])<<24 | uint(b[1])<<16 | uint(b[2])<<8 | uint(b[3]), nil
	default:
		return 0, mmdberrors.NewInvalidNodeSizeError(w.recordSize)
	}
}

func (w Walker) slice(offset, n uint) ([]byte, error) {
	if offset+n > uint(len(w.buffer)) {
		return nil, mmdberrors.NewOutOfBoundsError()
	}
	return w.buffer[offset : offset+n], nil
}

// Walk descends the tree starting at (startNode, startBit), consuming bits
// of addr (a 16-byte address, MSB-first) up to stopBit, and returns the
// node reached together with the number of bits actually consumed. It
// stops early if it reaches a leaf record (node >= NodeCount, meaning
// either "no data" at exactly NodeCount or a resolved data pointer above
// it) before stopBit is reached.
func (w Walker) Walk(addr [16]byte, startNode uint, startBit, stopBit int) (uint, int, error) {
	node := startNode
	i := startBit
	for ; i < stopBit && node < w.nodeCount; i++ {
		byteIdx := i >> 3
		bitPos := 7 - uint(i&7)
		bit := (uint(addr[byteIdx]) >> bitPos) & 1

		next, err := w.ReadNode(node, bit)
		if err != nil {
			return 0, 0, err
		}
		node = next
	}
	return node, i, nil
}

// IPv4Start locates the node at which IPv4 lookups begin within an IPv6
// database, by walking 96 bits of leading zero from the root (the IPv4
// subtree is always rooted under the all-zeros 96-bit prefix, per the
// ::/96 mapping the format embeds).
func (w Walker) IPv4Start() (node uint, depth int) {
	node = 0
	i := 0
	for ; i < 96 && node < w.nodeCount; i++ {
		next, err := w.ReadNode(node, 0)
		if err != nil {
			// A malformed tree is not reported here; an IPv4 Lookup walk
			// starts at this node, reads it again, and reports the same
			// InvalidDatabaseError.
			return node, i
		}
		node = next
	}
	return node, i
}
