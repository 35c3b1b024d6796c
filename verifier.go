package maxminddb

import "github.com/maxpoulin64/mmdb-go/internal/mmdberrors"

// Verify walks the whole database checking the structural invariants the
// format requires: metadata fields in their documented ranges, every
// search-tree record landing within bounds with no cycle, and the
// all-zero data-section separator. It does not validate decoded record
// contents against any schema.
func (r *Reader) Verify() error {
	if r.buffer == nil {
		return closedDatabaseError{}
	}
	if err := r.verifyMetadata(); err != nil {
		return err
	}
	if err := r.verifyDataSectionSeparator(); err != nil {
		return err
	}
	return r.verifySearchTree()
}

func (r *Reader) verifyMetadata() error {
	switch r.Metadata.IPVersion {
	case 4, 6:
	default:
		return mmdberrors.NewInvalidDatabaseError(
			"metadata ip_version must be 4 or 6, got %d", r.Metadata.IPVersion)
	}
	switch r.Metadata.RecordSize {
	case 24, 28, 32:
	default:
		return mmdberrors.NewInvalidDatabaseError(
			"metadata record_size must be 24, 28, or 32, got %d", r.Metadata.RecordSize)
	}
	if r.Metadata.DatabaseType == "" {
		return mmdberrors.NewMetadataFieldMissingError("database_type")
	}
	if r.Metadata.NodeCount == 0 {
		return mmdberrors.NewInvalidDatabaseError("metadata node_count must be positive")
	}
	return nil
}

func (r *Reader) verifyDataSectionSeparator() error {
	start := r.walker.SearchTreeSize()
	if start+dataSectionSeparatorSize > uint(len(r.buffer)) {
		return mmdberrors.NewOutOfBoundsError()
	}
	sep := r.buffer[start : start+dataSectionSeparatorSize]
	for _, b := range sep {
		if b != 0 {
			return mmdberrors.NewInvalidDatabaseError("the data section separator is not all zero")
		}
	}
	return nil
}

// verifySearchTree walks every node-to-node record in the tree (ignoring
// records that resolve to a data pointer or the no-data sentinel) reachable
// from the root to confirm no node is revisited, which a genuine tree never
// does but a corrupted or adversarial one might, sending Networks into an
// infinite loop. Nodes not reachable from the root are not reported.
func (r *Reader) verifySearchTree() error {
	nodeCount := r.Metadata.NodeCount
	visited := make([]bool, nodeCount)

	// An explicit stack rather than recursion: a corrupted tree can chain
	// nodes nodeCount deep before the visited check trips.
	stack := []uint{0}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node >= nodeCount {
			continue
		}
		if visited[node] {
			return mmdberrors.NewInvalidDatabaseError("the search tree contains a cycle at node %d", node)
		}
		visited[node] = true

		for bit := uint(0); bit <= 1; bit++ {
			next, err := r.walker.ReadNode(node, bit)
			if err != nil {
				return err
			}
			stack = append(stack, next)
		}
	}
	return nil
}
