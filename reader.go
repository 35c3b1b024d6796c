package maxminddb

import (
	"errors"
	"io"
	"os"
	"runtime"

	"github.com/maxpoulin64/mmdb-go/internal/decoder"
	"github.com/maxpoulin64/mmdb-go/internal/metadata"
	"github.com/maxpoulin64/mmdb-go/internal/mmdberrors"
	"github.com/maxpoulin64/mmdb-go/internal/trie"
)

// Metadata holds the metadata decoded from the MMDB file, projected from
// the root metadata map by field name.
type Metadata struct {
	// DatabaseType indicates the structure of the data records associated
	// with IP addresses. Names starting with "GeoIP" are reserved for
	// MaxMind databases.
	DatabaseType string

	// Languages lists locale codes for which this database may contain
	// localized data.
	Languages []string

	// BinaryFormatMajorVersion is the major version of the MMDB binary
	// format (2, for the format this reader implements).
	BinaryFormatMajorVersion uint

	// BinaryFormatMinorVersion is the minor version of the MMDB binary
	// format.
	BinaryFormatMinorVersion uint

	// IPVersion is 4 for an IPv4-only database or 6 for one that also
	// accepts IPv4 addresses (mapped onto the ::/96 subtree).
	IPVersion uint

	// NodeCount is the number of nodes in the search tree.
	NodeCount uint

	// RecordSize is the size in bits of each of a node's two records: 24,
	// 28, or 32.
	RecordSize uint
}

func fromInternalMetadata(m metadata.Metadata) Metadata {
	return Metadata{
		DatabaseType:             m.DatabaseType,
		Languages:                m.Languages,
		BinaryFormatMajorVersion: m.BinaryFormatMajorVersion,
		BinaryFormatMinorVersion: m.BinaryFormatMinorVersion,
		IPVersion:                m.IPVersion,
		NodeCount:                m.NodeCount,
		RecordSize:               m.RecordSize,
	}
}

const dataSectionSeparatorSize = metadata.SeparatorSize

// Reader holds the memory-mapped bytes of an MMDB file, its decoded
// Metadata, and the precomputed search-tree and data-section views used to
// answer lookups. A Reader is immutable after construction and every
// method on it is safe for concurrent use.
type Reader struct {
	buffer            []byte
	walker            trie.Walker
	dec               decoder.ValueDecoder
	cacheProvider     decoder.CacheProvider
	Metadata          Metadata
	ipv4Start         uint
	ipv4StartBitDepth int
	hasMappedFile     bool
}

// acquireDecoder returns the value decoder to use for one decode call and
// a release function to invoke when the call is done. When a CacheProvider
// is configured the decoder carries an interner acquired for just this
// call, so pooled providers hand out an exclusive interner per decode
// rather than one pinned to the Reader's lifetime.
func (r *Reader) acquireDecoder() (decoder.ValueDecoder, func()) {
	if r.cacheProvider == nil {
		return r.dec, func() {}
	}
	interner := r.cacheProvider.Acquire()
	return r.dec.WithInterner(interner), func() { r.cacheProvider.Release(interner) }
}

func (r *Reader) decodeAt(offset uint) (decoder.Value, error) {
	dec, release := r.acquireDecoder()
	defer release()
	val, _, err := dec.Decode(offset)
	return val, mmdberrors.WrapWithOffset(err, offset)
}

type readerOptions struct {
	maxDepth      int
	cacheProvider decoder.CacheProvider
}

// ReaderOption configures Open or FromBytes.
type ReaderOption func(*readerOptions)

// WithMaxDepth overrides the recursion ceiling the value decoder enforces
// against cyclic or adversarially deep pointer graphs. The default is
// decoder.DefaultMaxDepth.
func WithMaxDepth(max int) ReaderOption {
	return func(o *readerOptions) { o.maxDepth = max }
}

// WithCache installs a shared, lock-protected string-interning cache so
// repeated pointer targets within and across lookups reuse one allocation,
// which matters for databases that deduplicate heavily (e.g. city name
// tables referenced by thousands of records). This is an opt-in decode-time
// optimization; results themselves are never cached across lookups.
func WithCache(opts CacheOptions) ReaderOption {
	return func(o *readerOptions) {
		o.cacheProvider = decoder.NewSharedCacheProvider(opts.toInternal())
	}
}

// WithPooledCache installs a cache provider that hands each decode an
// exclusive, lock-free cache pulled from a sync.Pool, trading memory for
// avoiding the lock WithCache takes on every intern.
func WithPooledCache(opts CacheOptions) ReaderOption {
	return func(o *readerOptions) {
		o.cacheProvider = decoder.NewPooledCacheProvider(opts.toInternal())
	}
}

// Open memory-maps file read-only and opens it as a Reader. On platforms
// without memory-map support, such as WebAssembly, or if mapping fails
// because the underlying filesystem doesn't support it, the whole file is
// read into memory instead. Call Close to release the mapping.
func Open(file string, options ...ReaderOption) (*Reader, error) {
	mapFile, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer mapFile.Close() //nolint:errcheck // error is generally not relevant

	stats, err := mapFile.Stat()
	if err != nil {
		return nil, err
	}

	size64 := stats.Size()
	if size64 == 0 {
		return nil, errors.New("file is empty")
	}
	size := int(size64)
	if int64(size) != size64 {
		return nil, errors.New("file too large")
	}

	data, err := mmap(int(mapFile.Fd()), size)
	if err != nil {
		if errors.Is(err, errors.ErrUnsupported) {
			data, err = openFallback(mapFile, size)
			if err != nil {
				return nil, err
			}
			return FromBytes(data, options...)
		}
		return nil, err
	}

	reader, err := FromBytes(data, options...)
	if err != nil {
		_ = munmap(data)
		return nil, err
	}

	reader.hasMappedFile = true
	runtime.SetFinalizer(reader, (*Reader).Close)
	return reader, nil
}

func openFallback(f *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	_, err := io.ReadFull(f, data)
	return data, err
}

// Close releases the resources backing the database. A Reader must not be
// used after Close returns.
func (r *Reader) Close() error {
	var err error
	if r.hasMappedFile {
		runtime.SetFinalizer(r, nil)
		r.hasMappedFile = false
		err = munmap(r.buffer)
	}
	r.buffer = nil
	return err
}

// FromBytes parses an in-memory MMDB file. The caller retains ownership of
// buffer; the Reader keeps a reference to it, so buffer must not be
// mutated for the life of the Reader.
func FromBytes(buffer []byte, options ...ReaderOption) (*Reader, error) {
	opts := &readerOptions{maxDepth: decoder.DefaultMaxDepth}
	for _, option := range options {
		option(opts)
	}

	markerEnd, err := metadata.Locate(buffer)
	if err != nil {
		return nil, err
	}

	metaDecoder := decoder.New(buffer[markerEnd:])
	meta, err := metadata.Decode(metaDecoder)
	if err != nil {
		return nil, err
	}

	switch meta.IPVersion {
	case 4, 6:
	default:
		return nil, mmdberrors.NewInvalidDatabaseError(
			"metadata ip_version must be 4 or 6, got %d", meta.IPVersion)
	}

	dataStart := meta.DataSectionStart()
	metadataStart := markerEnd - uint(len(metadata.Marker))
	if dataStart > metadataStart {
		return nil, mmdberrors.NewInvalidDatabaseError("the MMDB file contains invalid metadata")
	}

	walker, err := trie.New(buffer[:meta.SearchTreeSize()], meta.RecordSize, meta.NodeCount)
	if err != nil {
		return nil, err
	}

	dec := decoder.New(buffer[dataStart:metadataStart]).WithMaxDepth(opts.maxDepth)

	reader := &Reader{
		buffer:        buffer,
		walker:        walker,
		dec:           dec,
		cacheProvider: opts.cacheProvider,
		Metadata:      fromInternalMetadata(meta),
	}
	// A v4 address is always looked up starting at bit depth 96 in the
	// hybrid 128-bit numbering Walk uses, whether or not the database is
	// IPv6-capable: for an IPv4-only database the top 96 "virtual" bits
	// are never walked (no node reads happen for them) and the real
	// lookup begins at the root; for an IPv6 database the top 96 bits
	// select the ::/96 subtree IPv4 addresses map into, which may land on
	// a non-root node.
	if meta.IPVersion == 6 {
		reader.ipv4Start, reader.ipv4StartBitDepth = reader.walker.IPv4Start()
	} else {
		reader.ipv4Start, reader.ipv4StartBitDepth = 0, 96
	}

	return reader, nil
}
