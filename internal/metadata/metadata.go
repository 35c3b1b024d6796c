// Package metadata locates and decodes the MMDB metadata map that trails
// the data section, and projects it onto a typed Metadata record.
package metadata

import (
	"bytes"

	"github.com/maxpoulin64/mmdb-go/internal/decoder"
	"github.com/maxpoulin64/mmdb-go/internal/mmdberrors"
)

// Marker is the 14-byte magic sequence preceding the metadata map.
const Marker = "\xAB\xCD\xEFMaxMind.com"

// ScanWindow bounds the reverse scan for Marker to the trailing portion of
// the file, matching libmaxminddb's own search window.
const ScanWindow = 128 * 1024

// SeparatorSize is the number of zero bytes separating the search tree from
// the data section.
const SeparatorSize = 16

// Metadata is the fixed-shape record derived from the root metadata map.
type Metadata struct {
	NodeCount                uint
	RecordSize               uint
	IPVersion                uint
	DatabaseType             string
	Languages                []string
	BinaryFormatMajorVersion uint
	BinaryFormatMinorVersion uint
}

// NodeSizeBytes is the number of bytes a single search-tree node occupies.
func (m Metadata) NodeSizeBytes() uint {
	return m.RecordSize / 4
}

// SearchTreeSize is the size in bytes of the search tree.
func (m Metadata) SearchTreeSize() uint {
	return m.NodeCount * m.NodeSizeBytes()
}

// DataSectionStart is the byte offset, relative to the start of the file,
// at which the data section begins (just past the search tree and its
// fixed 16-byte separator).
func (m Metadata) DataSectionStart() uint {
	return m.SearchTreeSize() + SeparatorSize
}

// Locate scans buf backward for the rightmost occurrence of Marker within
// the trailing min(ScanWindow, len(buf)) bytes and returns the offset of
// the byte immediately following it (where the metadata map begins). The
// reverse scan intentionally allows the marker to begin exactly at the
// start of the search window (position >= minPosition, not position >
// minPosition as one draft of the source had it) so a marker landing right
// at the window boundary is still found.
func Locate(buf []byte) (uint, error) {
	minPosition := 0
	if len(buf) > ScanWindow {
		minPosition = len(buf) - ScanWindow
	}

	idx := bytes.LastIndex(buf[minPosition:], []byte(Marker))
	if idx == -1 {
		return 0, mmdberrors.MetadataMarkerMissingError{}
	}
	return uint(minPosition + idx + len(Marker)), nil
}

// Decode decodes the metadata map at the start of a ValueDecoder scoped to
// the trailing metadata bytes (i.e. a decoder whose data is buf[markerEnd:])
// and projects it onto a Metadata record.
func Decode(dec decoder.ValueDecoder) (Metadata, error) {
	val, _, err := dec.Decode(0)
	if err != nil {
		return Metadata{}, err
	}
	m, ok := val.AsMap()
	if !ok {
		return Metadata{}, mmdberrors.NewMetadataFieldTypeError("(root)", "Map", val.Kind().String())
	}

	nodeCount, err := requireUint(m, "node_count")
	if err != nil {
		return Metadata{}, err
	}
	recordSize, err := requireUint(m, "record_size")
	if err != nil {
		return Metadata{}, err
	}
	ipVersion, err := requireUint(m, "ip_version")
	if err != nil {
		return Metadata{}, err
	}
	databaseType, err := requireString(m, "database_type")
	if err != nil {
		return Metadata{}, err
	}
	languages, err := requireStringArray(m, "languages")
	if err != nil {
		return Metadata{}, err
	}
	majorVersion, err := requireUint(m, "binary_format_major_version")
	if err != nil {
		return Metadata{}, err
	}
	minorVersion, err := requireUint(m, "binary_format_minor_version")
	if err != nil {
		return Metadata{}, err
	}

	return Metadata{
		NodeCount:                nodeCount,
		RecordSize:               recordSize,
		IPVersion:                ipVersion,
		DatabaseType:             databaseType,
		Languages:                languages,
		BinaryFormatMajorVersion: majorVersion,
		BinaryFormatMinorVersion: minorVersion,
	}, nil
}

func field(m *decoder.Map, name string) (decoder.Value, error) {
	v, ok := m.Get(name)
	if !ok {
		return decoder.Value{}, mmdberrors.NewMetadataFieldMissingError(name)
	}
	return v, nil
}

func requireUint(m *decoder.Map, name string) (uint, error) {
	v, err := field(m, name)
	if err != nil {
		return 0, err
	}
	switch v.Kind() {
	case decoder.KindUint16:
		n, _ := v.AsUint16()
		return uint(n), nil
	case decoder.KindUint32:
		n, _ := v.AsUint32()
		return uint(n), nil
	case decoder.KindUint64:
		n, _ := v.AsUint64()
		return uint(n), nil
	default:
		return 0, mmdberrors.NewMetadataFieldTypeError(name, "unsigned integer", v.Kind().String())
	}
}

func requireString(m *decoder.Map, name string) (string, error) {
	v, err := field(m, name)
	if err != nil {
		return "", err
	}
	s, ok := v.AsString()
	if !ok {
		return "", mmdberrors.NewMetadataFieldTypeError(name, "String", v.Kind().String())
	}
	return s, nil
}

func requireStringArray(m *decoder.Map, name string) ([]string, error) {
	v, err := field(m, name)
	if err != nil {
		return nil, err
	}
	arr, ok := v.AsArray()
	if !ok {
		return nil, mmdberrors.NewMetadataFieldTypeError(name, "Array", v.Kind().String())
	}
	out := make([]string, arr.Len())
	for i := range out {
		elem, _ := arr.At(i)
		s, ok := elem.AsString()
		if !ok {
			return nil, mmdberrors.NewMetadataFieldTypeError(name, "Array of String", elem.Kind().String())
		}
		out[i] = s
	}
	return out, nil
}
