package maxminddb

import "github.com/maxpoulin64/mmdb-go/internal/mmdberrors"

// Decoder decodes a single data-section entry bound to a fixed offset,
// obtained from Result.RecordOffset. It exists for callers that want to
// walk a Map or Array, or pull one field out of a nested record, without
// materializing every nested Value up front.
type Decoder struct {
	r      *Reader
	offset uintptr
}

// Decoder returns a Decoder bound to offset within r's data section.
func (r *Reader) Decoder(offset uintptr) *Decoder {
	return &Decoder{r: r, offset: offset}
}

// Decode decodes the entry at the bound offset, following pointers and
// recursing into nested containers, same as Result.Value.
func (d *Decoder) Decode() (Value, error) {
	return d.r.decodeAt(uint(d.offset))
}

// DecodeMap decodes the entry's key/value pairs one at a time, invoking cb
// for each in insertion order. When cb returns false the remaining pairs
// are skipped without being built. It returns an error if the entry is not
// a Map.
func (d *Decoder) DecodeMap(cb func(key string, v Value) bool) error {
	dec, release := d.r.acquireDecoder()
	defer release()
	err := dec.DecodeMapAt(uint(d.offset), cb)
	return mmdberrors.WrapWithOffset(err, uint(d.offset))
}

// DecodeSlice decodes the entry's elements one at a time, invoking cb for
// each in order. When cb returns false the remaining elements are skipped
// without being built. It returns an error if the entry is not an Array.
func (d *Decoder) DecodeSlice(cb func(i int, v Value) bool) error {
	dec, release := d.r.acquireDecoder()
	defer release()
	err := dec.DecodeSliceAt(uint(d.offset), cb)
	return mmdberrors.WrapWithOffset(err, uint(d.offset))
}

// DecodePath decodes only the value reached by descending path from the
// bound offset: string elements index into Maps, int elements into Arrays.
// Values off the path are stepped over rather than built. The bool result
// reports whether the path was present.
func (d *Decoder) DecodePath(path ...any) (Value, bool, error) {
	dec, release := d.r.acquireDecoder()
	defer release()
	v, ok, err := dec.DecodeAtPath(uint(d.offset), path)
	return v, ok, mmdberrors.WrapWithOffset(err, uint(d.offset))
}
