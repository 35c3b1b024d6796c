package maxminddb

import "github.com/maxpoulin64/mmdb-go/internal/decoder"

// CacheOptions configure the built-in cache providers installed via
// WithCache/WithPooledCache.
type CacheOptions struct {
	// EntryCount is the number of interning slots a cache instance holds.
	// Offsets map directly onto slots, and a string whose offset lands on
	// an occupied slot evicts the previous occupant. Zero selects a
	// built-in default.
	EntryCount int

	// MinCachedLen and MaxCachedLen bound which string lengths are worth
	// interning; very short strings cost more to look up than to
	// reallocate, and very long ones are rarely repeated. Zero selects a
	// built-in default.
	MinCachedLen uint
	MaxCachedLen uint
}

// DefaultCacheOptions returns the built-in cache defaults.
func DefaultCacheOptions() CacheOptions {
	d := decoder.DefaultCacheOptions()
	return CacheOptions{EntryCount: d.EntryCount, MinCachedLen: d.MinCachedLen, MaxCachedLen: d.MaxCachedLen}
}

func (o CacheOptions) toInternal() decoder.CacheOptions {
	return decoder.CacheOptions{EntryCount: o.EntryCount, MinCachedLen: o.MinCachedLen, MaxCachedLen: o.MaxCachedLen}
}
