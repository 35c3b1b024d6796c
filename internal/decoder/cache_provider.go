package decoder

import "github.com/maxpoulin64/mmdb-go/cache"

// CacheProvider acquires and releases StringInterners for decode operations.
// A provider may hand out one shared thread-safe interner, or an exclusive
// one pulled from a pool per decode.
type CacheProvider interface {
	Acquire() StringInterner
	Release(StringInterner)
}

// CacheOptions configure the built-in cache-backed providers.
type CacheOptions struct {
	EntryCount   int
	MinCachedLen uint
	MaxCachedLen uint
}

// DefaultCacheOptions returns the built-in cache defaults.
func DefaultCacheOptions() CacheOptions {
	o := cache.DefaultOptions()
	return CacheOptions{EntryCount: o.EntryCount, MinCachedLen: o.MinCachedLen, MaxCachedLen: o.MaxCachedLen}
}

func (o CacheOptions) toCacheOptions() cache.Options {
	return cache.Options{EntryCount: o.EntryCount, MinCachedLen: o.MinCachedLen, MaxCachedLen: o.MaxCachedLen}
}

type cacheProviderAdapter struct {
	inner cache.Provider
}

func (a cacheProviderAdapter) Acquire() StringInterner {
	return a.inner.Acquire()
}

func (a cacheProviderAdapter) Release(interner StringInterner) {
	c, ok := interner.(cache.Cache)
	if !ok {
		a.inner.Release(nil)
		return
	}
	a.inner.Release(c)
}

// NewSharedCacheProvider creates a provider backed by one shared lock-based
// cache instance.
func NewSharedCacheProvider(opts CacheOptions) CacheProvider {
	return cacheProviderAdapter{inner: cache.NewSharedProvider(opts.toCacheOptions())}
}

// NewPooledCacheProvider creates a provider that hands out an exclusive
// no-lock cache from a sync.Pool per decode call.
func NewPooledCacheProvider(opts CacheOptions) CacheProvider {
	return cacheProviderAdapter{inner: cache.NewPooledProvider(opts.toCacheOptions())}
}
