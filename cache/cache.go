// Package cache provides the opt-in string-interning caches the reader can
// use during value decoding. Real MaxMind databases deduplicate heavily, so
// the same data-section offset is decoded over and over across lookups;
// interning lets those repeats share one Go string instead of reallocating
// on every pointer follow.
package cache

import "sync"

// Cache interns strings read from data[offset : offset+size]. The caller
// guarantees the range is in bounds.
type Cache interface {
	InternAt(offset, size uint, data []byte) string
}

// Provider hands out a Cache for the duration of one decode and takes it
// back afterward. A provider may return one shared thread-safe Cache every
// time, or an exclusive per-decode Cache pulled from a pool.
type Provider interface {
	Acquire() Cache
	Release(Cache)
}

// Options configure the built-in providers.
type Options struct {
	// EntryCount is the number of interning slots. Offsets are hashed onto
	// slots, so more slots means fewer evictions for databases with many
	// distinct repeated strings.
	EntryCount int

	// MinCachedLen and MaxCachedLen bound which string lengths are worth
	// interning. Very short strings cost as much to look up as to rebuild,
	// and very long ones are rarely repeated.
	MinCachedLen uint
	MaxCachedLen uint
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		EntryCount:   4096,
		MinCachedLen: 2,
		MaxCachedLen: 32,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.EntryCount <= 0 {
		o.EntryCount = def.EntryCount
	}
	if o.MinCachedLen == 0 {
		o.MinCachedLen = def.MinCachedLen
	}
	if o.MaxCachedLen == 0 {
		o.MaxCachedLen = def.MaxCachedLen
	}
	if o.MaxCachedLen < o.MinCachedLen {
		o.MaxCachedLen = o.MinCachedLen
	}
	return o
}

// asciiPairs maps every two-lowercase-letter combination to a pre-built
// string. Two-letter strings dominate real databases (ISO country and
// language codes), and this table serves them without touching a slot.
var asciiPairs = func() (t [26 * 26]string) {
	for i := range t {
		t[i] = string([]byte{'a' + byte(i/26), 'a' + byte(i%26)})
	}
	return
}()

type slot struct {
	str    string
	offset uint
}

// table is the slot store shared by both built-in cache variants. It is a
// direct-mapped cache keyed by offset: a colliding offset simply evicts the
// previous occupant.
type table struct {
	slots        []slot
	mask         uint // len(slots)-1 when a power of two, else 0
	minCachedLen uint
	maxCachedLen uint
}

func newTable(opts Options) table {
	opts = opts.normalized()
	t := table{
		slots:        make([]slot, opts.EntryCount),
		minCachedLen: opts.MinCachedLen,
		maxCachedLen: opts.MaxCachedLen,
	}
	if n := uint(opts.EntryCount); n&(n-1) == 0 {
		t.mask = n - 1
	}
	return t
}

// fastPath serves strings that never hit a slot: out-of-bounds lengths are
// rebuilt directly, and lowercase two-letter codes come from asciiPairs.
// The second return is false when the slot store should handle the string.
func (t *table) fastPath(offset, size uint, data []byte) (string, bool) {
	if size < t.minCachedLen || size > t.maxCachedLen {
		return string(data[offset : offset+size]), true
	}
	if size == 2 {
		a, b := data[offset], data[offset+1]
		if 'a' <= a && a <= 'z' && 'a' <= b && b <= 'z' {
			return asciiPairs[uint(a-'a')*26+uint(b-'a')], true
		}
	}
	return "", false
}

func (t *table) slotFor(offset uint) *slot {
	if t.mask != 0 {
		return &t.slots[offset&t.mask]
	}
	return &t.slots[offset%uint(len(t.slots))]
}

// unlockedCache is the exclusive-use variant: no synchronization, safe only
// when a single goroutine owns it, which the pooled provider guarantees.
type unlockedCache struct {
	table
}

func (c *unlockedCache) InternAt(offset, size uint, data []byte) string {
	if s, done := c.fastPath(offset, size, data); done {
		return s
	}
	sl := c.slotFor(offset)
	if sl.offset == offset && sl.str != "" {
		return sl.str
	}
	s := string(data[offset : offset+size])
	sl.offset = offset
	sl.str = s
	return s
}

// lockedCache is the shared variant: one mutex per slot stripe so
// concurrent decodes only contend when their slots share a stripe.
type lockedCache struct {
	table
	locks []sync.Mutex
}

func (c *lockedCache) InternAt(offset, size uint, data []byte) string {
	if s, done := c.fastPath(offset, size, data); done {
		return s
	}
	idx := offset % uint(len(c.slots))
	sl := &c.slots[idx]
	mu := &c.locks[idx%uint(len(c.locks))]

	mu.Lock()
	if sl.offset == offset && sl.str != "" {
		s := sl.str
		mu.Unlock()
		return s
	}
	s := string(data[offset : offset+size])
	sl.offset = offset
	sl.str = s
	mu.Unlock()
	return s
}

type sharedProvider struct {
	cache *lockedCache
}

func (p *sharedProvider) Acquire() Cache { return p.cache }
func (*sharedProvider) Release(Cache)    {}

// NewSharedProvider creates a provider whose single lock-striped cache is
// shared by every decode, so interned strings persist across lookups.
func NewSharedProvider(opts Options) Provider {
	c := &lockedCache{table: newTable(opts)}
	stripes := 64
	if n := len(c.slots); n < stripes {
		stripes = n
	}
	c.locks = make([]sync.Mutex, stripes)
	return &sharedProvider{cache: c}
}

type pooledProvider struct {
	pool sync.Pool
}

func (p *pooledProvider) Acquire() Cache {
	c, _ := p.pool.Get().(Cache)
	return c
}

func (p *pooledProvider) Release(c Cache) {
	if c != nil {
		p.pool.Put(c)
	}
}

// NewPooledProvider creates a provider that hands each decode an exclusive
// lock-free cache from a sync.Pool, trading interning continuity across
// lookups for zero lock traffic.
func NewPooledProvider(opts Options) Provider {
	opts = opts.normalized()
	p := &pooledProvider{}
	p.pool.New = func() any {
		return &unlockedCache{table: newTable(opts)}
	}
	return p
}

type noCacheProvider struct{}

type noCache struct{}

func (noCache) InternAt(offset, size uint, data []byte) string {
	return string(data[offset : offset+size])
}

func (noCacheProvider) Acquire() Cache { return noCache{} }
func (noCacheProvider) Release(Cache)  {}

// NewNoCacheProvider creates a provider that disables interning entirely;
// every call rebuilds the string.
func NewNoCacheProvider() Provider {
	return noCacheProvider{}
}
