// Package filter implements a blocked probabilistic membership filter
// on top of the bucket storage core. Every sub-filter is one bucket of
// uint64 words, so the filter doubles as the demonstration client for
// parallel access through a storage view: every added key tests
// positive, a key never added tests positive with a probability
// governed by the sub-filter count, the bits per sub-filter and the
// pattern bit count.
package filter

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/EinfachAndy/buckets"
	"github.com/EinfachAndy/buckets/shared"
)

const (
	// WordsPerSubFilter is the number of uint64 slots per sub-filter,
	// which is the bucket size of the backing storage.
	WordsPerSubFilter = 4

	// SubFilterBits is the number of bits per sub-filter.
	SubFilterBits = WordsPerSubFilter * 64

	// DefaultPatternBits is the default number of bits set per key.
	DefaultPatternBits = 6

	// MaxPatternBits bounds the bits set per key to half a sub-filter.
	MaxPatternBits = SubFilterBits / 2
)

// Option configures a Filter during construction.
type Option[K any] func(*Filter[K])

// WithHashers overrides the default key digests. route selects the
// sub-filter, pattern seeds the bit pattern inside it. Both must be
// deterministic and should be independent of each other.
func WithHashers[K any](route, pattern HashFn[K]) Option[K] {
	return func(f *Filter[K]) {
		f.route = route
		f.pattern = pattern
	}
}

// WithPatternBits sets the number of bits set per key,
// clamped to [1, MaxPatternBits].
func WithPatternBits[K any](k int) Option[K] {
	return func(f *Filter[K]) {
		f.k = min(max(k, 1), MaxPatternBits)
	}
}

// WithStream lets the filter share a caller-owned stream instead of
// creating its own. The caller keeps responsibility for closing it.
func WithStream[K any](s *buckets.Stream) Option[K] {
	return func(f *Filter[K]) {
		f.stream = s
	}
}

// Filter is a blocked membership filter. All bulk operations run on
// the filter's stream; Add and Contains may be issued from concurrent
// goroutines because word updates are atomic.
type Filter[K any] struct {
	storage *buckets.Storage[uint64]
	ref     buckets.Ref[uint64]
	route   HashFn[K]
	pattern HashFn[K]
	k       int
	stream  *buckets.Stream
	owned   bool
	// count is the approximate number of added keys, it feeds the
	// false positive estimate only.
	count atomic.Uint64
}

// New creates a filter with the given number of sub-filters, zeroes
// its storage and makes it ready for use. Key digests default to the
// registry of GetHashers for the golang default types.
func New[K any](numSubFilters int, opts ...Option[K]) *Filter[K] {
	if numSubFilters < 1 {
		numSubFilters = 1
	}
	f := &Filter[K]{k: DefaultPatternBits}
	for _, opt := range opts {
		opt(f)
	}
	if f.route == nil || f.pattern == nil {
		f.route, f.pattern = GetHashers[K]()
	}
	if f.stream == nil {
		f.stream = buckets.NewStream()
		f.owned = true
	}

	size := buckets.NewExactExtent(numSubFilters, WordsPerSubFilter)
	f.storage = buckets.NewStorage[uint64](size, buckets.HeapAllocator[uint64]{})
	f.storage.Initialize(0, f.stream)
	f.ref = f.storage.Ref()
	return f
}

// Add inserts all keys and blocks until the insert completed.
func (f *Filter[K]) Add(keys []K) {
	f.AddAsync(keys)
	f.stream.Sync()
}

// AddAsync enqueues the bulk insert of keys on the filter's stream and
// returns without waiting. The keys slice must stay untouched until
// completion is established.
func (f *Filter[K]) AddAsync(keys []K) {
	if len(keys) == 0 {
		return
	}
	f.stream.Submit(func() {
		forEachKey(len(keys), func(i int) {
			f.addOne(keys[i])
		})
		f.count.Add(uint64(len(keys)))
	})
}

// Contains tests all keys and blocks until out holds one result per
// key: true when the key might be in the filter, false when it is
// definitely not. out must be at least as long as keys.
func (f *Filter[K]) Contains(keys []K, out []bool) {
	f.ContainsAsync(keys, out)
	f.stream.Sync()
}

// ContainsAsync enqueues the bulk membership test on the filter's
// stream. keys and out must stay untouched until completion is
// established.
func (f *Filter[K]) ContainsAsync(keys []K, out []bool) {
	if len(out) < len(keys) {
		panic(fmt.Sprintf("output length %d is less than key count %d", len(out), len(keys)))
	}
	if len(keys) == 0 {
		return
	}
	f.stream.Submit(func() {
		forEachKey(len(keys), func(i int) {
			out[i] = f.containsOne(keys[i])
		})
	})
}

// Sync blocks until all previously enqueued filter operations have
// completed.
func (f *Filter[K]) Sync() {
	f.stream.Sync()
}

// MightContain tests a single key without going through the stream.
// It must not overlap a pending Clear.
func (f *Filter[K]) MightContain(key K) bool {
	return f.containsOne(key)
}

// Clear resets the filter to empty by re-initializing the backing
// storage, blocking until done.
func (f *Filter[K]) Clear() {
	f.storage.Initialize(0, f.stream)
	f.count.Store(0)
}

// NumSubFilters returns the number of sub-filters.
func (f *Filter[K]) NumSubFilters() int {
	return f.ref.NumBuckets()
}

// PatternBits returns the number of bits set per key.
func (f *Filter[K]) PatternBits() int {
	return f.k
}

// Count returns the approximate number of keys added.
func (f *Filter[K]) Count() uint64 {
	return f.count.Load()
}

// EstimatedFalsePositiveRate estimates the current false positive
// probability from the standard (1-e^(-kn/m))^k model.
func (f *Filter[K]) EstimatedFalsePositiveRate() float64 {
	m := float64(f.ref.Capacity() * 64)
	n := float64(f.count.Load())
	k := float64(f.k)
	if m == 0 || n == 0 {
		return 0
	}
	return math.Pow(1-math.Exp(-k*n/m), k)
}

// Free releases the backing storage and, when the filter owns its
// stream, shuts the stream down. The filter must not be used
// afterwards.
func (f *Filter[K]) Free() {
	if f.owned && f.stream != nil {
		f.stream.Close()
		f.stream = nil
	}
	f.storage.Free()
}

// addOne sets the key's bit pattern in its sub-filter. Words are
// updated with an atomic OR because concurrent workers share
// sub-filters.
func (f *Filter[K]) addOne(key K) {
	slots := f.ref.Data()
	base, pos, step := f.pattern0(key)
	for j := 0; j < f.k; j++ {
		bit := (pos + uint32(j)*step) % SubFilterBits
		atomic.OrUint64(&slots[base+int(bit/64)], 1<<(bit%64))
	}
}

func (f *Filter[K]) containsOne(key K) bool {
	slots := f.ref.Data()
	base, pos, step := f.pattern0(key)
	for j := 0; j < f.k; j++ {
		bit := (pos + uint32(j)*step) % SubFilterBits
		if atomic.LoadUint64(&slots[base+int(bit/64)])&(1<<(bit%64)) == 0 {
			return false
		}
	}
	return true
}

// pattern0 routes the key to its sub-filter and derives the start and
// step of its double hashed bit pattern. The step is forced odd so the
// probe sequence cannot collapse onto a single bit.
func (f *Filter[K]) pattern0(key K) (base int, pos, step uint32) {
	sub := int(f.route(key) % uint64(f.ref.NumBuckets()))
	h := f.pattern(key)
	return sub * WordsPerSubFilter, uint32(h), uint32(h>>32) | 1
}

// forEachKey runs fn for every index in [0, n) using a bounded set of
// workers. Chunks are a cache line of output slots wide, so workers
// writing neighboring results do not share lines.
func forEachKey(n int, fn func(i int)) {
	stride := int(shared.CacheLineSize)
	workers := shared.GridSize(n, stride)
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for lo := w * stride; lo < n; lo += workers * stride {
				for i := lo; i < min(lo+stride, n); i++ {
					fn(i)
				}
			}
		}(w)
	}
	wg.Wait()
}
