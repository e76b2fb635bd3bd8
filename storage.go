package buckets

// Storage exclusively owns a flat array of buckets for its whole
// lifetime. Exactly one entity ever deallocates the array: the storage
// itself, through the deleter built at construction. Derived views
// must not be used after Free.
type Storage[T any] struct {
	Extent
	alloc   Allocator[T]
	slots   []T
	release func([]T)
}

// NewStorage allocates Capacity() slots from the given allocator and
// binds their lifetime to the returned storage. The deleter captures
// the capacity and a copy of the allocator and runs exactly once, on
// Free.
func NewStorage[T any](size Extent, alloc Allocator[T]) *Storage[T] {
	capacity := size.Capacity()
	return &Storage[T]{
		Extent: size,
		alloc:  alloc,
		slots:  alloc.Allocate(capacity),
		release: func(buf []T) {
			alloc.Deallocate(buf, capacity)
		},
	}
}

// Data returns the flat slot array. It is valid only while the storage
// is alive, buckets are laid out contiguously from its start.
func (s *Storage[T]) Data() []T {
	return s.slots
}

// Allocator returns a copy of the bound allocator.
func (s *Storage[T]) Allocator() Allocator[T] {
	return s.alloc
}

// Ref returns a non-owning view with the same extent and slot array.
// It is allocation free and O(1).
func (s *Storage[T]) Ref() Ref[T] {
	return NewRef(s.Extent, s.slots)
}

// Initialize fills every slot of every bucket with key and blocks the
// caller until the work submitted to the stream has completed.
func (s *Storage[T]) Initialize(key T, stream *Stream) {
	s.InitializeAsync(key, stream)
	stream.Sync()
}

// InitializeAsync enqueues the bulk fill on the stream and returns
// without waiting. Until completion is established, via Sync or via
// stream ordering, the slot contents are unspecified and the storage
// must not be touched from another execution context.
func (s *Storage[T]) InitializeAsync(key T, stream *Stream) {
	if s.NumBuckets() == 0 {
		return
	}
	slots, bucketSize := s.slots, s.BucketSize()
	stream.Submit(func() {
		fillBuckets(slots, bucketSize, key)
	})
}

// Free deallocates the bucket array. The first call invokes the
// deleter, further calls are no-ops. All views derived from this
// storage are invalid afterwards.
func (s *Storage[T]) Free() {
	if s.release != nil {
		s.release(s.slots)
		s.release = nil
		s.slots = nil
	}
}
