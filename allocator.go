package buckets

// Allocator hands out and takes back slot arrays for a storage. It is
// a value semantics capability object, the storage keeps its own copy.
// Both operations are called from the constructing goroutine only, an
// implementation does not need to be safe for concurrent use.
type Allocator[T any] interface {
	// Allocate returns a slice with space for n slots. Failure follows
	// the allocator's own contract, there is no error return.
	Allocate(n int) []T

	// Deallocate returns a slice previously obtained from Allocate
	// with the same n. It is invoked exactly once per allocation.
	Deallocate(buf []T, n int)
}

// HeapAllocator is the default Allocator. It allocates from the
// regular Go heap and leaves reclamation to the garbage collector.
type HeapAllocator[T any] struct{}

func (HeapAllocator[T]) Allocate(n int) []T { return make([]T, n) }

func (HeapAllocator[T]) Deallocate(buf []T, n int) {}
