package buckets

import "unsafe"

// Ref is a non-owning view of a bucket storage: the extent by value
// plus the shared slot array. It is freely copyable and is what
// parallel algorithms carry into their workers. A Ref holds no
// lifetime state and must never outlive the storage it came from.
type Ref[T any] struct {
	Extent
	slots []T
}

// NewRef builds a view from an extent and a slot array. There is no
// validation, the caller guarantees that slots addresses at least
// size.Capacity() valid elements for as long as the view is used.
func NewRef[T any](size Extent, slots []T) Ref[T] {
	return Ref[T]{Extent: size, slots: slots}
}

// Data returns the shared flat slot array for reading and writing.
func (r Ref[T]) Data() []T {
	return r.slots
}

// Bucket returns the bucket at the given index by value, a snapshot
// copy of its BucketSize contiguous slots starting at index*BucketSize.
// The index must be in [0, NumBuckets()), there is no softer check
// than the bounds panic of the backing array.
func (r Ref[T]) Bucket(index int) []T {
	size := r.BucketSize()
	bucket := make([]T, size)
	copy(bucket, r.slots[index*size:index*size+size])
	return bucket
}

// End returns an iterator one slot past the last bucket. It is only an
// equality sentinel for bounding explicit scans and is never valid to
// dereference.
func (r Ref[T]) End() Iterator[T] {
	return NewIterator(r.slots, r.Capacity())
}

// Iterator is an input-only, single-pass marker for a slot position.
// It supports dereference and equality comparison, nothing else.
// Scanning code advances by its own strided indexing and compares
// against End; advancing the iterator itself would silently mis-stride
// across bucket boundaries, so Next panics unconditionally.
type Iterator[T any] struct {
	base unsafe.Pointer
	pos  uintptr
}

// NewIterator builds an iterator for the slot at the given position of
// the slot array. pos may equal len(slots) to form the end sentinel.
func NewIterator[T any](slots []T, pos int) Iterator[T] {
	return Iterator[T]{
		base: unsafe.Pointer(unsafe.SliceData(slots)),
		pos:  uintptr(pos),
	}
}

// Value returns the slot the iterator points at.
func (it Iterator[T]) Value() T {
	return *it.slot()
}

// Slot returns a pointer to the slot the iterator points at.
func (it Iterator[T]) Slot() *T {
	return it.slot()
}

func (it Iterator[T]) slot() *T {
	var zero T
	return (*T)(unsafe.Add(it.base, it.pos*unsafe.Sizeof(zero)))
}

// Next always panics, see the type comment.
func (it Iterator[T]) Next() {
	panic("buckets: slot iterator cannot advance")
}

// Equal reports whether both iterators mark the same slot of the same
// array. Iterators are also comparable with ==.
func (it Iterator[T]) Equal(other Iterator[T]) bool {
	return it == other
}
