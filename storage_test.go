package buckets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EinfachAndy/buckets"
)

// countingAllocator tracks allocate and deallocate calls to verify the
// deleter contract.
type countingAllocator struct {
	allocs   *int
	deallocs *int
	lastN    *int
}

func newCountingAllocator() countingAllocator {
	return countingAllocator{allocs: new(int), deallocs: new(int), lastN: new(int)}
}

func (a countingAllocator) Allocate(n int) []int {
	*a.allocs++
	return make([]int, n)
}

func (a countingAllocator) Deallocate(buf []int, n int) {
	*a.deallocs++
	*a.lastN = n
}

func TestStorageConstruction(t *testing.T) {
	for _, tc := range []struct {
		minCapacity, bucketSize int
	}{
		{0, 1},
		{1, 1},
		{8, 2},
		{10, 2},
		{1000, 4},
	} {
		s := buckets.NewStorage[int](buckets.NewExtent(tc.minCapacity, tc.bucketSize), buckets.HeapAllocator[int]{})
		assert.Equal(t, s.NumBuckets()*s.BucketSize(), s.Capacity())
		assert.GreaterOrEqual(t, s.Capacity(), tc.minCapacity)
		assert.Len(t, s.Data(), s.Capacity())
		if s.Capacity() > 0 {
			assert.NotNil(t, s.Data())
		}
		s.Free()
	}
}

func TestStorageAllocator(t *testing.T) {
	alloc := newCountingAllocator()
	s := buckets.NewStorage[int](buckets.NewExtent(16, 4), alloc)

	require.Equal(t, 1, *alloc.allocs)
	require.Equal(t, 0, *alloc.deallocs)

	// the storage hands out a copy of the bound allocator
	cpy, ok := s.Allocator().(countingAllocator)
	require.True(t, ok)
	assert.Equal(t, alloc.allocs, cpy.allocs)

	s.Free()
	assert.Equal(t, 1, *alloc.deallocs)
	assert.Equal(t, 16, *alloc.lastN)

	// the deleter runs exactly once
	s.Free()
	assert.Equal(t, 1, *alloc.deallocs)
}

func TestInitialize(t *testing.T) {
	stream := buckets.NewStream()
	defer stream.Close()

	s := buckets.NewStorage[int](buckets.NewExtent(64, 4), buckets.HeapAllocator[int]{})
	defer s.Free()

	s.Initialize(-1, stream)
	for i, v := range s.Data() {
		if v != -1 {
			t.Fatalf("slot %d not initialized, got %d", i, v)
		}
	}

	// a second fill overwrites every slot again
	s.Initialize(7, stream)
	for i, v := range s.Data() {
		if v != 7 {
			t.Fatalf("slot %d not re-initialized, got %d", i, v)
		}
	}
}

func TestInitializeStructSlots(t *testing.T) {
	type slot struct {
		key   uint64
		value uint32
	}
	stream := buckets.NewStream()
	defer stream.Close()

	s := buckets.NewStorage[slot](buckets.NewExtent(100, 2), buckets.HeapAllocator[slot]{})
	defer s.Free()

	sentinel := slot{key: ^uint64(0), value: 42}
	s.Initialize(sentinel, stream)
	for i, v := range s.Data() {
		if v != sentinel {
			t.Fatalf("slot %d not initialized, got %+v", i, v)
		}
	}
}

func TestInitializeZeroBuckets(t *testing.T) {
	stream := buckets.NewStream()
	defer stream.Close()

	s := buckets.NewStorage[int](buckets.NewExtent(0, 2), buckets.HeapAllocator[int]{})
	defer s.Free()

	require.Equal(t, 0, s.NumBuckets())
	s.Initialize(-1, stream)
	s.InitializeAsync(-1, stream)
	stream.Sync()
	assert.Empty(t, s.Data())
}

func TestInitializeAsyncOrdering(t *testing.T) {
	stream := buckets.NewStream()
	defer stream.Close()

	s := buckets.NewStorage[int](buckets.NewExtent(1<<12, 4), buckets.HeapAllocator[int]{})
	defer s.Free()

	s.InitializeAsync(-1, stream)

	// a task submitted after the fill observes the filled array
	var stale int
	stream.Submit(func() {
		for _, v := range s.Data() {
			if v != -1 {
				stale++
			}
		}
	})
	stream.Sync()
	assert.Equal(t, 0, stale)
}

func TestInitializeLarge(t *testing.T) {
	stream := buckets.NewStream()
	defer stream.Close()

	// large enough that the fill spreads across all workers
	s := buckets.NewStorage[uint64](buckets.NewExtent(1<<17, 8), buckets.HeapAllocator[uint64]{})
	defer s.Free()

	s.Initialize(0xdeadbeef, stream)
	for i, v := range s.Data() {
		if v != 0xdeadbeef {
			t.Fatalf("slot %d not initialized, got %#x", i, v)
		}
	}
}

func TestRefMatchesOwner(t *testing.T) {
	stream := buckets.NewStream()
	defer stream.Close()

	s := buckets.NewStorage[int](buckets.NewExtent(32, 4), buckets.HeapAllocator[int]{})
	defer s.Free()
	s.Initialize(0, stream)

	ref := s.Ref()
	require.Equal(t, s.NumBuckets(), ref.NumBuckets())
	require.Equal(t, s.Capacity(), ref.Capacity())
	require.Same(t, &s.Data()[0], &ref.Data()[0])

	// the view aliases the owner's array in both directions
	ref.Data()[3] = 99
	assert.Equal(t, 99, s.Data()[3])
	s.Data()[4] = 77
	assert.Equal(t, 77, ref.Data()[4])
}

func TestSentinelThenPointWrite(t *testing.T) {
	stream := buckets.NewStream()
	defer stream.Close()

	// 4 buckets of size 2, 8 integer slots total
	s := buckets.NewStorage[int](buckets.NewExtent(8, 2), buckets.HeapAllocator[int]{})
	defer s.Free()

	require.Equal(t, 4, s.NumBuckets())
	require.Equal(t, 8, s.Capacity())

	s.Initialize(-1, stream)
	ref := s.Ref()
	for i := 0; i < ref.Capacity(); i++ {
		require.Equal(t, -1, ref.Data()[i], "slot %d", i)
	}

	// write into bucket 2, slot 0 by direct indexed access
	ref.Data()[2*ref.BucketSize()] = 42

	for i := 0; i < ref.Capacity(); i++ {
		want := -1
		if i == 2*ref.BucketSize() {
			want = 42
		}
		assert.Equal(t, want, ref.Data()[i], "slot %d", i)
	}
	assert.Equal(t, []int{42, -1}, ref.Bucket(2))
}
