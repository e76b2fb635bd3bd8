package buckets

import (
	"fmt"

	"github.com/EinfachAndy/buckets/shared"
)

// Extent describes the shape of a bucket storage: how many buckets it
// holds and how many slots live in each bucket. It is computed once at
// construction and never changes afterwards.
type Extent struct {
	numBuckets int
	bucketSize int
}

// NewExtent converts a requested slot capacity into a concrete extent.
// The bucket count is rounded up to the next power of two, so that the
// tables of the family can replace modulo with a bitwise AND.
// bucketSize is the number of slots per bucket and must be at least 1.
func NewExtent(minCapacity, bucketSize int) Extent {
	if bucketSize < 1 {
		panic(fmt.Sprintf("invalid bucket size %d", bucketSize))
	}
	if minCapacity < 0 {
		panic(fmt.Sprintf("invalid capacity %d", minCapacity))
	}
	n := (minCapacity + bucketSize - 1) / bucketSize
	return Extent{
		numBuckets: int(shared.NextPowerOf2(uint64(n))),
		bucketSize: bucketSize,
	}
}

// NewExactExtent creates an extent with the given bucket count,
// without any rounding.
func NewExactExtent(numBuckets, bucketSize int) Extent {
	if bucketSize < 1 {
		panic(fmt.Sprintf("invalid bucket size %d", bucketSize))
	}
	if numBuckets < 0 {
		panic(fmt.Sprintf("invalid bucket count %d", numBuckets))
	}
	return Extent{numBuckets: numBuckets, bucketSize: bucketSize}
}

// NumBuckets returns the number of buckets.
func (e Extent) NumBuckets() int {
	return e.numBuckets
}

// BucketSize returns the number of slots per bucket.
func (e Extent) BucketSize() int {
	return e.bucketSize
}

// Capacity returns the total number of slots.
func (e Extent) Capacity() int {
	return e.numBuckets * e.bucketSize
}
