package buckets

import (
	"sync"
	"unsafe"

	"github.com/EinfachAndy/buckets/shared"
)

// fillBuckets writes key into every slot of the array. The bucket
// range is split into bucket-aligned chunks and a bounded set of
// workers walks the chunks grid-stride wise. The end state is the same
// for every decomposition, so the chunking is free to change.
func fillBuckets[T any](slots []T, bucketSize int, key T) {
	numBuckets := len(slots) / bucketSize
	stride := fillStride[T](bucketSize)
	workers := shared.GridSize(numBuckets, stride)
	if workers <= 1 {
		fillRange(slots, key)
		return
	}

	chunk := stride * bucketSize
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for lo := w * chunk; lo < len(slots); lo += workers * chunk {
				fillRange(slots[lo:min(lo+chunk, len(slots))], key)
			}
		}(w)
	}
	wg.Wait()
}

// go:inline
func fillRange[T any](slots []T, key T) {
	for i := range slots {
		slots[i] = key
	}
}

// fillStride returns the chunk stride in buckets. It starts at
// DefaultStride and is widened until one chunk covers at least a full
// cache line, so neighboring workers never write to the same line.
func fillStride[T any](bucketSize int) int {
	var zero T
	bucketBytes := int(unsafe.Sizeof(zero)) * bucketSize
	stride := shared.DefaultStride
	if bucketBytes > 0 {
		stride = max(stride, int(shared.CacheLineSize)/bucketBytes)
	}
	return stride
}
