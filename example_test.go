package buckets_test

import (
	"fmt"

	"github.com/EinfachAndy/buckets"
)

func Example() {
	stream := buckets.NewStream()
	defer stream.Close()

	storage := buckets.NewStorage[int](buckets.NewExtent(8, 2), buckets.HeapAllocator[int]{})
	defer storage.Free()

	storage.Initialize(-1, stream)

	ref := storage.Ref()
	ref.Data()[2*ref.BucketSize()] = 42

	fmt.Println(ref.NumBuckets(), ref.Capacity())
	fmt.Println(ref.Bucket(2))
	fmt.Println(ref.Bucket(3))
	// Output:
	// 4 8
	// [42 -1]
	// [-1 -1]
}
