// Package shared collects helpers used across the bucket storage core
// and the clients built on top of it.
package shared

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used to size work chunks and structure padding so
// that concurrent writers stay off shared cache lines. It's
// automatically calculated using the `golang.org/x/sys` package.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

const (
	// DefaultStride is the number of buckets a single worker fills per
	// chunk before it strides to its next chunk. The effective stride
	// is widened until one chunk covers at least a full cache line.
	DefaultStride = 4

	// DefaultStreamDepth is the submission queue capacity of a stream.
	DefaultStreamDepth = 64
)
