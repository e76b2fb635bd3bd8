// Package buckets implements the bucket storage core that the
// open-addressing hash table family is built on.
//
// A Storage owns a flat array of fixed-size buckets obtained from an
// Allocator and fills every slot with a sentinel key before first use,
// either blocking (Initialize) or queued on a Stream (InitializeAsync).
// Parallel algorithms never hold the owner; they receive a Ref, a
// freely copyable view carrying just the Extent and the slot array.
// The storage imposes no per-bucket locking: concurrent access to the
// same slot is the concern of whatever algorithm runs on top.
package buckets
