package temptable

import "unsafe"

// Mallocer interface for custom memory management, implemented by
// Allocator.
type Mallocer interface {
	// Alloc a chunk of nbytes. Allocated memory is always 64-bit
	// aligned. Alloc(0) returns nil.
	Alloc(nbytes int64) (unsafe.Pointer, error)

	// Free a chunk of nbytes previously returned by Alloc.
	Free(ptr unsafe.Pointer, nbytes int64)

	// Release all blocks owned by this mallocer and their
	// resources.
	Release()

	// Info of memory accounting for this mallocer.
	Info() (capacity, occupied, nblocks int64)
}
