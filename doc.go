// Package temptable supplies custom memory management for the
// temporary-table execution path of a database engine, with a
// limited scope:
//
//   - Types and Functions exported by this package are not thread
//     safe, except Monitor which can be shared by any number of
//     allocators running on separate goroutines.
//   - Memory is allocated in blocks of a Megabyte or more, where
//     each block serves several variable sized chunks by simple
//     bump allocation.
//   - Freed chunk memory is not reusable until its entire block is
//     freed, except for the rightmost chunk of a block which can be
//     carved out again by subsequent allocations.
//   - Blocks are backed either by anonymous RAM or by a memory
//     mapped temporary file, so intermediate query results can
//     overflow to disk when RAM is capped.
//   - Memory-chunks allocated by this package will always be 64-bit
//     aligned.
//
// Allocator is the per-consumer entry point, one allocator serves
// exactly one consumer, typically one temporary table. It carves
// chunks out of an optional caller supplied shared block and out of
// blocks it grows on its own. Every block the allocator grows is
// accounted with a process wide Monitor, the allocator refuses to
// grow, returning ErrorRecordFileFull, rather than cross the
// configured "maxram" and "maxmmap" thresholds. Bytes of the shared
// block belong to the caller and are never accounted.
package temptable

// TODO: mmap blocks unlink their backing file right away, so a block
// that overflowed to disk cannot be inspected while the process runs.
// Retain the file, behind a setting, for post-mortem debugging.
