package temptable

import "unsafe"

// Chunk is one allocation within a block. Chunks are self
// describing, an 8-byte header just before the caller visible bytes
// holds the chunk's offset from its block's base, so both the chunk
// and its owning block are recoverable from a bare data pointer in
// constant time, without a lookup table.
//
// Frompointer, Chunk.Block and Chunk.Data trust the header bytes
// blindly. Passing a pointer that did not come out of
// Allocator.Alloc, or a pointer whose chunk was already freed, is a
// caller contract violation, not a recoverable error.
type Chunk struct {
	base unsafe.Pointer // chunk header, data starts 8 bytes after
}

const chunkHeadersize = int64(8)

// Chunksizehint bytes occupied inside a block by a chunk of nbytes,
// header and alignment included.
func Chunksizehint(nbytes int64) int64 {
	return alignceil(chunkHeadersize + nbytes)
}

// newchunk format a chunk header at offset within block.
func newchunk(block Block, offset int64) Chunk {
	base := unsafe.Add(block.base, offset)
	storeint64(base, offset)
	return Chunk{base: base}
}

// Frompointer recover the Chunk for a data pointer previously
// returned by Allocator.Alloc.
func Frompointer(ptr unsafe.Pointer) Chunk {
	return Chunk{base: unsafe.Add(ptr, -chunkHeadersize)}
}

// Data caller visible bytes of this chunk.
func (chunk Chunk) Data() unsafe.Pointer {
	return unsafe.Add(chunk.base, chunkHeadersize)
}

// Block recover the owning block of this chunk.
func (chunk Chunk) Block() Block {
	return Block{base: unsafe.Add(chunk.base, -chunk.offset())}
}

// offset of the chunk header from the block's base.
func (chunk Chunk) offset() int64 {
	return loadint64(chunk.base)
}
