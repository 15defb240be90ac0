package temptable

import "unsafe"

// Block is one contiguous region of backing memory serving chunks by
// bump allocation. A block keeps no state on the Go heap, all its
// metadata lives in a header at the start of the region itself,
// hence a Block value is just the region's base pointer and the
// owning block of any chunk can be recovered from the chunk alone.
// Two Block values are equal iff they denote the same region.
type Block struct {
	base unsafe.Pointer
}

// block header layout, 8 bytes a field, loadint64/storeint64
// encoded.
const (
	blockoffSource  = 0  // SourceRAM | SourceMMAP
	blockoffFlags   = 8  // bit-0 set for monitored blocks
	blockoffSize    = 16 // total size of the region, header included
	blockoffNchunks = 24 // chunks carved and not yet freed
	blockoffFreeoff = 32 // offset of the first pristine byte
	blockHeadersize = int64(40)
)

const blockflagMonitored = int64(1)

// Minblockbytes size of the first block grown by an allocator,
// successive blocks double until Maxblockbytes.
const Minblockbytes = 1 * MiB

// Maxblockbytes block growth is capped here, blocks beyond this size
// are grown only when a single chunk demands more.
const Maxblockbytes = 512 * MiB

// Blocksizehint minimum block size able to serve an allocation of
// nbytes.
func Blocksizehint(nbytes int64) int64 {
	return alignceil(blockHeadersize + Chunksizehint(nbytes))
}

// blocksize to grow for an allocator holding nth blocks already,
// doubling from Minblockbytes, capped at Maxblockbytes, but never
// less than what the requested allocation needs.
func blocksize(nth, nbytes int64) int64 {
	size := Maxblockbytes
	if nth < 9 { // 1MiB << 9 == Maxblockbytes
		size = Minblockbytes << uint(nth)
	}
	if hint := Blocksizehint(nbytes); hint > size {
		size = hint
	}
	return size
}

// grow acquire size bytes of backing memory from src and format the
// block header. Whether the block is monitored is remembered in the
// header, so ownership can be told apart when a chunk pointer is
// resolved back to its block. Substrate failures propagate as is,
// they are fatal for the attempt and distinct from a threshold
// failure.
func (block *Block) grow(src Source, size int64, monitored bool, tmpdir string) error {
	if !block.Isempty() {
		panicerr("grow on a non-empty block")
	} else if size < blockHeadersize {
		panicerr("block of %v bytes cannot hold its header", size)
	}
	base, err := osmemalloc(src, size, tmpdir)
	if err != nil {
		errorf("temptable: grow %v block of %v bytes: %v\n", src, size, err)
		return err
	}
	block.base = base
	flags := int64(0)
	if monitored {
		flags = blockflagMonitored
	}
	block.storefield(blockoffSource, int64(src))
	block.storefield(blockoffFlags, flags)
	block.storefield(blockoffSize, size)
	block.storefield(blockoffNchunks, 0)
	block.storefield(blockoffFreeoff, blockHeadersize)
	debugf("temptable: grown %v block of %v bytes\n", src, size)
	return nil
}

// Isempty whether the block holds backing memory.
func (block Block) Isempty() bool {
	return block.base == nil
}

// Size total size of the block in bytes, header included.
func (block Block) Size() int64 {
	return block.loadfield(blockoffSize)
}

// Source whether the block is RAM backed or mmap backed.
func (block Block) Source() Source {
	return Source(block.loadfield(blockoffSource))
}

// Ismonitored whether the block's bytes are accounted with a
// Monitor. The caller supplied shared block is not monitored, blocks
// grown by an allocator are.
func (block Block) Ismonitored() bool {
	return block.loadfield(blockoffFlags)&blockflagMonitored != 0
}

// Cansupply whether a chunk of nbytes fits in the pristine tail of
// this block.
func (block Block) Cansupply(nbytes int64) bool {
	return block.Size()-block.freeoff() >= Chunksizehint(nbytes)
}

// alloc carve a chunk of nbytes at the bump offset. Callers check
// Cansupply first.
func (block Block) alloc(nbytes int64) Chunk {
	size, freeoff := Chunksizehint(nbytes), block.freeoff()
	if block.Size()-freeoff < size {
		panicerr("alloc of %v bytes exceeds block capacity", nbytes)
	}
	chunk := newchunk(block, freeoff)
	block.storefield(blockoffFreeoff, freeoff+size)
	block.storefield(blockoffNchunks, block.nchunks()+1)
	return chunk
}

// free release a chunk of nbytes. If the chunk is the rightmost
// carve of the block, the bump offset is rewound and the space is
// immediately reusable, otherwise the space stays abandoned until
// the whole block is freed. Return the number of live chunks left.
func (block Block) free(chunk Chunk, nbytes int64) int64 {
	nchunks := block.nchunks() - 1
	if nchunks < 0 {
		panicerr("free on a block with no live chunks")
	}
	block.storefield(blockoffNchunks, nchunks)
	if offset := chunk.offset(); offset+Chunksizehint(nbytes) == block.freeoff() {
		block.storefield(blockoffFreeoff, offset)
	}
	return nchunks
}

// Destroy release the backing memory and reset the block to empty.
// Allocators destroy their own blocks the moment the last live chunk
// goes away, the shared block is destroyed only by its owner, never
// here. Destroying an empty block is a no-op.
func (block *Block) Destroy() {
	if block.Isempty() {
		return
	}
	size, src := block.Size(), block.Source()
	osmemfree(block.base, size)
	block.base = nil
	debugf("temptable: destroyed %v block of %v bytes\n", src, size)
}

func (block Block) freeoff() int64 {
	return block.loadfield(blockoffFreeoff)
}

func (block Block) nchunks() int64 {
	return block.loadfield(blockoffNchunks)
}

func (block Block) loadfield(off int64) int64 {
	return loadint64(unsafe.Add(block.base, off))
}

func (block Block) storefield(off, value int64) {
	storeint64(unsafe.Add(block.base, off), value)
}
