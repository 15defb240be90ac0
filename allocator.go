package temptable

import "unsafe"

import s "github.com/bnclabs/gosettings"
import hm "github.com/dustin/go-humanize"

// Allocator carves variable sized chunks for a single consumer,
// typically one temporary table, out of bump allocated blocks. Not
// thread safe, calls on one allocator are expected to be sequential.
//
// A caller can supply a shared block, an already existing scratch
// region whose lifetime the caller controls. The allocator bump
// allocates from it, growing it on first use, but never accounts its
// bytes with the monitor and never destroys it. Blocks the allocator
// grows beyond the shared block are monitored and are destroyed the
// moment their last live chunk is freed, or on Release.
type Allocator struct {
	shared  *Block
	mon     *Monitor
	blocks  []Block // owned blocks, in creation order
	current Block   // most recently carved-from block, for tail reuse
	tmpdir  string

	// statistics
	nallocs int64
	nfrees  int64
}

// NewAllocator create an allocator gated by mon. shared can be nil.
// Settings: "mmap.tmpdir", refer to Defaultsettings().
func NewAllocator(shared *Block, mon *Monitor, setts s.Settings) *Allocator {
	return &Allocator{
		shared: shared,
		mon:    mon,
		tmpdir: setts.String("mmap.tmpdir"),
	}
}

// Alloc return a pointer to nbytes of 64-bit aligned memory, or
// ErrorRecordFileFull when neither the RAM threshold nor, with mmap
// enabled, the MMAP threshold leaves headroom for the block the
// request needs. Any other error is a fatal OS level allocation
// failure. Alloc(0) returns nil with no side effect.
//
// Requests are served, in order, from the tail of the most recently
// carved-from block, from the shared block, and from a freshly grown
// block. The returned pointer is opaque, callers only hand it back
// to Free along with the same nbytes.
func (al *Allocator) Alloc(nbytes int64) (unsafe.Pointer, error) {
	if nbytes == 0 {
		return nil, nil
	} else if nbytes < 0 {
		panicerr("Alloc: negative size %v", nbytes)
	}
	// tail reuse, also plain bump continuation on the current block
	if !al.current.Isempty() && al.current.Cansupply(nbytes) {
		return al.carve(al.current, nbytes), nil
	}
	if al.shared != nil {
		if al.shared.Isempty() {
			size := blocksize(0, nbytes)
			err := al.shared.grow(SourceRAM, size, false /*monitored*/, al.tmpdir)
			if err != nil {
				return nil, err
			}
			return al.carve(*al.shared, nbytes), nil
		} else if al.shared.Cansupply(nbytes) {
			return al.carve(*al.shared, nbytes), nil
		}
	}
	block, err := al.grownewblock(nbytes)
	if err != nil {
		return nil, err
	}
	return al.carve(block, nbytes), nil
}

// Free release nbytes at ptr, previously returned by Alloc with the
// same nbytes. Freeing nil is a no-op, Free never fails. When the
// last live chunk of an owned block goes away the block is destroyed
// right away and its bytes are released with the monitor. The shared
// block is never destroyed here, whatever its occupancy.
func (al *Allocator) Free(ptr unsafe.Pointer, nbytes int64) {
	if ptr == nil || nbytes == 0 {
		return
	}
	chunk := Frompointer(ptr)
	block := chunk.Block()
	al.nfrees++
	if block.free(chunk, nbytes) > 0 || block.Ismonitored() == false {
		return
	}
	if al.current == block {
		al.current = Block{}
	}
	al.forget(block)
	size, src := block.Size(), block.Source()
	block.Destroy()
	al.mon.Decrease(src, size)
}

// Release destroy every owned block, releasing their bytes with the
// monitor. The shared block is left untouched for its owner. The
// allocator is reusable after Release.
func (al *Allocator) Release() {
	infof("temptable: releasing %v blocks, %v allocs %v frees\n",
		len(al.blocks), al.nallocs, al.nfrees)
	for i := range al.blocks {
		block := al.blocks[i]
		size, src := block.Size(), block.Source()
		block.Destroy()
		al.mon.Decrease(src, size)
	}
	al.blocks, al.current = nil, Block{}
}

// Info return owned capacity in bytes, bytes occupied by carved
// chunks, and the number of owned blocks. The shared block is not
// counted.
func (al *Allocator) Info() (capacity, occupied, nblocks int64) {
	for _, block := range al.blocks {
		capacity += block.Size()
		occupied += block.freeoff() - blockHeadersize
	}
	return capacity, occupied, int64(len(al.blocks))
}

// Logstatistics one line humanized summary of this allocator and its
// monitor.
func (al *Allocator) Logstatistics() {
	capacity, occupied, nblocks := al.Info()
	infof(
		"temptable: %v blocks, %v capacity, %v occupied, "+
			"ram %v of %v, mmap %v of %v\n",
		nblocks, hm.Bytes(uint64(capacity)), hm.Bytes(uint64(occupied)),
		hm.Bytes(uint64(al.mon.Consumption(SourceRAM))),
		hm.Bytes(uint64(al.mon.Threshold(SourceRAM))),
		hm.Bytes(uint64(al.mon.Consumption(SourceMMAP))),
		hm.Bytes(uint64(al.mon.Threshold(SourceMMAP))))
}

func (al *Allocator) carve(block Block, nbytes int64) unsafe.Pointer {
	chunk := block.alloc(nbytes)
	al.current = block
	al.nallocs++
	return chunk.Data()
}

// grownewblock grow a monitored block able to serve a chunk of
// nbytes, RAM backed when the RAM threshold permits, else mmap
// backed when mmap is enabled and its threshold permits. Monitor
// consumption is recorded before touching the substrate and rolled
// back if the substrate fails, a failed growth leaves the monitor
// unchanged.
func (al *Allocator) grownewblock(nbytes int64) (Block, error) {
	size := blocksize(int64(len(al.blocks)), nbytes)
	src := SourceRAM
	if al.mon.Increase(SourceRAM, size) == false {
		if al.mon.Mmapenabled() == false ||
			al.mon.Increase(SourceMMAP, size) == false {
			return Block{}, ErrorRecordFileFull
		}
		src = SourceMMAP
	}
	var block Block
	if err := block.grow(src, size, true /*monitored*/, al.tmpdir); err != nil {
		al.mon.Decrease(src, size)
		return Block{}, err
	}
	al.blocks = append(al.blocks, block)
	return block, nil
}

// forget drop an owned block from the allocator's books.
func (al *Allocator) forget(block Block) {
	for i, owned := range al.blocks {
		if owned == block {
			copy(al.blocks[i:], al.blocks[i+1:])
			al.blocks = al.blocks[:len(al.blocks)-1]
			return
		}
	}
	panicerr("Free: chunk from a block not owned by this allocator")
}
