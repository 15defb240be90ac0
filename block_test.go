package temptable

import "os"
import "testing"
import "unsafe"

func TestBlocksizehint(t *testing.T) {
	ref := map[int64]int64{
		0: 48, 1: 56, 1024: 1072,
		2 * MiB: 2*MiB + 48,
	}
	for nbytes, expected := range ref {
		if x := Blocksizehint(nbytes); x != expected {
			t.Errorf("Blocksizehint(%v) expected %v, got %v", nbytes, expected, x)
		}
	}
}

func TestBlocksize(t *testing.T) {
	// block sizes double from Minblockbytes and cap at Maxblockbytes
	for nth, expected := range []int64{
		1 * MiB, 2 * MiB, 4 * MiB, 8 * MiB, 16 * MiB, 32 * MiB,
		64 * MiB, 128 * MiB, 256 * MiB, 512 * MiB, 512 * MiB,
	} {
		if x := blocksize(int64(nth), 1); x != expected {
			t.Errorf("blocksize(%v, 1) expected %v, got %v", nth, expected, x)
		}
	}
	if x := blocksize(100, 1); x != Maxblockbytes {
		t.Errorf("expected %v, got %v", Maxblockbytes, x)
	}
	// a single chunk larger than the progression wins over it
	if x, y := blocksize(0, 2*MiB), Blocksizehint(2*MiB); x != y {
		t.Errorf("expected %v, got %v", y, x)
	}
	if x, y := blocksize(9, 600*MiB), Blocksizehint(600*MiB); x != y {
		t.Errorf("expected %v, got %v", y, x)
	}
}

func TestBlockGrow(t *testing.T) {
	var block Block
	if block.Isempty() == false {
		t.Errorf("expected an empty block")
	}
	if err := block.grow(SourceRAM, 1*MiB, true, ""); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	if block.Isempty() {
		t.Errorf("expected a non-empty block")
	}
	if x := block.Size(); x != 1*MiB {
		t.Errorf("expected %v, got %v", 1*MiB, x)
	}
	if x := block.Source(); x != SourceRAM {
		t.Errorf("expected %v, got %v", SourceRAM, x)
	}
	if block.Ismonitored() == false {
		t.Errorf("expected a monitored block")
	}
	// header occupies blockHeadersize bytes out of the megabyte
	if block.Cansupply(1 * MiB) {
		t.Errorf("block cannot supply a full megabyte")
	}
	if block.Cansupply(1*MiB-48) == false {
		t.Errorf("block must supply up to its pristine tail")
	}
	block.Destroy()
	if block.Isempty() == false {
		t.Errorf("expected an empty block after Destroy")
	}
	block.Destroy() // no-op on an empty block
}

func TestBlockCarveFree(t *testing.T) {
	var block Block
	if err := block.grow(SourceRAM, 1*MiB, true, ""); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	defer block.Destroy()

	chunk1 := block.alloc(100)
	if x := block.freeoff(); x != 40+Chunksizehint(100) {
		t.Errorf("expected %v, got %v", 40+Chunksizehint(100), x)
	}
	chunk2 := block.alloc(50)
	if x := block.nchunks(); x != 2 {
		t.Errorf("expected %v, got %v", 2, x)
	}

	// freeing the rightmost chunk rewinds the bump offset
	if x := block.free(chunk2, 50); x != 1 {
		t.Errorf("expected %v, got %v", 1, x)
	}
	if x := block.freeoff(); x != 40+Chunksizehint(100) {
		t.Errorf("expected %v, got %v", 40+Chunksizehint(100), x)
	}
	if x := block.free(chunk1, 100); x != 0 {
		t.Errorf("expected %v, got %v", 0, x)
	}
	if x := block.freeoff(); x != blockHeadersize {
		t.Errorf("expected %v, got %v", blockHeadersize, x)
	}
}

func TestBlockAbandonedChunk(t *testing.T) {
	var block Block
	if err := block.grow(SourceRAM, 1*MiB, true, ""); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	defer block.Destroy()

	chunk1, chunk2 := block.alloc(100), block.alloc(50)
	freeoff := block.freeoff()
	// chunk1 is not the rightmost carve, its space stays abandoned
	if x := block.free(chunk1, 100); x != 1 {
		t.Errorf("expected %v, got %v", 1, x)
	}
	if x := block.freeoff(); x != freeoff {
		t.Errorf("expected %v, got %v", freeoff, x)
	}
	block.free(chunk2, 50)
}

func TestBlockMmap(t *testing.T) {
	tmpdir := t.TempDir()
	var block Block
	if err := block.grow(SourceMMAP, 1*MiB, true, tmpdir); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	if x := block.Source(); x != SourceMMAP {
		t.Errorf("expected %v, got %v", SourceMMAP, x)
	}

	// backing file is unlinked as soon as it is mapped
	entries, err := os.ReadDir(tmpdir)
	if err != nil {
		t.Fatalf("unexpected %v", err)
	} else if len(entries) != 0 {
		t.Errorf("expected no files under %v, got %v", tmpdir, len(entries))
	}

	chunk := block.alloc(4096)
	data := unsafe.Slice((*byte)(chunk.Data()), 4096)
	for i := range data {
		data[i] = 0xB
	}
	for i := range data {
		if data[i] != 0xB {
			t.Fatalf("mmap chunk corrupt at %v", i)
		}
	}
	block.free(chunk, 4096)
	block.Destroy()
	if block.Isempty() == false {
		t.Errorf("expected an empty block after Destroy")
	}
}

func TestBlockEquality(t *testing.T) {
	var block1, block2 Block
	if err := block1.grow(SourceRAM, 1*MiB, true, ""); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	if err := block2.grow(SourceRAM, 1*MiB, true, ""); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	defer block1.Destroy()
	defer block2.Destroy()

	if block1 == block2 {
		t.Errorf("distinct regions must compare unequal")
	}
	alias := block1
	if alias != block1 {
		t.Errorf("same region must compare equal")
	}
}
