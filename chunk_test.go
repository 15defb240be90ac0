package temptable

import "testing"
import "unsafe"

func TestChunksizehint(t *testing.T) {
	ref := map[int64]int64{
		0: 8, 1: 16, 8: 16, 9: 24, 16: 24, 1024: 1032,
		512 * KiB: 512*KiB + 8,
	}
	for nbytes, expected := range ref {
		if x := Chunksizehint(nbytes); x != expected {
			t.Errorf("Chunksizehint(%v) expected %v, got %v", nbytes, expected, x)
		}
	}
}

func TestChunkFrompointer(t *testing.T) {
	var block Block
	if err := block.grow(SourceRAM, 1*MiB, false, ""); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	defer block.Destroy()

	sizes := []int64{16, 100, 4096}
	ptrs := make([]unsafe.Pointer, 0, len(sizes))
	for _, size := range sizes {
		ptrs = append(ptrs, block.alloc(size).Data())
	}
	for i, ptr := range ptrs {
		chunk := Frompointer(ptr)
		if chunk.Data() != ptr {
			t.Errorf("%v: expected %v, got %v", i, ptr, chunk.Data())
		}
		if x := chunk.Block(); x != block {
			t.Errorf("%v: chunk resolved to a foreign block", i)
		}
	}

	// chunks must not overlap, filling one leaves the others intact
	for i, ptr := range ptrs {
		data := unsafe.Slice((*byte)(ptr), sizes[i])
		for j := range data {
			data[j] = byte(i + 1)
		}
	}
	for i, ptr := range ptrs {
		data := unsafe.Slice((*byte)(ptr), sizes[i])
		for j := range data {
			if data[j] != byte(i+1) {
				t.Fatalf("chunk %v overwritten at %v", i, j)
			}
		}
	}
}
