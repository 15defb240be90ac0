package temptable

import "fmt"
import "unsafe"
import "encoding/binary"

// Alignment chunk sizes and chunk addresses are multiples of
// Alignment.
const Alignment = int64(8)

// KiB unit helper for configuring thresholds and block sizes.
const KiB = int64(1024)

// MiB unit helper for configuring thresholds and block sizes.
const MiB = 1024 * KiB

// GiB unit helper for configuring thresholds and block sizes.
const GiB = 1024 * MiB

// alignceil round n up to the next multiple of Alignment.
func alignceil(n int64) int64 {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// block and chunk headers live in raw memory obtained from the OS,
// loadint64/storeint64 are the only accessors for them.

func loadint64(ptr unsafe.Pointer) int64 {
	return int64(binary.LittleEndian.Uint64(unsafe.Slice((*byte)(ptr), 8)))
}

func storeint64(ptr unsafe.Pointer, value int64) {
	binary.LittleEndian.PutUint64(unsafe.Slice((*byte)(ptr), 8), uint64(value))
}

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}
