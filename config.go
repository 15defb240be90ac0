package temptable

import "os"

import s "github.com/bnclabs/gosettings"
import "github.com/cloudfoundry/gosigar"

// Defaultsettings for Monitor and Allocator.
//
// "maxram" (int64, default: free system RAM, capped at 1 GiB)
//		Threshold for RAM backed blocks, across all allocators
//		sharing the monitor. Allocations that cannot be served
//		under this threshold overflow to mmap blocks, if enabled.
//
// "maxmmap" (int64, default: 1 GiB)
//		Threshold for memory-mapped blocks. A zero threshold
//		effectively disables the mmap fallback even when
//		"mmap.enable" is true.
//
// "mmap.enable" (bool, default: true)
//		Allow overflowing to memory-mapped blocks once the RAM
//		threshold is reached.
//
// "mmap.tmpdir" (string, default: os.TempDir())
//		Directory in which backing files for mmap blocks are
//		created. Files are unlinked as soon as they are mapped.
func Defaultsettings() s.Settings {
	maxram := 1 * GiB
	if _, _, free := getsysmem(); int64(free) < maxram {
		maxram = int64(free)
	}
	return s.Settings{
		"maxram":      maxram,
		"maxmmap":     1 * GiB,
		"mmap.enable": true,
		"mmap.tmpdir": os.TempDir(),
	}
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	mem.Get()
	return mem.Total, mem.Used, mem.Free
}
