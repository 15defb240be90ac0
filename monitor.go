package temptable

import "sync/atomic"

import s "github.com/bnclabs/gosettings"

// Source of backing memory for a block.
type Source int64

const (
	// SourceRAM blocks are backed by anonymous process memory.
	SourceRAM Source = iota
	// SourceMMAP blocks are backed by a memory-mapped temporary
	// file.
	SourceMMAP
)

func (src Source) String() string {
	switch src {
	case SourceRAM:
		return "ram"
	case SourceMMAP:
		return "mmap"
	}
	panicerr("invalid source %v", int64(src))
	return ""
}

// Monitor keeps process wide account of RAM and MMAP bytes consumed
// by allocators and gates every block growth against configurable
// thresholds. Construct one monitor per process, or per test, and
// hand it to every allocator that should be gated by it. All methods
// are safe for concurrent calls from any number of allocators, with
// no external locking.
type Monitor struct {
	consumption [2]int64
	threshold   [2]int64
	mmapok      int64
}

// NewMonitor create a monitor from "maxram", "maxmmap" and
// "mmap.enable" settings, refer to Defaultsettings().
func NewMonitor(setts s.Settings) *Monitor {
	mon := &Monitor{}
	mon.Setthreshold(SourceRAM, setts.Int64("maxram"))
	mon.Setthreshold(SourceMMAP, setts.Int64("maxmmap"))
	mon.Setmmapenabled(setts.Bool("mmap.enable"))
	return mon
}

// Increase record n more bytes of consumption for src. The threshold
// check and the update are a single atomic step, two concurrent
// increases can never together cross the threshold. Return false,
// leaving consumption untouched, if recording n bytes would cross
// the threshold.
func (mon *Monitor) Increase(src Source, n int64) bool {
	for {
		current := atomic.LoadInt64(&mon.consumption[src])
		if current+n > atomic.LoadInt64(&mon.threshold[src]) {
			return false
		}
		if atomic.CompareAndSwapInt64(
			&mon.consumption[src], current, current+n) {
			return true
		}
	}
}

// Decrease release n bytes of consumption for src, clamped at zero,
// and return the consumption prior to this call. Decrease never
// fails, releasing memory is always allowed.
func (mon *Monitor) Decrease(src Source, n int64) int64 {
	for {
		current := atomic.LoadInt64(&mon.consumption[src])
		next := current - n
		if next < 0 {
			next = 0
		}
		if atomic.CompareAndSwapInt64(&mon.consumption[src], current, next) {
			return current
		}
	}
}

// Consumption current consumption in bytes for src.
func (mon *Monitor) Consumption(src Source) int64 {
	return atomic.LoadInt64(&mon.consumption[src])
}

// Threshold current threshold in bytes for src.
func (mon *Monitor) Threshold(src Source) int64 {
	return atomic.LoadInt64(&mon.threshold[src])
}

// Setthreshold change the threshold for src. Applies only to future
// Increase calls, consumption already recorded is left as is.
func (mon *Monitor) Setthreshold(src Source, n int64) {
	atomic.StoreInt64(&mon.threshold[src], n)
}

// Mmapenabled whether allocators may overflow to mmap blocks.
func (mon *Monitor) Mmapenabled() bool {
	return atomic.LoadInt64(&mon.mmapok) > 0
}

// Setmmapenabled toggle the mmap overflow for future block growths.
func (mon *Monitor) Setmmapenabled(enable bool) {
	if enable {
		atomic.StoreInt64(&mon.mmapok, 1)
	} else {
		atomic.StoreInt64(&mon.mmapok, 0)
	}
}

// Stats return a map of consumption counters, thresholds and the
// mmap toggle.
func (mon *Monitor) Stats() map[string]interface{} {
	return map[string]interface{}{
		"ram.consumption":  mon.Consumption(SourceRAM),
		"ram.threshold":    mon.Threshold(SourceRAM),
		"mmap.consumption": mon.Consumption(SourceMMAP),
		"mmap.threshold":   mon.Threshold(SourceMMAP),
		"mmap.enable":      mon.Mmapenabled(),
	}
}
