package main

import "flag"
import "fmt"
import "math/rand"
import "os"
import "time"
import "unsafe"

import s "github.com/bnclabs/gosettings"
import "github.com/bnclabs/temptable"
import hm "github.com/dustin/go-humanize"

var options struct {
	n       int
	minsize int
	maxsize int
	maxram  string
	maxmmap string
	mmap    bool
	seed    int
	log     bool
}

func argParse() {
	flag.IntVar(&options.n, "n", 1000000,
		"number of allocations to attempt")
	flag.IntVar(&options.minsize, "minsize", 16,
		"smallest chunk size to allocate")
	flag.IntVar(&options.maxsize, "maxsize", 4096,
		"largest chunk size to allocate")
	flag.StringVar(&options.maxram, "maxram", "64MiB",
		"threshold for RAM backed blocks")
	flag.StringVar(&options.maxmmap, "maxmmap", "256MiB",
		"threshold for memory-mapped blocks")
	flag.BoolVar(&options.mmap, "mmap", true,
		"overflow to memory-mapped blocks when RAM is capped")
	flag.IntVar(&options.seed, "seed", int(time.Now().UnixNano()),
		"seed for the chunk size distribution")
	flag.BoolVar(&options.log, "log", false,
		"enable temptable logging")
	flag.Parse()
}

type chunkref struct {
	ptr  unsafe.Pointer
	size int64
}

func main() {
	argParse()
	if options.log {
		temptable.LogComponents("all")
	}

	maxram, err := hm.ParseBytes(options.maxram)
	if err != nil {
		fmt.Printf("invalid -maxram %q: %v\n", options.maxram, err)
		os.Exit(1)
	}
	maxmmap, err := hm.ParseBytes(options.maxmmap)
	if err != nil {
		fmt.Printf("invalid -maxmmap %q: %v\n", options.maxmmap, err)
		os.Exit(1)
	}

	setts := temptable.Defaultsettings().Mixin(s.Settings{
		"maxram":      int64(maxram),
		"maxmmap":     int64(maxmmap),
		"mmap.enable": options.mmap,
	})
	mon := temptable.NewMonitor(setts)
	al := temptable.NewAllocator(nil, mon, setts)

	rnd := rand.New(rand.NewSource(int64(options.seed)))
	live := make([]chunkref, 0, 1024)
	allocated, full := 0, 0

	start := time.Now()
	for i := 0; i < options.n; i++ {
		size := int64(options.minsize)
		if options.maxsize > options.minsize {
			size += int64(rnd.Intn(options.maxsize - options.minsize + 1))
		}
		ptr, err := al.Alloc(size)
		if err == temptable.ErrorRecordFileFull {
			// caller policy on threshold exhaustion, here: free the
			// oldest half of the live chunks and move on
			full++
			half := len(live) / 2
			for _, ref := range live[:half] {
				al.Free(ref.ptr, ref.size)
			}
			live = append(live[:0], live[half:]...)
			continue
		} else if err != nil {
			fmt.Printf("allocation failed fatally: %v\n", err)
			os.Exit(2)
		}
		*(*byte)(ptr) = 0xB
		live = append(live, chunkref{ptr, size})
		allocated++
	}
	elapsed := time.Since(start)

	capacity, occupied, nblocks := al.Info()
	fmt.Printf("allocated %v chunks in %v, %v hit the threshold\n",
		allocated, elapsed, full)
	fmt.Printf("live %v chunks over %v blocks, %v capacity, %v occupied\n",
		len(live), nblocks,
		hm.Bytes(uint64(capacity)), hm.Bytes(uint64(occupied)))
	fmt.Printf("ram  %v of %v\n",
		hm.Bytes(uint64(mon.Consumption(temptable.SourceRAM))),
		hm.Bytes(uint64(mon.Threshold(temptable.SourceRAM))))
	fmt.Printf("mmap %v of %v\n",
		hm.Bytes(uint64(mon.Consumption(temptable.SourceMMAP))),
		hm.Bytes(uint64(mon.Threshold(temptable.SourceMMAP))))

	for _, ref := range live {
		al.Free(ref.ptr, ref.size)
	}
	al.Release()
	fmt.Printf("released, ram %v mmap %v\n",
		hm.Bytes(uint64(mon.Consumption(temptable.SourceRAM))),
		hm.Bytes(uint64(mon.Consumption(temptable.SourceMMAP))))
}
