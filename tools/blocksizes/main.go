package main

import "flag"
import "fmt"

import "github.com/bnclabs/temptable"
import hm "github.com/dustin/go-humanize"

var options struct {
	chunk int64
}

func argParse() {
	flag.Int64Var(&options.chunk, "chunk", 1024,
		"chunk size to compute hints for")
	flag.Parse()
}

func main() {
	argParse()
	tellprogression()
	tellhints()
}

func tellprogression() {
	fmt.Println("block growth progression:")
	n := 0
	for size := temptable.Minblockbytes; ; size *= 2 {
		fmt.Printf("block %2v, %v\n", n, hm.Bytes(uint64(size)))
		n++
		if size >= temptable.Maxblockbytes {
			break
		}
	}
	fmt.Printf("total %v doublings before the cap\n", n)
}

func tellhints() {
	chunk := temptable.Chunksizehint(options.chunk)
	block := temptable.Blocksizehint(options.chunk)
	fmt.Printf("chunk of %v bytes occupies %v bytes, "+
		"needs a block of at least %v bytes\n",
		options.chunk, chunk, block)
	u := float64(options.chunk) / float64(chunk)
	fmt.Printf("chunk utilization %v\n", u)
}
