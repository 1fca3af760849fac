package main

import "fmt"
import "flag"
import "math/rand"
import "time"

import s "github.com/bnclabs/gosettings"
import hm "github.com/dustin/go-humanize"

import "github.com/bnclabs/mpool/pool"

var options struct {
	initial int64
	n       int
	minsize int
	maxsize int
	gc      bool
	logs    bool
}

func argParse() {
	flag.Int64Var(&options.initial, "initial", 1024*1024,
		"bytes to carve for the pool's first subpool")
	flag.IntVar(&options.n, "n", 10000,
		"number of allocate/deallocate cycles to simulate")
	flag.IntVar(&options.minsize, "minsize", 16,
		"minimum allocation size")
	flag.IntVar(&options.maxsize, "maxsize", 4096,
		"maximum allocation size")
	flag.BoolVar(&options.gc, "gc", false,
		"run Gc() after the simulation and report bytes released")
	flag.BoolVar(&options.logs, "logs", false,
		"enable pool package debug/trace logging")
	flag.Parse()
}

func main() {
	argParse()
	if options.logs {
		pool.LogComponents("pool")
	}

	setts := pool.Defaultsettings().Mixin(s.Settings{
		"initial.bytes": options.initial,
	})
	p, err := pool.NewPool(setts)
	if err != nil {
		fmt.Printf("NewPool: %v\n", err)
		return
	}

	now := time.Now()
	simulate(p, options.n, options.minsize, options.maxsize)
	fmt.Printf("Took %v to run %v allocate/deallocate cycles\n", time.Since(now), options.n)

	fmt.Print(p.PrintInfo())
	fmt.Printf(
		"pool size %s, bytes used %s\n",
		hm.Bytes(uint64(p.PoolSize())), hm.Bytes(uint64(p.BytesUsed())),
	)

	if options.gc {
		released := p.Gc()
		fmt.Printf("gc released %s\n", hm.Bytes(uint64(released)))
	}
}

// simulate allocates count regions of random size in [minsize,maxsize)
// and deallocates half of them immediately, keeping the rest live until
// every allocation is done, to exercise both the bump path and the
// free-list recycle path; the live ones are then deallocated too.
func simulate(p *pool.Pool, count, minsize, maxsize int) {
	live := make([]struct{ addr, n uintptr }, 0, count/2)
	for i := 0; i < count; i++ {
		n := uintptr(minsize + rand.Intn(maxsize-minsize))
		addr, err := p.Allocate(n)
		if err != nil {
			fmt.Printf("panic averted: allocate failed at iteration %v: %v\n", i, err)
			break
		}
		if i%2 == 0 {
			p.Deallocate(addr, n)
			continue
		}
		live = append(live, struct{ addr, n uintptr }{addr, n})
	}
	for _, blk := range live {
		p.Deallocate(blk.addr, blk.n)
	}
}
