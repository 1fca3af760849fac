// Package pool implements a user-space memory pool: a sequence of
// subpools, each carved from the host allocator and handed out with a
// bump pointer, backed by an address-ordered free-list that coalesces
// neighbouring deallocations. It mirrors the arena/pool_flist split in
// malloc/arena.go and malloc/pool_flist.go, generalised from
// fixed-size chunks to arbitrary-sized regions.
package pool

import (
	"fmt"
	"strings"
	"sync"

	s "github.com/bnclabs/gosettings"
	hm "github.com/dustin/go-humanize"
)

// Pool hands out byte ranges from a growable sequence of subpools and
// recycles deallocated ranges through a coalescing free-list. The zero
// value is not usable; construct with NewPool.
type Pool struct {
	mu sync.Mutex

	setts    s.Settings
	strategy string // "max" or "min", read from settings once at construction.
	strict   bool

	subs []*Subpool // subs[len(subs)-1] is the current, bump-active subpool.
	free freeList

	totalBytes uintptr // sum of every non-released subpool's Size(); Gc subtracts what it releases.
	usedBytes  uintptr // sum of every Allocate/DetailedAllocate request outstanding.
}

// NewPool creates a Pool with one subpool sized per "initial.bytes" in
// setts. Pass Defaultsettings() (optionally Mixin'd with overrides) or
// nil to accept every default.
func NewPool(setts s.Settings) (*Pool, error) {
	if setts == nil {
		setts = Defaultsettings()
	} else {
		setts = Defaultsettings().Mixin(setts)
	}
	initial := uintptr(setts.Int64("initial.bytes"))
	p := &Pool{
		setts:    setts,
		strategy: setts.String("growth.strategy"),
		strict:   setts.Bool("strict.type.checks"),
	}
	sp, err := newSubpool(initial)
	if err != nil {
		return nil, err
	}
	p.subs = append(p.subs, sp)
	p.totalBytes = sp.Size()
	infof("pool: new pool, initial subpool %s\n", hm.Bytes(uint64(initial)))
	return p, nil
}

func (p *Pool) cur() *Subpool { return p.subs[len(p.subs)-1] }

// Allocate returns the address of a freshly carved or recycled region
// of exactly n bytes. It never returns 0 on success; on failure it
// returns ErrOutOfMemory.
func (p *Pool) Allocate(n uintptr) (uintptr, error) {
	if n == 0 {
		panic("pool: Allocate: n must be > 0")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocateLocked(n)
}

func (p *Pool) allocateLocked(n uintptr) (uintptr, error) {
	// The free-list is only consulted when the current subpool could
	// have satisfied the request by bumping; if it couldn't, the free
	// blocks are assumed smaller than n too and the pool grows straight
	// away, matching pool_impl.hpp's allocate().
	if p.cur().CanAdvance(n) {
		if i, ok := p.free.findFirstFit(n); ok {
			blk := p.free.at(i)
			p.free.removeAt(i)
			addr := blk.Address
			if left := blk.NBytes - n; left > 0 {
				// Keep the block-info prefix (subpoolIndex/typeID) at
				// the block's original start: the residual m bytes
				// stay at blk.Address, the returned n bytes are the
				// trailing ones at blk.Address+left.
				p.free.insert(freeBlock{Address: blk.Address, NBytes: left}, true)
				addr += left
			}
			p.usedBytes += n
			tracef("pool: allocate %d bytes from free-list at 0x%x\n", n, addr)
			return addr, nil
		}
	} else {
		if err := p.growLocked(n); err != nil {
			return 0, err
		}
	}
	addr := p.cur().Advance(n)
	p.usedBytes += n
	tracef("pool: allocate %d bytes by bump at 0x%x\n", n, addr)
	return addr, nil
}

// growLocked appends a new subpool large enough to satisfy a request
// of at least need bytes, sized by the chosen growth strategy, and
// publishes the unused tail of the subpool being abandoned to the
// free-list (unmerged: it is the only thing in its address range).
func (p *Pool) growLocked(need uintptr) error {
	old := p.cur()
	if skipped := old.AdvanceToEnd(); skipped > 0 {
		p.free.insert(freeBlock{Address: old.Pos() - skipped, NBytes: skipped}, false)
	}
	doubled := old.Size() * 2
	needed := need * 2
	var size uintptr
	switch p.strategy {
	case "min":
		size = minUintptr(needed, doubled)
	default:
		size = maxUintptr(needed, doubled)
	}
	if size < need {
		size = need
	}
	sp, err := newSubpool(size)
	if err != nil {
		warnf("pool: grow: host allocator refused %s\n", hm.Bytes(uint64(size)))
		return ErrOutOfMemory
	}
	p.subs = append(p.subs, sp)
	p.totalBytes += sp.Size()
	debugf("pool: grew pool by %s, %d subpools now\n", hm.Bytes(uint64(size)), len(p.subs))
	return nil
}

func minUintptr(a, b uintptr) uintptr {
	if a < b {
		return a
	}
	return b
}

func maxUintptr(a, b uintptr) uintptr {
	if a > b {
		return a
	}
	return b
}

// Deallocate returns a previously allocated [addr, addr+n) range to
// the free-list, coalescing with any byte-adjacent neighbours.
func (p *Pool) Deallocate(addr uintptr, n uintptr) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deallocateLocked(addr, n)
}

func (p *Pool) deallocateLocked(addr uintptr, n uintptr) {
	if !p.isValidLocked(addr) {
		panic(fmt.Sprintf("pool: Deallocate: 0x%x does not belong to this pool", addr))
	}
	p.free.insert(freeBlock{Address: addr, NBytes: n}, true)
	p.usedBytes -= n
	tracef("pool: deallocate %d bytes at 0x%x\n", n, addr)
}

// isValidLocked reports whether addr falls within any subpool of this
// Pool that has not been released.
func (p *Pool) isValidLocked(addr uintptr) bool {
	for _, sp := range p.subs {
		if sp.Released() {
			continue
		}
		if sp.IsValid(addr) {
			return true
		}
	}
	return false
}

// PoolSize returns the total number of bytes carved from the host
// allocator across every subpool not yet released by Gc.
func (p *Pool) PoolSize() uintptr {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalBytes
}

// BytesUsed returns the number of bytes currently allocated and not
// yet deallocated.
func (p *Pool) BytesUsed() uintptr {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.usedBytes
}

// PrintInfo formats a human-readable summary of the pool's subpools
// and free-list, for a caller (typically a CLI, see cmd/mpoolctl) to
// print. Mirrors the diagnostic text spec.md's print_info describes;
// it is a pure formatter over already-computed accounting, not a new
// source of allocator logic.
func (p *Pool) PrintInfo() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(
		&b, "pool: %d subpools, %s total, %s used, %d free-list entries\n",
		len(p.subs), hm.Bytes(uint64(p.totalBytes)), hm.Bytes(uint64(p.usedBytes)), p.free.len(),
	)
	for i, sp := range p.subs {
		if sp.Released() {
			fmt.Fprintf(&b, "  subpool %d: released\n", i)
			continue
		}
		fmt.Fprintf(
			&b, "  subpool %d: [0x%x, 0x%x) pos=0x%x left=%s\n",
			i, sp.Begin(), sp.End(), sp.Pos(), hm.Bytes(uint64(sp.SizeLeft())),
		)
	}
	for i := 0; i < p.free.len(); i++ {
		blk := p.free.at(i)
		fmt.Fprintf(&b, "  free: [0x%x, 0x%x) %s\n", blk.Address, blk.Address+blk.NBytes, hm.Bytes(uint64(blk.NBytes)))
	}
	return b.String()
}
