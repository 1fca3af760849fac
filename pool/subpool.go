package pool

import (
	"sync/atomic"
	"unsafe"

	"github.com/bnclabs/mpool/host"
)

// Subpool is a contiguous byte buffer carved by a bump pointer. A Pool
// owns an ordered slice of subpools; only the current one may hand out
// fresh bytes via Advance.
type Subpool struct {
	begin uintptr
	end   uintptr
	pos   atomic.Uintptr // documentary: always touched under the Pool's lock today.
	base  unsafe.Pointer // original host.Alloc pointer, needed by Release.
}

// newSubpool carves a fresh buffer of nBytes from the host allocator.
func newSubpool(nBytes uintptr) (*Subpool, error) {
	p, err := host.Alloc(nBytes)
	if err != nil {
		return nil, err
	}
	begin := uintptr(p)
	sp := &Subpool{begin: begin, end: begin + nBytes, base: p}
	sp.pos.Store(begin)
	return sp, nil
}

// Begin returns the first address owned by the subpool, or 0 if released.
func (sp *Subpool) Begin() uintptr { return sp.begin }

// End returns the address one past the last byte owned by the subpool.
func (sp *Subpool) End() uintptr { return sp.end }

// Pos returns the current bump cursor.
func (sp *Subpool) Pos() uintptr { return sp.pos.Load() }

// Size returns end-begin, 0 once released.
func (sp *Subpool) Size() uintptr { return sp.end - sp.begin }

// SizeLeft returns the number of bytes still bumpable.
func (sp *Subpool) SizeLeft() uintptr { return sp.end - sp.pos.Load() }

// CanAdvance reports whether n bytes can still be bumped from pos.
func (sp *Subpool) CanAdvance(n uintptr) bool {
	return sp.pos.Load()+n <= sp.end
}

// Advance moves the cursor forward by n bytes and returns the
// pre-advance cursor, i.e. the address of the newly carved region.
// Panics if n would overrun the subpool; callers must check
// CanAdvance first.
func (sp *Subpool) Advance(n uintptr) uintptr {
	pos := sp.pos.Load()
	if pos+n > sp.end {
		panic("pool: Subpool.Advance: would overrun subpool")
	}
	sp.pos.Store(pos + n)
	return pos
}

// AdvanceToEnd clamps pos to end and returns the number of bytes skipped.
func (sp *Subpool) AdvanceToEnd() uintptr {
	pos := sp.pos.Load()
	skipped := sp.end - pos
	sp.pos.Store(sp.end)
	return skipped
}

// IsValid reports whether p falls within [begin, end).
func (sp *Subpool) IsValid(p uintptr) bool {
	return p >= sp.begin && p < sp.end
}

// Released reports whether the subpool's buffer has been handed back
// to the host allocator. A released subpool's slot is a tombstone:
// its index stays meaningful forever, but it owns no bytes.
func (sp *Subpool) Released() bool {
	return sp.begin == 0 && sp.end == 0
}

// Release hands the subpool's buffer back to the host allocator.
// Precondition: pos == end, i.e. the whole subpool has been bumped
// through (checked by the caller via the free-list bookkeeping before
// Release is ever called).
func (sp *Subpool) Release() {
	if sp.pos.Load() != sp.end {
		panic("pool: Subpool.Release: subpool not fully advanced")
	}
	host.Free(sp.base)
	sp.pos.Store(0)
	sp.begin, sp.end, sp.base = 0, 0, nil
}
