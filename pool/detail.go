package pool

import (
	"fmt"
	"unsafe"
)

// DetailedAllocate carves headerSize+unsafe.Sizeof(T)+extra bytes, stamps
// the header with T's type token and the index of the subpool that is
// current at the moment of the call (matching original_source's
// detailed_allocate<T>, which always stamps index_of(cur) even when
// the bytes actually came from a free-list entry originally carved
// from an older subpool), and returns the address just past the
// header, ready to be cast to *T by the caller.
func DetailedAllocate[T any](p *Pool, extra uintptr) (uintptr, error) {
	var zero T
	need := headerSize + unsafe.Sizeof(zero) + extra

	p.mu.Lock()
	defer p.mu.Unlock()

	addr, err := p.allocateLocked(need)
	if err != nil {
		return 0, err
	}
	hdr := headerAt(addr)
	hdr.typeID = typeIDOf[T]()
	hdr.subpoolIndex = uint32(len(p.subs) - 1)
	tracef("pool: detailed-allocate %T at 0x%x, subpool %d\n", zero, addr, hdr.subpoolIndex)
	return addr + headerSize, nil
}

// DetailedDeallocate returns a region obtained from DetailedAllocate
// to the pool. When strict.type.checks is set (the default) it panics
// if the stored token does not match T or if subpoolIndex is out of
// range, the same defensive posture original_source's pool_detail
// takes before trusting a caller-supplied pointer.
func DetailedDeallocate[T any](p *Pool, userAddr uintptr, extra uintptr) {
	var zero T
	hdr := headerOf(userAddr)

	p.mu.Lock()
	defer p.mu.Unlock()

	wantID := typeIDOf[T]()
	if p.strict && hdr.typeID != wantID {
		panic(fmt.Sprintf(
			"pool: DetailedDeallocate: type mismatch, stored %q want %T",
			typeNameFor(hdr.typeID), zero,
		))
	}
	if p.strict && int(hdr.subpoolIndex) >= len(p.subs) {
		panic(fmt.Sprintf("pool: DetailedDeallocate: corrupt subpool index %d", hdr.subpoolIndex))
	}
	addr := userAddr - headerSize
	need := headerSize + unsafe.Sizeof(zero) + extra
	p.deallocateLocked(addr, need)
}

// Gc walks every subpool, other than the one currently bump-active,
// and releases back to the host allocator any whose bytes are wholly
// covered by free-list entries spanning its full [begin,end) range —
// one entry or several, coalesced or not. Already-released subpools
// and the current one are skipped. Returns the number of bytes
// released, summing each released subpool's size, matching
// pool_detail_impl.hpp's memory_freed accumulator.
//
// This is a range-coverage sweep, not the original's single-block,
// header-lookup sweep (block_info_t::at(addr)->subpool_index, release
// only when one free entry's n_bytes equals the owner's size). See
// DESIGN.md's pool/detail.go entry for why the broader, header-free
// form was kept instead of being narrowed to match.
func (p *Pool) Gc() uintptr {
	p.mu.Lock()
	defer p.mu.Unlock()

	var freed uintptr
	for i, sp := range p.subs {
		if sp.Released() || sp == p.cur() {
			continue
		}
		if !p.subpoolFullyFreeLocked(i, sp) {
			continue
		}
		size := sp.Size()
		p.removeFreeRangeLocked(sp.Begin(), sp.End())
		sp.Release()
		p.totalBytes -= size
		freed += size
		debugf("pool: gc released subpool %d, %d bytes\n", i, size)
	}
	return freed
}

func (p *Pool) subpoolFullyFreeLocked(index int, sp *Subpool) bool {
	var covered uintptr
	for i := 0; i < p.free.len(); i++ {
		blk := p.free.at(i)
		if blk.Address >= sp.Begin() && blk.Address < sp.End() {
			if blk.Address+blk.NBytes > sp.End() {
				warnf("pool: gc: free entry at 0x%x spans past subpool %d, skipping\n", blk.Address, index)
				return false
			}
			covered += blk.NBytes
		}
	}
	return covered == sp.Size()
}

func (p *Pool) removeFreeRangeLocked(begin, end uintptr) {
	kept := p.free.blocks[:0]
	for _, blk := range p.free.blocks {
		if blk.Address >= begin && blk.Address < end {
			continue
		}
		kept = append(kept, blk)
	}
	p.free.blocks = kept
}
