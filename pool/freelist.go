package pool

import "sort"

// freeBlock records a deallocated, still-unused, contiguous byte region.
type freeBlock struct {
	NBytes  uintptr
	Address uintptr
}

func (fb freeBlock) leftAdjacentTo(other freeBlock) bool {
	return fb.Address+fb.NBytes == other.Address
}

// freeList is an address-ordered sequence of freeBlock entries. It is
// the pool-allocator analogue of the fixed-size-chunk free-lists in
// malloc/pool_flist.go, generalised to variable-sized regions.
type freeList struct {
	blocks []freeBlock
}

func (fl *freeList) len() int { return len(fl.blocks) }

func (fl *freeList) at(i int) freeBlock { return fl.blocks[i] }

// insert places fb in address order. When merge is true and fb turns
// out to be left-adjacent to its successor, the successor is extended
// leftward to absorb fb instead of inserting a new entry; either way,
// a full coalesce pass runs afterwards so that a merge can cascade into
// the block's other neighbour too. When merge is false (used only when
// publishing the unused tail of a subpool during growth) fb is inserted
// without ever being merged.
func (fl *freeList) insert(fb freeBlock, merge bool) {
	if len(fl.blocks) == 0 {
		fl.blocks = append(fl.blocks, fb)
		return
	}
	insertPos := sort.Search(len(fl.blocks), func(i int) bool {
		return fl.blocks[i].Address >= fb.Address
	})
	if merge && insertPos < len(fl.blocks) && fb.leftAdjacentTo(fl.blocks[insertPos]) {
		fl.blocks[insertPos].Address = fb.Address
		fl.blocks[insertPos].NBytes += fb.NBytes
	} else {
		fl.blocks = append(fl.blocks, freeBlock{})
		copy(fl.blocks[insertPos+1:], fl.blocks[insertPos:])
		fl.blocks[insertPos] = fb
	}
	if merge {
		fl.coalescePass()
	}
}

// findFirstFit scans in address order (not size order) for the first
// entry able to satisfy a request of n bytes. This is a deliberate
// first-fit, not best-fit, trade-off: see spec.md 4.2.
func (fl *freeList) findFirstFit(n uintptr) (int, bool) {
	for i, blk := range fl.blocks {
		if blk.NBytes >= n {
			return i, true
		}
	}
	return 0, false
}

func (fl *freeList) removeAt(i int) {
	fl.blocks = append(fl.blocks[:i], fl.blocks[i+1:]...)
}

// coalescePass merges every pair of byte-adjacent neighbours in one
// left-to-right sweep, so that no two surviving entries are adjacent.
func (fl *freeList) coalescePass() {
	i := 0
	for i < len(fl.blocks)-1 {
		if fl.blocks[i].leftAdjacentTo(fl.blocks[i+1]) {
			fl.blocks[i].NBytes += fl.blocks[i+1].NBytes
			fl.blocks = append(fl.blocks[:i+1], fl.blocks[i+2:]...)
			continue
		}
		i++
	}
}
