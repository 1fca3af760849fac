package palloc

import (
	"testing"

	"github.com/bnclabs/mpool/pool"
)

type point struct{ x, y int64 }

func TestAllocatorAllocateDeallocate(t *testing.T) {
	p, err := pool.NewPool(pool.Defaultsettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := NewAllocator[point](p)

	pts, err := a.Allocate(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 4 {
		t.Fatalf("expected 4 elements, got %v", len(pts))
	}
	pts[0] = point{x: 1, y: 2}
	pts[3] = point{x: 3, y: 4}
	if pts[0].x != 1 || pts[3].y != 4 {
		t.Errorf("unexpected pool-backed values %+v", pts)
	}
	a.Deallocate(pts)
}

func TestAllocatorEqualAlwaysFalse(t *testing.T) {
	p, err := pool.NewPool(pool.Defaultsettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := NewAllocator[point](p)
	b := NewAllocator[point](p)
	if a.Equal(b) {
		t.Errorf("expected Equal to always report false")
	}
	if a.Equal(a) {
		t.Errorf("expected Equal to report false even against itself")
	}
}

func TestAllocatorRebind(t *testing.T) {
	p, err := pool.NewPool(pool.Defaultsettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := NewAllocator[point](p)
	b := Rebind[byte](a)
	if b.Pool() != a.Pool() {
		t.Errorf("expected Rebind to share the same underlying pool")
	}
}

func TestDefaultPoolIsSharedPerType(t *testing.T) {
	resetDefaultPools()
	defer resetDefaultPools()

	p1, err := DefaultPool[point]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := DefaultPool[point]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1 != p2 {
		t.Errorf("expected the same pool across calls for the same type")
	}

	p3, err := DefaultPool[byte]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p3 == p1 {
		t.Errorf("expected a distinct pool for a distinct type")
	}
}
