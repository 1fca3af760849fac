package pool

import (
	"testing"
	"unsafe"
)

type widget struct {
	id   uint64
	name [8]byte
}

func TestDetailedAllocateDeallocateRoundtrip(t *testing.T) {
	p, err := NewPool(testSettings(4096))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addr, err := DetailedAllocate[widget](p, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := (*widget)(unsafe.Pointer(addr))
	w.id = 42
	copy(w.name[:], "gopher")

	hdr := headerOf(addr)
	if hdr.typeID != typeIDOf[widget]() {
		t.Errorf("expected the stored token to match widget's token")
	}
	if int(hdr.subpoolIndex) != len(p.subs)-1 {
		t.Errorf("expected the header to stamp the current subpool's index")
	}

	if w.id != 42 || string(w.name[:6]) != "gopher" {
		t.Fatalf("detailed allocation did not preserve writes")
	}

	DetailedDeallocate[widget](p, addr, 0)
	if x := p.free.len(); x != 1 {
		t.Errorf("expected the region back on the free-list, got %v entries", x)
	}
}

func TestDetailedDeallocateTypeMismatchPanics(t *testing.T) {
	p, err := NewPool(testSettings(4096))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addr, err := DetailedAllocate[widget](p, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected a panic on a type-token mismatch")
		}
	}()
	DetailedDeallocate[uint64](p, addr, 0)
}

func TestDetailedDeallocateCorruptSubpoolIndexPanics(t *testing.T) {
	p, err := NewPool(testSettings(4096))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addr, err := DetailedAllocate[widget](p, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	headerOf(addr).subpoolIndex = 0xffffffff

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected a panic on a corrupt subpool index")
		}
	}()
	DetailedDeallocate[widget](p, addr, 0)
}
