package cfacade

import "testing"

func TestQAllocateZeroIsNil(t *testing.T) {
	if p := QAllocate(0); p != nil {
		t.Errorf("expected nil for a zero-sized request")
	}
}

func TestQAllocateWriteReadRoundtrip(t *testing.T) {
	p := QAllocate(64)
	if p == nil {
		t.Fatalf("expected non-nil pointer")
	}
	buf := (*[64]byte)(p)
	for i := range buf {
		buf[i] = byte(i)
	}
	for i := range buf {
		if buf[i] != byte(i) {
			t.Fatalf("byte %d corrupted: got %v", i, buf[i])
		}
	}
	QDeallocate(p)
}

func TestQAllocateIsWordAligned(t *testing.T) {
	for i := 0; i < 32; i++ {
		p := QAllocate(uintptr(i + 1))
		if uintptr(p)%wordSize != 0 {
			t.Fatalf("data pointer not word-aligned for size %d: 0x%x", i+1, uintptr(p))
		}
		QDeallocate(p)
	}
}

func TestQCallocateZeroesMemory(t *testing.T) {
	p := QCallocate(8, 8)
	if p == nil {
		t.Fatalf("expected non-nil pointer")
	}
	buf := (*[64]byte)(p)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: got %v", i, b)
		}
	}
	QDeallocate(p)
}

func TestQDeallocateNilIsNoop(t *testing.T) {
	QDeallocate(nil)
}

func TestQReallocateGrowsAndPreservesPrefix(t *testing.T) {
	p := QAllocate(16)
	buf := (*[16]byte)(p)
	for i := range buf {
		buf[i] = 0xAB
	}
	p2 := QReallocate(p, 64)
	if p2 == nil {
		t.Fatalf("expected non-nil pointer")
	}
	buf2 := (*[64]byte)(p2)
	for i := 0; i < 16; i++ {
		if buf2[i] != 0xAB {
			t.Fatalf("byte %d not preserved across reallocate: got %v", i, buf2[i])
		}
	}
	QDeallocate(p2)
}

func TestQReallocateNilBehavesLikeAllocate(t *testing.T) {
	p := QReallocate(nil, 32)
	if p == nil {
		t.Fatalf("expected non-nil pointer")
	}
	QDeallocate(p)
}

func TestQGarbageCollectRunsWithoutError(t *testing.T) {
	_ = QGarbageCollect()
}
