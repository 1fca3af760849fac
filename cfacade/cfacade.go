// Package cfacade exposes a flat, C-callable allocation API –
// QAllocate/QCallocate/QDeallocate/QReallocate/QGarbageCollect – over
// a single process-wide pool.Pool, for programs that link against this
// module from cgo and want malloc/free/realloc-shaped entry points
// instead of the typed palloc.Allocator[T] handle.
//
// Grounded on original_source/src/c_wrapper/qalloc.cpp: every
// allocation carries an out-of-band header immediately before the
// returned pointer,
//
//	[ size : word ][ padding : 0..wordSize-1 bytes ][ padding_len : byte ][ data ]
//
// where padding aligns the data pointer to the platform word. Deallocate
// walks the header backwards from the returned pointer to recover size
// and returns size+padding+word+1 bytes, starting at the size word, to
// the pool. The unused part of the worst-case padding reserved by
// QAllocate (wordSize-padding bytes past the data) is not returned.
package cfacade

import (
	"unsafe"

	"github.com/bnclabs/mpool/palloc"
	"github.com/bnclabs/mpool/pool"
)

var wordSize = unsafe.Sizeof(uintptr(0))

// defaultPool is the single process-wide pool every C-facade call
// routes through, mirroring qalloc.cpp's QALLOC_C_GLOBAL_POOL macro.
func defaultPool() (*pool.Pool, error) {
	return palloc.DefaultPool[byte]()
}

func putWord(addr uintptr, v uintptr) {
	*(*uintptr)(unsafe.Pointer(addr)) = v
}

func getWord(addr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(addr))
}

func putByte(addr uintptr, v byte) {
	*(*byte)(unsafe.Pointer(addr)) = v
}

func getByte(addr uintptr) byte {
	return *(*byte)(unsafe.Pointer(addr))
}

// QAllocate returns a pointer to size bytes of pool memory, or nil on
// failure. The worst-case padding (wordSize bytes) is always reserved,
// same as the original's fixed SIZE_LONG slack, so the actual padding
// computed after the address is known never overruns the region.
func QAllocate(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	p, err := defaultPool()
	if err != nil {
		return nil
	}
	region := wordSize + wordSize + 1 + size // size-word + worst-case padding + padding_len + data
	base, err := pool.DetailedAllocate[byte](p, region-1)
	if err != nil {
		return nil
	}
	return unsafe.Pointer(encode(base, size))
}

// encode writes the [size][padding][padding_len] header starting at
// base and returns the address of the data that follows it.
func encode(base uintptr, size uintptr) uintptr {
	putWord(base, size)
	cursor := base + wordSize
	var padding byte
	for (cursor+uintptr(padding)+1)%wordSize != 0 {
		padding++
	}
	cursor += uintptr(padding)
	putByte(cursor, padding)
	return cursor + 1
}

// decode walks backwards from a data pointer to recover the address of
// the size word and the size itself.
func decode(data uintptr) (sizeAddr uintptr, size uintptr, paddingLen byte) {
	paddingLen = getByte(data - 1)
	sizeAddr = data - 1 - uintptr(paddingLen) - wordSize
	size = getWord(sizeAddr)
	return sizeAddr, size, paddingLen
}

// QCallocate behaves like QAllocate but zeroes the returned region.
func QCallocate(n, size uintptr) unsafe.Pointer {
	if n == 0 || size == 0 {
		return nil
	}
	total := n * size
	addr := QAllocate(total)
	if addr == nil {
		return nil
	}
	start := uintptr(addr)
	for i := uintptr(0); i < total; i++ {
		putByte(start+i, 0)
	}
	return addr
}

// QDeallocate returns memory obtained from QAllocate/QCallocate to the
// pool. A nil ptr is a no-op.
func QDeallocate(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	p, err := defaultPool()
	if err != nil {
		return
	}
	data := uintptr(ptr)
	sizeAddr, size, paddingLen := decode(data)
	beforeData := wordSize + uintptr(paddingLen) + 1
	region := beforeData + size
	pool.DetailedDeallocate[byte](p, sizeAddr, region-1)
}

// QReallocate allocates newSize bytes, copies min(old, newSize) bytes
// from ptr, frees ptr, and returns the new pointer. A nil ptr behaves
// like QAllocate.
func QReallocate(ptr unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	if ptr == nil {
		return QAllocate(newSize)
	}
	data := uintptr(ptr)
	_, oldSize, _ := decode(data)

	newPtr := QAllocate(newSize)
	if newPtr == nil {
		return nil
	}
	n := oldSize
	if newSize < n {
		n = newSize
	}
	src := data
	dst := uintptr(newPtr)
	for i := uintptr(0); i < n; i++ {
		putByte(dst+i, getByte(src+i))
	}
	QDeallocate(ptr)
	return newPtr
}

// QGarbageCollect sweeps the default pool and returns the number of
// bytes released back to the host allocator, mirroring q_garbage_collect's
// size_t return in original_source/src/c_wrapper/qalloc.cpp.
func QGarbageCollect() uintptr {
	p, err := defaultPool()
	if err != nil {
		return 0
	}
	return p.Gc()
}
