// Package host wraps the platform allocator so that pool can carve
// subpools out of process memory that is invisible to the Go garbage
// collector. Memory handed out here is not scanned or moved by the
// runtime; it is the caller's job to keep it alive and to Free it.
package host

//#include <stdlib.h>
import "C"

import (
	"errors"
	"unsafe"

	"github.com/cloudfoundry/gosigar"
)

// ErrOutOfMemory is returned by Alloc when the platform allocator
// refuses a request.
var ErrOutOfMemory = errors.New("host: out of memory")

// Alloc requests n bytes of zeroed, page-backed memory from the host
// allocator. The returned pointer is not tracked by the Go garbage
// collector and must eventually be passed to Free.
func Alloc(n uintptr) (unsafe.Pointer, error) {
	if n == 0 {
		panic("host.Alloc: n must be > 0")
	}
	p := C.calloc(C.size_t(n), 1)
	if p == nil {
		return nil, ErrOutOfMemory
	}
	return unsafe.Pointer(p), nil
}

// Free releases memory previously returned by Alloc. Freeing a nil
// pointer is a no-op.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	C.free(p)
}

// SysFreeBytes reports the amount of free physical memory as seen by
// the host, used by pool.Defaultsettings to pick a sane initial
// subpool size. Returns 0 if the platform query fails.
func SysFreeBytes() uint64 {
	mem := sigar.Mem{}
	if err := mem.Get(); err != nil {
		return 0
	}
	return mem.Free
}
