// Package palloc exposes pool.Pool through a value-copyable, generic
// allocator handle, the Go analogue of the C++ allocator_impl/allocator
// templates in original_source/include/qalloc/internal.
package palloc

import (
	"fmt"
	"unsafe"

	"github.com/bnclabs/mpool/pool"
)

// Allocator is a value-copyable handle bound to one Pool and one
// element type. Copies of the same Allocator[T] share the underlying
// Pool; Rebind produces a handle for a different element type backed
// by that same Pool.
type Allocator[T any] struct {
	p *pool.Pool
}

// NewAllocator wraps p in a typed handle.
func NewAllocator[T any](p *pool.Pool) Allocator[T] {
	return Allocator[T]{p: p}
}

// Allocate carves room for n elements of T and returns them as a
// slice backed by pool memory, not by the Go heap; the runtime does
// not know about this memory and will never move or collect it.
func (a Allocator[T]) Allocate(n int) ([]T, error) {
	if n <= 0 {
		panic("palloc: Allocate: n must be > 0")
	}
	var zero T
	sz := unsafe.Sizeof(zero)
	addr, err := a.p.Allocate(uintptr(n) * sz)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(addr)), n), nil
}

// Deallocate returns a slice obtained from Allocate to the pool. The
// slice's header must be unmodified: same base address, same length.
func (a Allocator[T]) Deallocate(s []T) {
	if len(s) == 0 {
		return
	}
	var zero T
	sz := unsafe.Sizeof(zero)
	addr := uintptr(unsafe.Pointer(&s[0]))
	a.p.Deallocate(addr, uintptr(len(s))*sz)
}

// Rebind yields an allocator for a different element type sharing the
// same underlying pool, mirroring the C++ allocator_traits::rebind
// mechanism without the template machinery.
func Rebind[U, T any](a Allocator[T]) Allocator[U] {
	return Allocator[U]{p: a.p}
}

// Equal always reports false. Per spec.md 6.2, the "always-equal"
// allocator predicate a container relies on to skip rebind-on-swap
// does not hold here: each handle is tied to its pool, so two handles
// are never considered equal even when they wrap the same Pool.
func (a Allocator[T]) Equal(other Allocator[T]) bool {
	return false
}

// Pool exposes the backing pool for callers that need the lower-level
// API (DetailedAllocate, Gc, PrintInfo).
func (a Allocator[T]) Pool() *pool.Pool { return a.p }

func (a Allocator[T]) String() string {
	var zero T
	return fmt.Sprintf("palloc.Allocator[%T]", zero)
}
