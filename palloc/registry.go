package palloc

import (
	"reflect"
	"sync"

	s "github.com/bnclabs/gosettings"

	"github.com/bnclabs/mpool/pool"
)

// defaultPools is a process-wide registry of one Pool per element
// type, the Go stand-in for original_source's get_pool<T>() function
// template: every translation unit that asks for T's default pool
// gets the same underlying Pool, created lazily on first use.
var defaultPools = struct {
	mu   sync.Mutex
	byTy map[reflect.Type]*pool.Pool
}{
	byTy: make(map[reflect.Type]*pool.Pool),
}

// DefaultPool returns the process-wide Pool for T, creating it with
// pool.Defaultsettings() on first use. Safe for concurrent use; the
// lazy init is guarded by a mutex rather than sync.Once because the
// registry holds one pool per type, not a single global.
func DefaultPool[T any]() (*pool.Pool, error) {
	ty := reflect.TypeOf((*T)(nil)).Elem()

	defaultPools.mu.Lock()
	defer defaultPools.mu.Unlock()

	if p, ok := defaultPools.byTy[ty]; ok {
		return p, nil
	}
	p, err := pool.NewPool(pool.Defaultsettings())
	if err != nil {
		return nil, err
	}
	defaultPools.byTy[ty] = p
	return p, nil
}

// DefaultAllocator returns an Allocator[T] bound to T's default pool.
func DefaultAllocator[T any]() (Allocator[T], error) {
	p, err := DefaultPool[T]()
	if err != nil {
		return Allocator[T]{}, err
	}
	return NewAllocator[T](p), nil
}

// resetDefaultPools is test-only: it forgets every registered pool
// without releasing their subpools, so tests can assert registration
// behaviour without leaking state across test functions.
func resetDefaultPools() {
	defaultPools.mu.Lock()
	defer defaultPools.mu.Unlock()
	defaultPools.byTy = make(map[reflect.Type]*pool.Pool)
}

// DefaultPoolWith behaves like DefaultPool but applies setts on top
// of pool.Defaultsettings() the first time T's pool is created. A
// second call for the same T with different settings is a no-op: the
// registry only honours settings at creation time, matching the
// C++ original's one-shot static-local initialisation of get_pool<T>.
func DefaultPoolWith[T any](setts s.Settings) (*pool.Pool, error) {
	ty := reflect.TypeOf((*T)(nil)).Elem()

	defaultPools.mu.Lock()
	defer defaultPools.mu.Unlock()

	if p, ok := defaultPools.byTy[ty]; ok {
		return p, nil
	}
	p, err := pool.NewPool(setts)
	if err != nil {
		return nil, err
	}
	defaultPools.byTy[ty] = p
	return p, nil
}
