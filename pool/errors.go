package pool

import "errors"

// ErrOutOfMemory is returned by Allocate/DetailedAllocate when the host
// allocator refuses to grow the pool. It is never recovered locally.
var ErrOutOfMemory = errors.New("pool: out of memory")
