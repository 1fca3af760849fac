package pool

import (
	s "github.com/bnclabs/gosettings"

	"github.com/bnclabs/mpool/host"
)

// Defaultsettings for NewPool, following the llrb.Defaultsettings /
// bogn.Defaultsettings convention: a map of documented keys merged
// with any caller-supplied overrides via Settings.Mixin.
//
// "initial.bytes" (int64, default: a fraction of free system memory)
//
//	Size of the pool's first subpool. Computed from gosigar's view
//	of free memory the same way bogn.Defaultsettings sizes its
//	llrb key/value capacities.
//
// "growth.strategy" (string, default: "max")
//
//	Either "max" (new subpool size is max(requested*2, current*2))
//	or "min" (min of the same two quantities). spec.md documents
//	"max" as the chosen variant; "min" is kept so the open question
//	it raises stays testable.
//
// "strict.type.checks" (bool, default: true)
//
//	When true, DetailedDeallocate panics on a type-token mismatch
//	or a corrupt subpool index instead of silently trusting the
//	caller.
func Defaultsettings() s.Settings {
	free := host.SysFreeBytes()
	initial := free / 256
	if initial < 64*1024 {
		initial = 64 * 1024
	}
	if initial > 64*1024*1024 {
		initial = 64 * 1024 * 1024
	}
	return s.Settings{
		"initial.bytes":      int64(initial),
		"growth.strategy":    "max",
		"strict.type.checks": true,
	}
}
