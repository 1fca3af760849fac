package pool

import (
	"sync/atomic"

	// golog's package clause is "package log"; the import path's last
	// element ("golog") is just the repo name.
	"github.com/bnclabs/golog"
)

var logok = int64(0)

// LogComponents enables debug/trace logging for the pool package. By
// default logging is disabled; call this with "pool" or "all" to turn
// it on, mirroring llrb.LogComponents and bogn.LogComponents.
func LogComponents(components ...string) {
	for _, comp := range components {
		switch comp {
		case "pool", "self", "all":
			atomic.StoreInt64(&logok, 1)
		}
	}
}

func debugf(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Debugf(format, v...)
	}
}

func infof(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Infof(format, v...)
	}
}

func tracef(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Tracef(format, v...)
	}
}

func warnf(format string, v ...interface{}) {
	if atomic.LoadInt64(&logok) > 0 {
		log.Warnf(format, v...)
	}
}
