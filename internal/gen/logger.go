package gen

import (
	"go.uber.org/zap"
	"sync/atomic"
)

var (
	nopLogger = zap.NewNop()
	logger    atomic.Pointer[zap.Logger]
)

// Logger returns the generator's logger, a no-op logger unless SetLogger
// installed another one.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nopLogger
}

func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
