package coloring

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// loggerPtr stores the active logger. The engine is single-threaded but the
// logger may be swapped by the host at any time.
var loggerPtr atomic.Pointer[logrus.Logger]

func init() {
	loggerPtr.Store(newSilentLogger())
}

// newSilentLogger returns a logger that discards everything.
func newSilentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// SetLogger configures the logger used by the coloring engine.
// By default the engine produces no log output. Pass nil to restore the
// silent default.
//
// Levels used:
//   - Debug: per-operation diagnostics (fill seeds, history moves)
//   - Warn: degraded but accepted outcomes (capped fills, persistence failures)
//   - Error: invariant violations that were turned into no-ops
func SetLogger(l *logrus.Logger) {
	if l == nil {
		l = newSilentLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current engine logger.
func Logger() *logrus.Logger {
	return loggerPtr.Load()
}

func logger() *logrus.Entry {
	return logrus.NewEntry(loggerPtr.Load()).WithField("component", "coloring")
}
