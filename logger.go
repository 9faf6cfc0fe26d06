package scanline

import (
	"log/slog"
	"sync/atomic"
)

// defaultLogger backs Logger. It is swapped atomically so SetLogger may race
// with sessions that are logging.
var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(discardLogger())
}

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// SetLogger sets the logger used by every dispatcher that was not given one
// through WithLogger. A dispatcher looks the logger up when a session starts,
// so the change applies from the next session on. By default scanline logs
// nothing; nil restores that.
//
// Records by level:
//   - [slog.LevelDebug]: proxy lifecycle (initialized, exhausted, disposed)
//   - [slog.LevelInfo]: session started, finished or failed
//   - [slog.LevelWarn]: a worker could not be torn down
//
// Example:
//
//	scanline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = discardLogger()
	}
	defaultLogger.Store(l)
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return defaultLogger.Load()
}
