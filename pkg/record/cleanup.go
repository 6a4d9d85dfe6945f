package record

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
)

var cleanupLogger atomic.Pointer[slog.Logger]

// SetCleanupLogger sets the logger used to report failures of delegates
// released by the unreachable-record cleanup. A nil logger restores the
// default (slog.Default at the time of the failure).
func SetCleanupLogger(logger *slog.Logger) {
	cleanupLogger.Store(logger)
}

func currentCleanupLogger() *slog.Logger {
	if l := cleanupLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// track registers the release of d for when r becomes unreachable. The
// cleanup argument must not reference r, otherwise r is never collected.
func (r *Record) track(d Delegate) {
	r.cleanup = runtime.AddCleanup(r, releaseUnreachable, d)
	r.tracked = true
}

func (r *Record) untrack() {
	if r.tracked {
		r.cleanup.Stop()
		r.tracked = false
	}
}

// releaseUnreachable runs on the runtime's cleanup goroutine. Nothing can be
// returned to a caller from here, so failures are logged and dropped.
func releaseUnreachable(d Delegate) {
	defer func() {
		if p := recover(); p != nil {
			currentCleanupLogger().Error("delegate release panicked during record cleanup",
				slog.String("delegate", fmt.Sprintf("%T", d)),
				slog.Any("panic", p))
		}
	}()

	if err := d.Release(); err != nil {
		currentCleanupLogger().Warn("delegate release failed during record cleanup",
			slog.String("delegate", fmt.Sprintf("%T", d)),
			slog.Any("error", err))
	}
}
