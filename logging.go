package ecs

import (
	"os"
	"sync"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logger is the structured-logging type the World uses for its own
// diagnostics (schedule rebuilds, drain summaries).
// It's a concrete instantiation of logiface's generic Logger over the
// zerolog-backed Event implementation (github.com/joeycumines/izerolog).
// WithLogger accepts only a logger of this same instantiation, so a
// logiface backend with a different Event type cannot be plugged in.
type Logger = logiface.Logger[*izerolog.Event]

var (
	defaultLoggerOnce sync.Once
	defaultLoggerInst *Logger
)

// defaultLogger lazily builds a package-wide fallback logger writing to
// stderr via zerolog, used by any World constructed without WithLogger.
func defaultLogger() *Logger {
	defaultLoggerOnce.Do(func() {
		defaultLoggerInst = izerolog.L.New(
			izerolog.WithZerolog(zerolog.New(os.Stderr).With().Timestamp().Logger()),
			logiface.WithLevel[*izerolog.Event](logiface.LevelInfo),
		)
	})
	return defaultLoggerInst
}
