package dispatch

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Package counters. They describe the process-wide mix of fast and
// slow paths; per-loop numbers live in loop.Stats.
var (
	fastHits     atomic.Uint64
	fastFailures atomic.Uint64
	submissions  atomic.Uint64
	panicsSeen   atomic.Uint64
)

// Stats is a point-in-time snapshot of the package counters.
type Stats struct {
	// FastPath counts calls served inline because the caller was
	// already on the target.
	FastPath uint64

	// FastFailures counts fast-path calls whose handle resolved
	// failed inline.
	FastFailures uint64

	// Submitted counts closures accepted by a target's queue.
	Submitted uint64

	// Panics counts work-function panics captured into handles.
	Panics uint64
}

// GetStats returns a snapshot of the package counters.
func GetStats() Stats {
	return Stats{
		FastPath:     fastHits.Load(),
		FastFailures: fastFailures.Load(),
		Submitted:    submissions.Load(),
		Panics:       panicsSeen.Load(),
	}
}

// ResetStats zeroes the package counters.
func ResetStats() {
	fastHits.Store(0)
	fastFailures.Store(0)
	submissions.Store(0)
	panicsSeen.Store(0)
}

// pkgLog holds the package logger; swapped atomically so SetLogger is
// safe against concurrent dispatching.
var pkgLog atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	pkgLog.Store(&nop)
}

// SetLogger sets the logger used for captured panics. The default
// discards everything.
func SetLogger(log zerolog.Logger) {
	pkgLog.Store(&log)
}

func logger() *zerolog.Logger {
	return pkgLog.Load()
}
