package loop

// Stats is a point-in-time snapshot of a loop's counters.
type Stats struct {
	// SubmittedLow, SubmittedNormal, and SubmittedHigh count accepted
	// submissions per priority level.
	SubmittedLow    uint64
	SubmittedNormal uint64
	SubmittedHigh   uint64

	// Executed is the number of tasks run, drained ones included.
	Executed uint64

	// Panics is the number of task panics recovered.
	Panics uint64

	// Drained is the number of tasks run during the shutdown drain.
	Drained uint64

	// QueueLen is the number of tasks waiting at snapshot time.
	QueueLen int
}

// Submitted returns the total accepted submissions across all levels.
func (s Stats) Submitted() uint64 {
	return s.SubmittedLow + s.SubmittedNormal + s.SubmittedHigh
}

// Stats returns a snapshot of the loop's counters.
func (l *Loop) Stats() Stats {
	return Stats{
		SubmittedLow:    l.submitted[Low].Load(),
		SubmittedNormal: l.submitted[Normal].Load(),
		SubmittedHigh:   l.submitted[High].Load(),
		Executed:        l.executed.Load(),
		Panics:          l.panics.Load(),
		Drained:         l.drained.Load(),
		QueueLen:        l.q.len(),
	}
}

// ResetStats zeroes the counters. Queue length is live state and is
// unaffected.
func (l *Loop) ResetStats() {
	for i := range l.submitted {
		l.submitted[i].Store(0)
	}
	l.executed.Store(0)
	l.panics.Store(0)
	l.drained.Store(0)
}
