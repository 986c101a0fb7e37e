package loop

// Priority orders tasks within a loop's queue. Higher levels are
// serviced first; within one level the queue is strictly FIFO.
type Priority int8

// The three priority levels. They carry no semantics beyond service
// order; there is no preemption and no deadline attached to any level.
const (
	Low Priority = iota
	Normal
	High
)

// numPriorities is the number of queue lanes.
const numPriorities = 3

// String returns the lower-case level name.
func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Normal:
		return "normal"
	case High:
		return "high"
	default:
		return "invalid"
	}
}

// clamp bounds out-of-range values to the nearest valid level.
func (p Priority) clamp() Priority {
	if p < Low {
		return Low
	}
	if p > High {
		return High
	}
	return p
}
