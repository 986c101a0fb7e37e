package loop

import "errors"

// Sentinel errors for the loop package.
var (
	// ErrAlreadyRunning is returned by Run while another Run is active.
	ErrAlreadyRunning = errors.New("loop is already running")

	// ErrLoopClosed is returned when submitting to, or re-running, a
	// loop whose intake has been closed by Stop or run-context
	// cancellation.
	ErrLoopClosed = errors.New("loop is closed")

	// ErrQueueFull is returned by Submit when a bounded queue is at
	// capacity.
	ErrQueueFull = errors.New("loop queue is full")

	// ErrNilTask is returned by Submit for a nil task.
	ErrNilTask = errors.New("nil task")
)
