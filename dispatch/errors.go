package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel errors for the dispatch package. Both surface through the
// returned handle, never as panics.
var (
	// ErrNilFuture is the failure recorded when asynchronous work
	// returns a nil inner future instead of one to wait on.
	ErrNilFuture = errors.New("dispatch: the future returned by the work function must not be nil")

	// ErrNoMainLoop is the failure recorded when a call names no
	// target and no main loop is registered.
	ErrNoMainLoop = errors.New("dispatch: no main loop registered")
)

// PanicError is the failure recorded when a work function panics. It
// preserves the panic value and the stack at the point of the panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("dispatch: work function panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error, so
// errors.Is and errors.As see through the capture.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
