package future

import (
	"context"
	"sync/atomic"
)

// Future is a handle to the eventual outcome of one unit of work:
// a value of type T on success, an error on failure. It resolves
// exactly once. Create futures with New, Resolved, or Failed; the
// zero value is not usable.
type Future[T any] struct {
	done  chan struct{}
	won   atomic.Bool
	value T
	err   error
}

// New returns an unresolved future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future already completed with v.
func Resolved[T any](v T) *Future[T] {
	f := New[T]()
	f.Complete(v)
	return f
}

// Failed returns a future already failed with err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	f.Fail(err)
	return f
}

// Complete resolves the future with v. It reports whether this call won
// the resolution; a false return means the future was already resolved
// and nothing changed.
func (f *Future[T]) Complete(v T) bool {
	if !f.won.CompareAndSwap(false, true) {
		return false
	}
	f.value = v
	close(f.done)
	return true
}

// Fail resolves the future with err, which must be non-nil. It reports
// whether this call won the resolution.
func (f *Future[T]) Fail(err error) bool {
	if err == nil {
		panic("future: Fail called with nil error")
	}
	if !f.won.CompareAndSwap(false, true) {
		return false
	}
	f.err = err
	close(f.done)
	return true
}

// Done returns a channel that is closed when the future resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future resolves or ctx is done. An already
// resolved future returns its outcome regardless of ctx. A context
// error abandons the wait; the future itself is unaffected.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryGet returns the outcome without blocking. The third return is
// false while the future is unresolved.
func (f *Future[T]) TryGet() (T, error, bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// Resolved reports whether the future has resolved.
func (f *Future[T]) Resolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
