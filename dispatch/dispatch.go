package dispatch

import (
	"context"
	"runtime/debug"

	"github.com/dshills/uiloop/future"
	"github.com/dshills/uiloop/loop"
	"github.com/dshills/uiloop/mainloop"
)

// Target is the capability an execution context exposes to dispatch:
// answering whether the caller is already on it, and accepting a
// fire-and-forget callback at a priority. *loop.Loop satisfies it.
type Target interface {
	// Owns reports whether ctx is already executing on the target.
	Owns(ctx context.Context) bool

	// Submit queues task to run on the target at priority p. It must
	// be safe for concurrent use and must not run task inline.
	Submit(p loop.Priority, task loop.Task) error
}

// The four work shapes. All of them receive a context descended from
// the target's run context when they execute on the slow path, and the
// caller's own context on the fast path.
type (
	// WorkFunc is synchronous work with no result.
	WorkFunc func(ctx context.Context) error

	// ValueFunc is synchronous work producing a value.
	ValueFunc[T any] func(ctx context.Context) (T, error)

	// FutureFunc is asynchronous work with no result: it starts
	// something and returns the future to wait on.
	FutureFunc func(ctx context.Context) *future.Future[future.Unit]

	// ValueFutureFunc is asynchronous work producing a value.
	ValueFutureFunc[T any] func(ctx context.Context) *future.Future[T]
)

// Option adjusts a single dispatch call.
type Option func(*callOptions)

type callOptions struct {
	priority Priority
}

// WithPriority sets the queue priority used on the slow path. The
// value is forwarded verbatim to the target's Submit. Default Normal.
func WithPriority(p Priority) Option {
	return func(co *callOptions) {
		co.priority = p
	}
}

func applyOptions(opts []Option) callOptions {
	co := callOptions{priority: Normal}
	for _, opt := range opts {
		opt(&co)
	}
	return co
}

// Main returns a Target standing for whatever main loop is registered
// at the moment of each call. Passing it is equivalent to passing a
// nil target.
func Main() Target {
	return mainTarget{}
}

type mainTarget struct{}

func (mainTarget) Owns(ctx context.Context) bool {
	if m := mainloop.Main(); m != nil {
		return m.Owns(ctx)
	}
	return false
}

func (mainTarget) Submit(p Priority, task loop.Task) error {
	if m := mainloop.Main(); m != nil {
		return m.Submit(p, task)
	}
	return ErrNoMainLoop
}

// resolveTarget substitutes the registered main loop for a nil target.
func resolveTarget(t Target) (Target, error) {
	if t != nil {
		return t, nil
	}
	if m := mainloop.Main(); m != nil {
		return m, nil
	}
	return nil, ErrNoMainLoop
}

// capturePanic converts a recovered panic into a PanicError stored in
// *errp, so a panicking work function fails its handle instead of
// unwinding through the dispatcher or the target's loop.
func capturePanic(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	perr := &PanicError{Value: r, Stack: debug.Stack()}
	panicsSeen.Add(1)
	logger().Error().
		Interface("panic", r).
		Bytes("stack", perr.Stack).
		Msg("work function panic captured")
	*errp = perr
}

// submitOrFail queues task on t at priority p; a submission error
// resolves out as failed since the closure will never run.
func submitOrFail[T any](t Target, p Priority, out *future.Future[T], task loop.Task) {
	if err := t.Submit(p, task); err != nil {
		out.Fail(err)
		return
	}
	submissions.Add(1)
}

// resolve completes out with v, or fails it when err is non-nil.
func resolve[T any](out *future.Future[T], v T, err error) {
	if err != nil {
		out.Fail(err)
		return
	}
	out.Complete(v)
}
