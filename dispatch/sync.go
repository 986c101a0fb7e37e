package dispatch

import (
	"context"

	"github.com/dshills/uiloop/future"
)

// Run marshals synchronous no-result work onto target and returns a
// handle that resolves when it has run. On the fast path a successful
// fn yields the shared pre-completed handle. fn must be non-nil.
func Run(ctx context.Context, target Target, fn WorkFunc, opts ...Option) *future.Future[future.Unit] {
	if fn == nil {
		panic("dispatch: nil work function")
	}
	co := applyOptions(opts)

	t, terr := resolveTarget(target)
	if terr != nil {
		return future.Failed[future.Unit](terr)
	}

	if t.Owns(ctx) {
		fastHits.Add(1)
		if err := invokeWork(ctx, fn); err != nil {
			fastFailures.Add(1)
			return future.Failed[future.Unit](err)
		}
		return future.Completed()
	}

	out := future.New[future.Unit]()
	submitOrFail(t, co.priority, out, func(c context.Context) {
		if err := invokeWork(c, fn); err != nil {
			out.Fail(err)
			return
		}
		out.Complete(future.Unit{})
	})
	return out
}

// Call marshals synchronous value-producing work onto target and
// returns a handle carrying the value. fn must be non-nil.
func Call[T any](ctx context.Context, target Target, fn ValueFunc[T], opts ...Option) *future.Future[T] {
	if fn == nil {
		panic("dispatch: nil work function")
	}
	co := applyOptions(opts)

	t, terr := resolveTarget(target)
	if terr != nil {
		return future.Failed[T](terr)
	}

	if t.Owns(ctx) {
		fastHits.Add(1)
		v, err := invokeValue(ctx, fn)
		if err != nil {
			fastFailures.Add(1)
			return future.Failed[T](err)
		}
		return future.Resolved(v)
	}

	out := future.New[T]()
	submitOrFail(t, co.priority, out, func(c context.Context) {
		v, err := invokeValue(c, fn)
		resolve(out, v, err)
	})
	return out
}

// invokeWork runs no-result work under panic capture.
func invokeWork(ctx context.Context, fn WorkFunc) (err error) {
	defer capturePanic(&err)
	return fn(ctx)
}

// invokeValue runs value-producing work under panic capture.
func invokeValue[T any](ctx context.Context, fn ValueFunc[T]) (v T, err error) {
	defer capturePanic(&err)
	return fn(ctx)
}
