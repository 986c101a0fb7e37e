package dispatch

import (
	"context"

	"github.com/dshills/uiloop/future"
)

// RunFuture marshals asynchronous no-result work onto target: fn runs
// there to start the operation, and the handle resolves when the
// future fn returned does. It is the Unit instantiation of CallFuture.
func RunFuture(ctx context.Context, target Target, fn FutureFunc, opts ...Option) *future.Future[future.Unit] {
	if fn == nil {
		panic("dispatch: nil work function")
	}
	return CallFuture(ctx, target, ValueFutureFunc[future.Unit](fn), opts...)
}

// CallFuture marshals asynchronous value-producing work onto target.
// fn runs on the target to start the operation and returns the inner
// future; the returned handle resolves with that future's outcome. On
// the fast path the inner future is returned directly, never wrapped,
// so awaiting it resumes the caller wherever it already is. A nil
// inner future fails the handle with ErrNilFuture on both paths. fn
// must be non-nil.
func CallFuture[T any](ctx context.Context, target Target, fn ValueFutureFunc[T], opts ...Option) *future.Future[T] {
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
		inner, err := invokeFuture(ctx, fn)
		if err != nil {
			fastFailures.Add(1)
			return future.Failed[T](err)
		}
		if inner == nil {
			fastFailures.Add(1)
			return future.Failed[T](ErrNilFuture)
		}
		return inner
	}

	out := future.New[T]()
	submitOrFail(t, co.priority, out, func(c context.Context) {
		inner, err := invokeFuture(c, fn)
		if err != nil {
			out.Fail(err)
			return
		}
		if inner == nil {
			out.Fail(ErrNilFuture)
			return
		}
		forward(inner, out)
	})
	return out
}

// invokeFuture runs future-returning work under panic capture.
func invokeFuture[T any](ctx context.Context, fn ValueFutureFunc[T]) (f *future.Future[T], err error) {
	defer capturePanic(&err)
	return fn(ctx), nil
}

// forward resolves out from inner: inline when inner is already done,
// otherwise from its own goroutine so the target's loop does not sit
// blocked behind a pending inner operation.
func forward[T any](inner, out *future.Future[T]) {
	if v, err, ok := inner.TryGet(); ok {
		resolve(out, v, err)
		return
	}
	go func() {
		v, err := inner.Get(context.Background())
		resolve(out, v, err)
	}()
}
