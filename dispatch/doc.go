// Package dispatch marshals work onto the goroutine that owns a
// particular execution context and hands back a completion handle.
//
// The caller never needs to know whether it is already on the target:
// dispatch answers that, runs the work inline when it can, queues a
// closure when it cannot, and in both cases returns a future that
// resolves exactly once with the work's result or its failure.
//
// # Entry Points
//
// Four shapes of the same mechanism, split by synchronous versus
// asynchronous work and by whether a value is produced:
//
//   - Run: synchronous, no result
//   - Call: synchronous, typed result
//   - RunFuture: asynchronous, no result
//   - CallFuture: asynchronous, typed result
//
// A nil target means the registered main loop. Work functions must be
// non-nil; a nil one panics immediately, before anything is queued.
//
//	v, err := dispatch.Call(ctx, ui, func(ctx context.Context) (int, error) {
//	    return screen.Size() // runs on the ui loop's goroutine
//	}).Get(ctx)
//
// # Fast Path
//
// When the caller is already on the target (Target.Owns reports true),
// the work runs inline. Successful no-result work reuses a shared
// pre-completed handle instead of allocating one. Asynchronous work is
// invoked inline and its future returned directly, never re-wrapped;
// awaiting it resumes the caller wherever it happens to be, not on the
// target.
//
// # Slow Path
//
// Otherwise one closure is submitted to the target at the call's
// priority and the handle is returned immediately. On the target the
// closure runs the work and resolves the handle. Asynchronous work
// that is still pending is forwarded from a separate goroutine so the
// target's loop is never blocked waiting on it.
//
// # Failure
//
// Work failures never escape as panics and are never thrown at the
// caller: errors returned by the work, panics raised by it (wrapped in
// PanicError), a nil inner future (ErrNilFuture), an unregistered main
// loop (ErrNoMainLoop), and submission failures all resolve the handle
// as failed. The only synchronous panic is the nil work function.
//
// # Priorities
//
// Three levels, re-exported from package loop, forwarded verbatim to
// the target's Submit. They order queue service and nothing else.
//
// # What This Package Does Not Do
//
// No cancellation: once a closure is accepted by a target it runs to
// completion; abandoning a Get only stops waiting. No timeouts, no
// retries, no batching, no coalescing of concurrent calls.
package dispatch
