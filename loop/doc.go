// Package loop provides a serial event loop that turns one goroutine
// into an execution context: a dispatch target that owns a queue and
// runs submitted tasks one at a time, in order, on that goroutine.
//
// A loop exists so that a single-owner resource (a terminal screen, an
// embedded interpreter state) can be confined to one goroutine while
// any number of other goroutines marshal work onto it.
//
// # Ownership
//
// The goroutine that calls Run becomes the owner. Every task receives a
// context descended from the run context that carries the loop's
// identity; Owns and FromContext recover it. This is how callers ask
// "am I already on the target?" without goroutine introspection:
//
//	l := loop.New(loop.WithName("ui"))
//	go l.Run(ctx)
//
//	l.Submit(loop.Normal, func(ctx context.Context) {
//	    l.Owns(ctx) // true: running on the owner goroutine
//	})
//	l.Owns(ctx) // false: some other goroutine
//
// # Priorities
//
// Submit accepts three priority levels. The loop services High before
// Normal before Low; within one level, tasks run in strict submission
// order. Priorities do not preempt a task already running.
//
// # Shutdown
//
// Stop (or cancellation of the run context) closes intake: further
// Submit calls fail with ErrLoopClosed. Every task accepted before
// that point still runs, on the owner goroutine, before Run returns.
// Nothing is dropped and nothing can be retracted once accepted.
//
// # Panics
//
// A task that panics is recovered, logged, and counted; it never takes
// the owner goroutine down with it.
package loop
