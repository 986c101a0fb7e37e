// Package future provides a minimal completion handle: a value that is
// resolved exactly once with either a result or an error, and that any
// number of goroutines can wait on.
//
// # Resolution
//
// A Future is created unresolved by New, or already resolved by Resolved
// and Failed. Complete and Fail transition it at most once; whichever
// call wins reports true, every later call reports false and changes
// nothing. There is no way to observe a partially resolved future: once
// Done is closed, the outcome is final and immutable.
//
// # Waiting
//
//	f := future.New[int]()
//	go func() { f.Complete(compute()) }()
//
//	v, err := f.Get(ctx)
//
// Get blocks until the future resolves or ctx is done. A context error
// abandons the wait only; it does not and cannot cancel whatever work
// will eventually resolve the future. Done exposes the underlying
// channel for select composition, and TryGet polls without blocking.
//
// # Unit Futures
//
// Work without a payload uses Future[Unit]. The shared handle returned
// by Completed avoids an allocation for the common "already succeeded
// with nothing to report" case; it is indistinguishable from a fresh
// resolved handle apart from its identity.
package future
