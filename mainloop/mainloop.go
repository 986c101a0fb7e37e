// Package mainloop tracks the process's main loop: the execution
// context that owns the primary UI surface. Dispatch calls that name
// no target fall back to the loop registered here.
package mainloop

import (
	"context"
	"sync/atomic"

	"github.com/dshills/uiloop/loop"
)

// registered holds the current main loop.
var registered atomic.Pointer[loop.Loop]

// Register makes l the process's main loop. A later registration
// replaces an earlier one; Register(nil) clears.
func Register(l *loop.Loop) {
	registered.Store(l)
}

// Main returns the registered main loop, or nil when there is none.
func Main() *loop.Loop {
	return registered.Load()
}

// RunMain builds a loop pinned to the calling goroutine's OS thread,
// registers it as the main loop, and runs it here until the loop stops
// or ctx is cancelled. Intended to be called from func main on the
// main goroutine, before anything that dispatches to the main loop
// starts. The registration is cleared when RunMain returns, unless
// something else has replaced it in the meantime.
func RunMain(ctx context.Context, opts ...loop.Option) error {
	all := append([]loop.Option{
		loop.WithName("main"),
		loop.WithLockOSThread(),
	}, opts...)

	l := loop.New(all...)
	Register(l)
	defer registered.CompareAndSwap(l, nil)

	return l.Run(ctx)
}
