// Package surface binds a tcell terminal screen to an owning loop and
// enforces that every screen mutation happens on that loop's
// goroutine. The guard replaces the usual mutex around the screen:
// instead of serializing callers wherever they are, callers marshal
// their drawing onto the owner.
//
// # Ownership
//
// Methods that touch the screen take a context and fail with
// ErrNotOwner unless it descends from the owner loop's run context.
// Off-loop code uses Update, which dispatches a drawing closure onto
// the owner and returns the completion handle:
//
//	s.Update(ctx, func(sc tcell.Screen) {
//	    sc.SetContent(0, 0, 'X', nil, tcell.StyleDefault)
//	    sc.Show()
//	}).Get(ctx)
//
// # Events
//
// StartEventPump starts a poll goroutine that forwards screen events
// into a buffered channel. The channel closes when the surface does.
//
// # Testing
//
// New accepts an injected screen via WithScreen; tcell's
// SimulationScreen slots in for tests without a real terminal.
package surface
