package surface

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/uiloop/dispatch"
	"github.com/dshills/uiloop/future"
	"github.com/dshills/uiloop/loop"
)

// Surface is a tcell screen owned by a loop. All screen access goes
// through the owner goroutine; there is no lock around the screen.
type Surface struct {
	// Configuration
	owner    *loop.Loop
	log      zerolog.Logger
	eventBuf int

	// State
	screen   tcell.Screen
	events   chan tcell.Event
	quit     chan struct{}
	pumpOnce sync.Once
	quitOnce sync.Once
	closed   atomic.Bool
	finied   atomic.Bool

	// Stats
	frames  atomic.Uint64
	updates atomic.Uint64
	pumped  atomic.Uint64
}

// Option configures a Surface.
type Option func(*Surface)

// WithScreen injects the screen to wrap instead of allocating a real
// terminal screen. New still initializes it. tcell's SimulationScreen
// slots in here for tests.
func WithScreen(sc tcell.Screen) Option {
	return func(s *Surface) {
		s.screen = sc
	}
}

// WithEventBuffer sets the event channel capacity. Default 64.
func WithEventBuffer(n int) Option {
	return func(s *Surface) {
		if n > 0 {
			s.eventBuf = n
		}
	}
}

// WithLogger sets the surface's logger. The default discards
// everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Surface) {
		s.log = log
	}
}

// New wraps a screen and ties it to its owning loop. Unless WithScreen
// injects one, a real terminal screen is allocated. The screen is
// initialized here with mouse and bracketed paste enabled.
func New(owner *loop.Loop, opts ...Option) (*Surface, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}

	s := &Surface{
		owner:    owner,
		log:      zerolog.Nop(),
		eventBuf: 64,
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.screen == nil {
		sc, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("surface: create screen: %w", err)
		}
		s.screen = sc
	}
	if err := s.screen.Init(); err != nil {
		return nil, fmt.Errorf("surface: init screen: %w", err)
	}
	s.screen.EnableMouse()
	s.screen.EnablePaste()

	s.events = make(chan tcell.Event, s.eventBuf)
	s.log.Debug().Str("loop", owner.Name()).Msg("surface ready")
	return s, nil
}

// guard admits only on-owner, pre-close callers.
func (s *Surface) guard(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if !s.owner.Owns(ctx) {
		return ErrNotOwner
	}
	return nil
}

// SetContent writes one cell. Owner loop only.
func (s *Surface) SetContent(ctx context.Context, x, y int, mainc rune, comb []rune, style tcell.Style) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	s.screen.SetContent(x, y, mainc, comb, style)
	return nil
}

// Fill floods the screen with one cell. Owner loop only.
func (s *Surface) Fill(ctx context.Context, r rune, style tcell.Style) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	s.screen.Fill(r, style)
	return nil
}

// Clear erases the screen. Owner loop only.
func (s *Surface) Clear(ctx context.Context) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	s.screen.Clear()
	return nil
}

// Show presents pending drawing. Owner loop only.
func (s *Surface) Show(ctx context.Context) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	s.screen.Show()
	s.frames.Add(1)
	return nil
}

// Sync forces a full repaint. Owner loop only.
func (s *Surface) Sync(ctx context.Context) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	s.screen.Sync()
	s.frames.Add(1)
	return nil
}

// Size returns the screen dimensions. Owner loop only.
func (s *Surface) Size(ctx context.Context) (int, int, error) {
	if err := s.guard(ctx); err != nil {
		return 0, 0, err
	}
	w, h := s.screen.Size()
	return w, h, nil
}

// ShowCursor places the cursor. Owner loop only.
func (s *Surface) ShowCursor(ctx context.Context, x, y int) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	s.screen.ShowCursor(x, y)
	return nil
}

// HideCursor hides the cursor. Owner loop only.
func (s *Surface) HideCursor(ctx context.Context) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	s.screen.HideCursor()
	return nil
}

// Update marshals a drawing closure onto the owner loop and returns
// its completion handle. This is the entry point for off-loop callers;
// on the owner it simply runs inline. fn must be non-nil.
func (s *Surface) Update(ctx context.Context, fn func(sc tcell.Screen)) *future.Future[future.Unit] {
	if fn == nil {
		panic("surface: nil update function")
	}
	return dispatch.Run(ctx, s.owner, func(context.Context) error {
		if s.closed.Load() {
			return ErrClosed
		}
		fn(s.screen)
		s.updates.Add(1)
		return nil
	})
}

// StartEventPump starts forwarding screen events into the returned
// channel. Safe to call more than once; the pump starts once. The
// channel closes when the surface closes.
func (s *Surface) StartEventPump() <-chan tcell.Event {
	s.pumpOnce.Do(func() {
		go s.pump()
	})
	return s.events
}

// Events returns the event channel without starting the pump.
func (s *Surface) Events() <-chan tcell.Event {
	return s.events
}

// pump polls the screen until Fini interrupts it with a nil event.
func (s *Surface) pump() {
	defer close(s.events)
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		s.pumped.Add(1)
		select {
		case s.events <- ev:
		case <-s.quit:
			return
		}
	}
}

// Close finalizes the screen on the owner loop and shuts the pump
// down. Further draw calls fail with ErrClosed. Idempotent: only the
// first call does the work, later ones return a completed handle.
//
// Close dispatched to a loop that is still running is guaranteed to
// finalize before that loop's Run returns; once the loop has stopped
// the returned handle fails and the caller should use Finalize.
func (s *Surface) Close(ctx context.Context) *future.Future[future.Unit] {
	if !s.closed.CompareAndSwap(false, true) {
		return future.Completed()
	}
	s.quitOnce.Do(func() { close(s.quit) })
	return dispatch.Run(ctx, s.owner, func(context.Context) error {
		s.fini()
		return nil
	})
}

// Finalize closes the surface and finalizes the screen directly, with
// no dispatch. It exists for the goroutine that owned the loop, after
// Run has returned, when a cancellation-triggered drain may have raced
// past a dispatched Close. The screen is finalized at most once
// between Close and Finalize.
func (s *Surface) Finalize() {
	s.closed.Store(true)
	s.quitOnce.Do(func() { close(s.quit) })
	s.pumpOnce.Do(func() {
		// The pump never started, so close its channel for readers.
		close(s.events)
	})
	s.fini()
}

// fini finalizes the wrapped screen exactly once.
func (s *Surface) fini() {
	if !s.finied.CompareAndSwap(false, true) {
		return
	}
	s.screen.Fini()
	s.log.Debug().Str("loop", s.owner.Name()).Msg("surface closed")
}

// Owner returns the owning loop.
func (s *Surface) Owner() *loop.Loop {
	return s.owner
}

// Screen exposes the wrapped screen. Anything done with it must happen
// on the owner loop's goroutine.
func (s *Surface) Screen() tcell.Screen {
	return s.screen
}

// Stats is a point-in-time snapshot of the surface's counters.
type Stats struct {
	// Frames counts Show and Sync presentations.
	Frames uint64

	// Updates counts completed Update closures.
	Updates uint64

	// Events counts events the pump took from the screen.
	Events uint64
}

// Stats returns a snapshot of the surface's counters.
func (s *Surface) Stats() Stats {
	return Stats{
		Frames:  s.frames.Load(),
		Updates: s.updates.Load(),
		Events:  s.pumped.Load(),
	}
}
