package demo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/uiloop/dispatch"
	"github.com/dshills/uiloop/loop"
	"github.com/dshills/uiloop/luahost"
	"github.com/dshills/uiloop/mainloop"
	"github.com/dshills/uiloop/monitoring"
	"github.com/dshills/uiloop/surface"
)

// App is the demo application. The goroutine that calls Run becomes
// the main loop's owner; a second loop hosts the Lua interpreter, and
// helper goroutines feed events and periodic redraws to both.
type App struct {
	cfg Config
	log zerolog.Logger

	// screen, when set, replaces the real terminal. Tests inject a
	// simulation screen here.
	screen tcell.Screen

	quitOnce sync.Once
}

// NewApp builds the application from a loaded config.
func NewApp(cfg Config, log zerolog.Logger) *App {
	return &App{cfg: cfg, log: log}
}

// SetScreen replaces the terminal screen. Call before Run.
func (a *App) SetScreen(sc tcell.Screen) {
	a.screen = sc
}

// Run wires the loops, surface, Lua host, and monitoring server, then
// services the main loop on the calling goroutine until a quit key,
// script completion, or context cancellation.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := LoadSession(a.cfg.SessionPath)
	sess.Runs++
	sess.LastScript = a.cfg.Script

	main := loop.New(
		loop.WithName("main"),
		loop.WithLockOSThread(),
		loop.WithLogger(a.log),
	)
	mainloop.Register(main)
	defer mainloop.Register(nil)
	dispatch.SetLogger(a.log)

	surfOpts := []surface.Option{surface.WithLogger(a.log)}
	if a.screen != nil {
		surfOpts = append(surfOpts, surface.WithScreen(a.screen))
	}
	surf, err := surface.New(main, surfOpts...)
	if err != nil {
		return err
	}

	luaLoop := loop.New(loop.WithName("lua"), loop.WithLogger(a.log))
	luaRet := make(chan error, 1)
	go func() { luaRet <- luaLoop.Run(ctx) }()

	host := luahost.New(luaLoop, luahost.WithLogger(a.log))
	a.registerBindings(ctx, host, surf)

	var monRet chan error
	if a.cfg.Monitoring.IsEnabled() {
		mon := monitoring.NewServer(monitoring.ServerConfig{
			Port:             a.cfg.Monitoring.Port,
			URLPrefix:        a.cfg.Monitoring.URLPrefix,
			MetricsEnabled:   a.cfg.Monitoring.MetricsEnabled,
			ProfilingEnabled: a.cfg.Monitoring.ProfilingEnabled,
		}, a.log)
		mon.MustRegister(
			monitoring.NewLoopCollector(main, luaLoop),
			monitoring.NewDispatchCollector(),
		)
		monRet = make(chan error, 1)
		go func() { monRet <- mon.Run(ctx) }()
	}

	go a.watchEvents(ctx, surf.StartEventPump(), surf, main, sess)
	go a.redrawLoop(ctx, surf, main, sess)
	if a.cfg.Script != "" {
		go a.runScript(ctx, host, surf, main)
	}

	// First frame. Queued now, drawn the moment Run below starts;
	// waiting on the handle here would deadlock against our own loop.
	surf.Update(ctx, func(sc tcell.Screen) {
		a.drawFrame(sc, main, sess, time.Now())
		sc.Show()
	})

	runErr := main.Run(ctx)

	// Quiet the Lua side first so scripts stop drawing.
	host.Close(context.Background())
	luaLoop.Stop()
	<-luaRet

	// A quit-key shutdown closed the surface on the loop before it
	// drained; a cancelled context may not have. After Run returns
	// this goroutine owns the screen again, so finish it here.
	surf.Finalize()

	cancel()
	if monRet != nil {
		if err := <-monRet; err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn().Err(err).Msg("monitoring server failed")
		}
	}

	if err := sess.Save(); err != nil {
		a.log.Warn().Err(err).Msg("session not saved")
	}

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// quit closes the surface on the still-running loop and then stops it.
// The drain guarantee means the screen is finalized before Run
// returns. Idempotent.
func (a *App) quit(surf *surface.Surface, main *loop.Loop) {
	a.quitOnce.Do(func() {
		surf.Close(context.Background())
		main.Stop()
	})
}

// watchEvents consumes the surface's event pump: quit keys stop the
// app, resizes repaint and are remembered in the session.
func (a *App) watchEvents(ctx context.Context, events <-chan tcell.Event, surf *surface.Surface, main *loop.Loop, sess *Session) {
	for {
		select {
		case <-ctx.Done():
			a.quit(surf, main)
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch tev := ev.(type) {
			case *tcell.EventKey:
				if isQuitKey(tev) {
					a.quit(surf, main)
					return
				}
			case *tcell.EventResize:
				w, h := tev.Size()
				sess.SetSize(w, h)
				surf.Update(ctx, func(sc tcell.Screen) {
					sc.Sync()
				})
			}
		}
	}
}

// isQuitKey reports whether the key ends the app: q, Esc, or Ctrl-C.
func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// redrawLoop repaints the status area on every tick until the surface
// or the context goes away.
func (a *App) redrawLoop(ctx context.Context, surf *surface.Surface, main *loop.Loop, sess *Session) {
	iv := a.cfg.TickInterval
	if iv <= 0 {
		iv = time.Second
	}
	t := time.NewTicker(iv)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			f := surf.Update(ctx, func(sc tcell.Screen) {
				a.drawFrame(sc, main, sess, now)
				sc.Show()
			})
			if _, err := f.Get(ctx); err != nil {
				switch {
				case ctx.Err() != nil,
					errors.Is(err, surface.ErrClosed),
					errors.Is(err, loop.ErrLoopClosed):
					return
				default:
					a.log.Warn().Err(err).Msg("redraw failed")
				}
			}
		}
	}
}

// runScript executes the configured script on the Lua host and quits
// when it finishes.
func (a *App) runScript(ctx context.Context, host *luahost.Host, surf *surface.Surface, main *loop.Loop) {
	if _, err := host.ExecFile(ctx, a.cfg.Script).Get(ctx); err != nil {
		a.log.Error().Err(err).Str("script", a.cfg.Script).Msg("script failed")
	} else {
		a.log.Info().Str("script", a.cfg.Script).Msg("script finished")
	}
	a.quit(surf, main)
}

// drawFrame paints the status lines. Runs on the main loop.
func (a *App) drawFrame(sc tcell.Screen, main *loop.Loop, sess *Session, now time.Time) {
	head := tcell.StyleDefault.Bold(true)
	dim := tcell.StyleDefault.Dim(true)

	ls := main.Stats()
	ds := dispatch.GetStats()

	drawLine(sc, 0, head, "uiloop demo")
	drawLine(sc, 1, tcell.StyleDefault, now.Format("15:04:05"))
	drawLine(sc, 2, tcell.StyleDefault, fmt.Sprintf("main loop: %d executed, %d queued", ls.Executed, ls.QueueLen))
	drawLine(sc, 3, tcell.StyleDefault, fmt.Sprintf("dispatch: %d inline, %d submitted", ds.FastPath, ds.Submitted))
	drawLine(sc, 4, tcell.StyleDefault, fmt.Sprintf("session runs: %d", sess.Runs))
	drawLine(sc, 5, dim, "q, Esc, or Ctrl-C quits")
}

// drawString writes text starting at (x, y).
func drawString(sc tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		sc.SetContent(x+i, y, r, nil, style)
	}
}

// drawLine writes text at row y and blanks the rest of the row, so
// stale characters from a previous frame cannot survive.
func drawLine(sc tcell.Screen, y int, style tcell.Style, text string) {
	w, _ := sc.Size()
	runes := []rune(text)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		sc.SetContent(x, y, r, nil, style)
	}
}
