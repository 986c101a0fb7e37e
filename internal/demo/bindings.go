package demo

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/uiloop/future"
	"github.com/dshills/uiloop/luahost"
	"github.com/dshills/uiloop/surface"
)

// registerBindings exposes the drawing API to Lua. Registration is
// queued on the script loop ahead of any script, so every script sees
// the globals. The handle is dropped: SetGlobal cannot fail, and
// waiting here would stall startup on a loop that may not be draining
// yet.
func (a *App) registerBindings(ctx context.Context, host *luahost.Host, surf *surface.Surface) {
	host.Do(ctx, func(L *lua.LState) error {
		L.SetGlobal("draw", L.NewFunction(a.luaDraw(surf)))
		L.SetGlobal("clear", L.NewFunction(a.luaClear(surf)))
		L.SetGlobal("show", L.NewFunction(a.luaShow(surf)))
		L.SetGlobal("size", L.NewFunction(a.luaSize(surf)))
		L.SetGlobal("sleep", L.NewFunction(luaSleep))
		L.SetGlobal("log", L.NewFunction(a.luaLog))
		return nil
	})
}

// awaitDraw blocks the script on a drawing handle and raises a Lua
// error if the main loop rejected it. Scripts run on the Lua loop and
// the main loop never waits on scripts, so blocking here cannot cycle.
func awaitDraw(L *lua.LState, name string, f *future.Future[future.Unit]) {
	if _, err := f.Get(context.Background()); err != nil {
		L.RaiseError("%s: %v", name, err)
	}
}

// luaDraw is draw(x, y, text): write text at (x, y).
func (a *App) luaDraw(surf *surface.Surface) lua.LGFunction {
	return func(L *lua.LState) int {
		x := L.CheckInt(1)
		y := L.CheckInt(2)
		text := L.CheckString(3)

		awaitDraw(L, "draw", surf.Update(context.Background(), func(sc tcell.Screen) {
			drawString(sc, x, y, tcell.StyleDefault, text)
		}))
		return 0
	}
}

// luaClear is clear(): erase the screen.
func (a *App) luaClear(surf *surface.Surface) lua.LGFunction {
	return func(L *lua.LState) int {
		awaitDraw(L, "clear", surf.Update(context.Background(), func(sc tcell.Screen) {
			sc.Clear()
		}))
		return 0
	}
}

// luaShow is show(): present everything drawn so far.
func (a *App) luaShow(surf *surface.Surface) lua.LGFunction {
	return func(L *lua.LState) int {
		awaitDraw(L, "show", surf.Update(context.Background(), func(sc tcell.Screen) {
			sc.Show()
		}))
		return 0
	}
}

// luaSize is size() -> w, h.
func (a *App) luaSize(surf *surface.Surface) lua.LGFunction {
	return func(L *lua.LState) int {
		var w, h int
		awaitDraw(L, "size", surf.Update(context.Background(), func(sc tcell.Screen) {
			w, h = sc.Size()
		}))
		L.Push(lua.LNumber(w))
		L.Push(lua.LNumber(h))
		return 2
	}
}

// luaSleep is sleep(ms): pause the script.
func luaSleep(L *lua.LState) int {
	time.Sleep(time.Duration(L.CheckInt(1)) * time.Millisecond)
	return 0
}

// luaLog is log(msg): write msg to the application log.
func (a *App) luaLog(L *lua.LState) int {
	a.log.Info().Str("source", "script").Msg(L.CheckString(1))
	return 0
}
