package luahost

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/uiloop/dispatch"
	"github.com/dshills/uiloop/future"
	"github.com/dshills/uiloop/loop"
)

// Host owns a Lua state through a loop. Every operation is marshaled
// onto the owner goroutine.
type Host struct {
	// Configuration
	owner *loop.Loop
	log   zerolog.Logger

	// State
	state  *lua.LState
	closed atomic.Bool
}

type config struct {
	skipLibs     bool
	registrySize int
	log          zerolog.Logger
}

// Option configures a Host.
type Option func(*config)

// WithoutLibs skips opening the Lua standard libraries.
func WithoutLibs() Option {
	return func(c *config) { c.skipLibs = true }
}

// WithRegistrySize sets the initial Lua registry size.
func WithRegistrySize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.registrySize = n
		}
	}
}

// WithLogger sets the host's logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) { c.log = log }
}

// New creates a Lua state owned by the given loop. owner must be
// non-nil.
func New(owner *loop.Loop, opts ...Option) *Host {
	if owner == nil {
		panic("luahost: nil owner loop")
	}
	cfg := config{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Host{
		owner: owner,
		log:   cfg.log,
		state: lua.NewState(lua.Options{
			SkipOpenLibs: cfg.skipLibs,
			RegistrySize: cfg.registrySize,
		}),
	}
	h.log.Debug().Str("loop", owner.Name()).Msg("lua host ready")
	return h
}

// Exec runs a chunk of Lua source on the owner loop.
func (h *Host) Exec(ctx context.Context, src string) *future.Future[future.Unit] {
	return dispatch.Run(ctx, h.owner, func(context.Context) error {
		if h.closed.Load() {
			return ErrHostClosed
		}
		return h.state.DoString(src)
	})
}

// ExecFile runs a Lua file on the owner loop.
func (h *Host) ExecFile(ctx context.Context, path string) *future.Future[future.Unit] {
	return dispatch.Run(ctx, h.owner, func(context.Context) error {
		if h.closed.Load() {
			return ErrHostClosed
		}
		return h.state.DoFile(path)
	})
}

// Eval runs a chunk on the owner loop and returns the chunk's first
// return value, LNil when it returns nothing.
func (h *Host) Eval(ctx context.Context, src string) *future.Future[lua.LValue] {
	return dispatch.Call(ctx, h.owner, func(context.Context) (lua.LValue, error) {
		if h.closed.Load() {
			return lua.LNil, ErrHostClosed
		}
		return h.eval(src)
	})
}

// eval runs on the owner loop.
func (h *Host) eval(src string) (lua.LValue, error) {
	top := h.state.GetTop()
	if err := h.state.DoString(src); err != nil {
		return lua.LNil, err
	}
	if h.state.GetTop() == top {
		return lua.LNil, nil
	}
	v := h.state.Get(top + 1)
	h.state.SetTop(top)
	return v, nil
}

// CallGlobal calls a global Lua function by name on the owner loop and
// returns its first result.
func (h *Host) CallGlobal(ctx context.Context, name string, args ...lua.LValue) *future.Future[lua.LValue] {
	return dispatch.Call(ctx, h.owner, func(context.Context) (lua.LValue, error) {
		if h.closed.Load() {
			return lua.LNil, ErrHostClosed
		}
		return h.callGlobal(name, args)
	})
}

// callGlobal runs on the owner loop.
func (h *Host) callGlobal(name string, args []lua.LValue) (lua.LValue, error) {
	fn := h.state.GetGlobal(name)
	if fn == lua.LNil {
		return lua.LNil, fmt.Errorf("luahost: function %q not found", name)
	}
	if fn.Type() != lua.LTFunction {
		return lua.LNil, fmt.Errorf("luahost: %q is not a function (got %s)", name, fn.Type())
	}

	h.state.Push(fn)
	for _, a := range args {
		h.state.Push(a)
	}
	if err := h.state.PCall(len(args), 1, nil); err != nil {
		return lua.LNil, err
	}
	v := h.state.Get(-1)
	h.state.Pop(1)
	return v, nil
}

// SetGlobal sets a global variable on the owner loop.
func (h *Host) SetGlobal(ctx context.Context, name string, v lua.LValue) *future.Future[future.Unit] {
	return dispatch.Run(ctx, h.owner, func(context.Context) error {
		if h.closed.Load() {
			return ErrHostClosed
		}
		h.state.SetGlobal(name, v)
		return nil
	})
}

// RegisterFunc exposes a Go function to Lua as a global. fn must be
// non-nil.
func (h *Host) RegisterFunc(ctx context.Context, name string, fn lua.LGFunction) *future.Future[future.Unit] {
	if fn == nil {
		panic("luahost: nil function")
	}
	return dispatch.Run(ctx, h.owner, func(context.Context) error {
		if h.closed.Load() {
			return ErrHostClosed
		}
		h.state.SetGlobal(name, h.state.NewFunction(fn))
		return nil
	})
}

// Do marshals fn onto the owner loop with exclusive access to the
// state. It is the escape hatch for multi-step work the named
// operations do not cover. fn must be non-nil.
func (h *Host) Do(ctx context.Context, fn func(L *lua.LState) error) *future.Future[future.Unit] {
	if fn == nil {
		panic("luahost: nil function")
	}
	return dispatch.Run(ctx, h.owner, func(context.Context) error {
		if h.closed.Load() {
			return ErrHostClosed
		}
		return fn(h.state)
	})
}

// Close closes the Lua state on the owner loop. Operations after Close
// fail with ErrHostClosed. Idempotent: only the first call does the
// work, later ones return a completed handle.
func (h *Host) Close(ctx context.Context) *future.Future[future.Unit] {
	if !h.closed.CompareAndSwap(false, true) {
		return future.Completed()
	}
	return dispatch.Run(ctx, h.owner, func(context.Context) error {
		h.state.Close()
		h.log.Debug().Str("loop", h.owner.Name()).Msg("lua host closed")
		return nil
	})
}

// Owner returns the owning loop.
func (h *Host) Owner() *loop.Loop {
	return h.owner
}
