// Package luahost runs a gopher-lua interpreter owned by a loop.
//
// gopher-lua's LState is not safe for concurrent use: every operation
// on a state must happen on one goroutine. Instead of wrapping the
// state in a mutex, Host ties it to a loop and marshals every
// operation onto the owner through dispatch. The host holds no lock;
// serialization falls out of the loop.
//
// # Operations
//
// All operations are safe from any goroutine and return a future
// resolved on the owner. On the owner itself they run inline. Lua
// errors travel through the handle's failure with *lua.ApiError
// preserved, so errors.As recovers the Lua-level detail:
//
//	f := host.Exec(ctx, `error("boom")`)
//	if _, err := f.Get(ctx); err != nil {
//		var apiErr *lua.ApiError
//		if errors.As(err, &apiErr) {
//			// apiErr.Object is the Lua error value
//		}
//	}
//
// # Lifecycle
//
// Close finalizes the state on the owner loop; operations accepted
// after Close fail with ErrHostClosed. Because the close itself is a
// loop task, no operation can observe a half-closed state.
package luahost
