package luahost

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/uiloop/future"
	"github.com/dshills/uiloop/loop"
)

// startHost builds a host on a running loop. Both are torn down when
// the test ends.
func startHost(t *testing.T, opts ...Option) *Host {
	t.Helper()

	l := loop.New(loop.WithName("lua"))
	ret := make(chan error, 1)
	go func() { ret <- l.Run(context.Background()) }()
	t.Cleanup(func() {
		l.Stop()
		<-ret
	})

	h := New(l, opts...)
	t.Cleanup(func() { h.Close(context.Background()) })
	return h
}

// await waits for a handle with a test-scoped timeout.
func await[T any](t *testing.T, f *future.Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return f.Get(ctx)
}

func TestNew_NilOwner_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New(nil) did not panic")
		}
	}()
	New(nil)
}

func TestHost_Exec(t *testing.T) {
	h := startHost(t)
	ctx := context.Background()

	if _, err := await(t, h.Exec(ctx, `answer = 6 * 7`)); err != nil {
		t.Fatalf("Exec() failed: %v", err)
	}

	v, err := await(t, h.Eval(ctx, `return answer`))
	if err != nil {
		t.Fatalf("Eval() failed: %v", err)
	}
	if n, ok := v.(lua.LNumber); !ok || n != 42 {
		t.Errorf("answer = %v, want 42", v)
	}
}

func TestHost_Exec_LuaError(t *testing.T) {
	h := startHost(t)

	_, err := await(t, h.Exec(context.Background(), `error("kaboom")`))
	if err == nil {
		t.Fatal("Exec() of a failing chunk succeeded")
	}
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		t.Errorf("error type = %T, want *lua.ApiError", err)
	}
	if !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("error = %v, want the Lua message in it", err)
	}
}

func TestHost_Exec_SyntaxError(t *testing.T) {
	h := startHost(t)

	_, err := await(t, h.Exec(context.Background(), `this is not lua`))
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		t.Errorf("error = %v (%T), want *lua.ApiError", err, err)
	}
}

func TestHost_Eval(t *testing.T) {
	h := startHost(t)

	tests := []struct {
		name string
		src  string
		want lua.LValue
	}{
		{"number", `return 1 + 2`, lua.LNumber(3)},
		{"string", `return "hi"`, lua.LString("hi")},
		{"boolean", `return 2 > 1`, lua.LTrue},
		{"first of many", `return 1, 2`, lua.LNumber(1)},
		{"no result", `local x = 1`, lua.LNil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := await(t, h.Eval(context.Background(), tt.src))
			if err != nil {
				t.Fatalf("Eval(%q) error = %v", tt.src, err)
			}
			if v != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.src, v, tt.want)
			}
		})
	}
}

func TestHost_CallGlobal(t *testing.T) {
	h := startHost(t)
	ctx := context.Background()

	if _, err := await(t, h.Exec(ctx, `function add(a, b) return a + b end`)); err != nil {
		t.Fatalf("Exec() failed: %v", err)
	}

	v, err := await(t, h.CallGlobal(ctx, "add", lua.LNumber(40), lua.LNumber(2)))
	if err != nil {
		t.Fatalf("CallGlobal() error = %v", err)
	}
	if n, ok := v.(lua.LNumber); !ok || n != 42 {
		t.Errorf("add(40, 2) = %v, want 42", v)
	}
}

func TestHost_CallGlobal_Missing(t *testing.T) {
	h := startHost(t)

	_, err := await(t, h.CallGlobal(context.Background(), "nope"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("CallGlobal(nope) error = %v, want a not-found error", err)
	}
}

func TestHost_CallGlobal_NotAFunction(t *testing.T) {
	h := startHost(t)
	ctx := context.Background()

	if _, err := await(t, h.SetGlobal(ctx, "x", lua.LNumber(1))); err != nil {
		t.Fatalf("SetGlobal() failed: %v", err)
	}

	_, err := await(t, h.CallGlobal(ctx, "x"))
	if err == nil || !strings.Contains(err.Error(), "not a function") {
		t.Errorf("CallGlobal(x) error = %v, want a not-a-function error", err)
	}
}

func TestHost_RegisterFunc(t *testing.T) {
	h := startHost(t)
	ctx := context.Background()

	double := func(L *lua.LState) int {
		L.Push(lua.LNumber(L.CheckNumber(1) * 2))
		return 1
	}
	if _, err := await(t, h.RegisterFunc(ctx, "double", double)); err != nil {
		t.Fatalf("RegisterFunc() failed: %v", err)
	}

	v, err := await(t, h.Eval(ctx, `return double(21)`))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if n, ok := v.(lua.LNumber); !ok || n != 42 {
		t.Errorf("double(21) = %v, want 42", v)
	}
}

func TestHost_Do(t *testing.T) {
	h := startHost(t)
	ctx := context.Background()

	f := h.Do(ctx, func(L *lua.LState) error {
		L.SetGlobal("direct", lua.LString("ok"))
		return nil
	})
	if _, err := await(t, f); err != nil {
		t.Fatalf("Do() failed: %v", err)
	}

	v, err := await(t, h.Eval(ctx, `return direct`))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if v != lua.LString("ok") {
		t.Errorf("direct = %v, want %q", v, "ok")
	}
}

func TestHost_NilFn_Panics(t *testing.T) {
	h := startHost(t)

	tests := []struct {
		name string
		call func()
	}{
		{"RegisterFunc", func() { h.RegisterFunc(context.Background(), "f", nil) }},
		{"Do", func() { h.Do(context.Background(), nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("nil callback did not panic")
				}
			}()
			tt.call()
		})
	}
}

func TestHost_WithoutLibs(t *testing.T) {
	h := startHost(t, WithoutLibs())

	// With no libraries open even print is missing, so calling it
	// raises a runtime error.
	_, err := await(t, h.Exec(context.Background(), `print("hi")`))
	if err == nil {
		t.Error("Exec() using a library function succeeded without libraries")
	}
}

func TestHost_Close(t *testing.T) {
	h := startHost(t)

	if _, err := await(t, h.Close(context.Background())); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	_, err := await(t, h.Exec(context.Background(), `x = 1`))
	if !errors.Is(err, ErrHostClosed) {
		t.Errorf("Exec() after Close error = %v, want ErrHostClosed", err)
	}

	if f := h.Close(context.Background()); f != future.Completed() {
		t.Error("second Close() did not return the shared completed handle")
	}
}

func TestHost_ConcurrentExec(t *testing.T) {
	h := startHost(t)
	ctx := context.Background()

	if _, err := await(t, h.Exec(ctx, `n = 0`)); err != nil {
		t.Fatalf("Exec() failed: %v", err)
	}

	const goroutines = 8
	const perGoroutine = 25

	// Unsynchronized increments from many goroutines are safe because
	// every chunk runs on the owner goroutine.
	var wg sync.WaitGroup
	handles := make(chan *future.Future[future.Unit], goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				handles <- h.Exec(ctx, `n = n + 1`)
			}
		}()
	}
	wg.Wait()
	close(handles)
	for f := range handles {
		if _, err := await(t, f); err != nil {
			t.Fatalf("Exec() failed: %v", err)
		}
	}

	v, err := await(t, h.Eval(ctx, `return n`))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if n, ok := v.(lua.LNumber); !ok || n != goroutines*perGoroutine {
		t.Errorf("n = %v, want %d", v, goroutines*perGoroutine)
	}
}

func BenchmarkHost_Exec(b *testing.B) {
	l := loop.New()
	ret := make(chan error, 1)
	go func() { ret <- l.Run(context.Background()) }()
	defer func() {
		l.Stop()
		<-ret
	}()

	h := New(l)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Exec(ctx, `x = 1`).Get(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
