package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dshills/uiloop/future"
	"github.com/dshills/uiloop/loop"
	"github.com/dshills/uiloop/mainloop"
)

// stubTarget is a controllable Target: Owns answers a fixed value and
// Submit records closures without running them. Tests drive queued
// closures explicitly with runAll, standing in for the target's own
// goroutine.
type stubTarget struct {
	owns      bool
	submitErr error

	ownsCalls atomic.Int32

	mu         sync.Mutex
	priorities []Priority
	tasks      []loop.Task
}

func (s *stubTarget) Owns(ctx context.Context) bool {
	s.ownsCalls.Add(1)
	return s.owns
}

func (s *stubTarget) Submit(p Priority, task loop.Task) error {
	if s.submitErr != nil {
		return s.submitErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priorities = append(s.priorities, p)
	s.tasks = append(s.tasks, task)
	return nil
}

// runAll executes every queued closure in submission order.
func (s *stubTarget) runAll(ctx context.Context) {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, task := range tasks {
		task(ctx)
	}
}

func (s *stubTarget) submitted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.priorities)
}

// mustPanic asserts that fn panics with a message containing want.
func mustPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("call did not panic")
		}
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, want) {
			t.Fatalf("panic = %v, want message containing %q", r, want)
		}
	}()
	fn()
}

func TestWithPriority_ForwardedVerbatim(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want Priority
	}{
		{"default", nil, Normal},
		{"low", []Option{WithPriority(Low)}, Low},
		{"normal", []Option{WithPriority(Normal)}, Normal},
		{"high", []Option{WithPriority(High)}, High},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &stubTarget{owns: false}
			Run(context.Background(), st, func(context.Context) error { return nil }, tt.opts...)

			st.mu.Lock()
			defer st.mu.Unlock()
			if len(st.priorities) != 1 {
				t.Fatalf("submissions = %d, want 1", len(st.priorities))
			}
			if st.priorities[0] != tt.want {
				t.Errorf("forwarded priority = %v, want %v", st.priorities[0], tt.want)
			}
		})
	}
}

func TestMain_TargetWithoutRegistration(t *testing.T) {
	mainloop.Register(nil)

	m := Main()
	if m.Owns(context.Background()) {
		t.Error("Main().Owns() = true with no main loop")
	}
	if err := m.Submit(Normal, func(context.Context) {}); !errors.Is(err, ErrNoMainLoop) {
		t.Errorf("Main().Submit() error = %v, want ErrNoMainLoop", err)
	}
}

func TestMain_TargetWithRegistration(t *testing.T) {
	l := loop.New()
	mainloop.Register(l)
	defer mainloop.Register(nil)

	if err := Main().Submit(Normal, func(context.Context) {}); err != nil {
		t.Errorf("Main().Submit() error = %v, want nil", err)
	}
	if l.Len() != 1 {
		t.Errorf("main loop queue length = %d, want 1", l.Len())
	}
}

func TestRun_NoMainLoop(t *testing.T) {
	mainloop.Register(nil)

	f := Run(context.Background(), nil, func(context.Context) error { return nil })
	if !f.Resolved() {
		t.Fatal("handle unresolved, want immediate failure")
	}
	if _, err := f.Get(context.Background()); !errors.Is(err, ErrNoMainLoop) {
		t.Errorf("Get() error = %v, want ErrNoMainLoop", err)
	}
}

func TestRun_NilTargetUsesMainLoop(t *testing.T) {
	l := loop.New()
	mainloop.Register(l)
	defer mainloop.Register(nil)

	f := Run(context.Background(), nil, func(context.Context) error { return nil })
	if f.Resolved() {
		t.Fatal("handle resolved before the main loop ran anything")
	}
	if l.Len() != 1 {
		t.Fatalf("main loop queue length = %d, want 1", l.Len())
	}
}

func TestPanicError_Message(t *testing.T) {
	e := &PanicError{Value: "kaboom"}
	if got := e.Error(); !strings.Contains(got, "kaboom") {
		t.Errorf("Error() = %q, want the panic value in the message", got)
	}
}

func TestPanicError_Unwrap(t *testing.T) {
	inner := errors.New("inner")

	tests := []struct {
		name  string
		value any
		want  error
	}{
		{"error value", inner, inner},
		{"string value", "not an error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &PanicError{Value: tt.value}
			if got := e.Unwrap(); !errors.Is(got, tt.want) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.want)
			}
			if tt.want != nil && !errors.Is(error(e), tt.want) {
				t.Error("errors.Is(PanicError, inner) = false, want true")
			}
		})
	}
}

func TestGetStats(t *testing.T) {
	ResetStats()

	onTarget := &stubTarget{owns: true}
	offTarget := &stubTarget{owns: false}
	ctx := context.Background()

	Run(ctx, onTarget, func(context.Context) error { return nil })
	Run(ctx, onTarget, func(context.Context) error { panic("counted") })
	Run(ctx, offTarget, func(context.Context) error { return nil })

	st := GetStats()
	if st.FastPath != 2 {
		t.Errorf("FastPath = %d, want 2", st.FastPath)
	}
	if st.FastFailures != 1 {
		t.Errorf("FastFailures = %d, want 1", st.FastFailures)
	}
	if st.Submitted != 1 {
		t.Errorf("Submitted = %d, want 1", st.Submitted)
	}
	if st.Panics != 1 {
		t.Errorf("Panics = %d, want 1", st.Panics)
	}

	ResetStats()
	if st := GetStats(); st != (Stats{}) {
		t.Errorf("stats after reset = %+v, want zero", st)
	}
}

func TestStats_SharedAcrossShapes(t *testing.T) {
	ResetStats()

	st := &stubTarget{owns: true}
	ctx := context.Background()

	Call(ctx, st, func(context.Context) (int, error) { return 1, nil })
	CallFuture(ctx, st, func(context.Context) *future.Future[int] {
		return future.Resolved(2)
	})

	if got := GetStats().FastPath; got != 2 {
		t.Errorf("FastPath = %d, want 2", got)
	}
}
