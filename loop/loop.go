package loop

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Task is one unit of work submitted to a loop. The context passed to
// it descends from the run context and carries the loop's identity.
type Task func(ctx context.Context)

// Loop is a serial executor bound to the goroutine that calls Run.
// Construct with New; the zero value is not usable.
type Loop struct {
	// Configuration
	name         string
	queueCap     int
	lockOSThread bool
	log          zerolog.Logger

	// State
	q        *taskQueue
	mu       sync.Mutex // lifecycle transitions
	started  bool
	running  bool
	done     chan struct{}
	stopOnce sync.Once

	// Stats
	submitted [numPriorities]atomic.Uint64
	executed  atomic.Uint64
	panics    atomic.Uint64
	drained   atomic.Uint64
}

// New creates a loop. It accepts submissions immediately; queued tasks
// wait until some goroutine calls Run.
func New(opts ...Option) *Loop {
	l := &Loop{
		name: "loop",
		log:  zerolog.Nop(),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.q = newTaskQueue(l.queueCap)
	return l
}

// Option configures a Loop.
type Option func(*Loop)

// WithName labels the loop in logs, metrics, and Stats.
func WithName(name string) Option {
	return func(l *Loop) {
		if name != "" {
			l.name = name
		}
	}
}

// WithQueueCapacity bounds the queue; Submit returns ErrQueueFull at
// capacity. Zero or negative means unbounded, the default.
func WithQueueCapacity(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queueCap = n
		}
	}
}

// WithLockOSThread pins the owner goroutine to its OS thread for the
// duration of Run. Required when the loop owns a resource with OS
// thread affinity, as most windowing systems have.
func WithLockOSThread() Option {
	return func(l *Loop) {
		l.lockOSThread = true
	}
}

// WithLogger sets the loop's logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loop) {
		l.log = log
	}
}

// Run binds the calling goroutine as the loop's owner and services the
// queue until Stop is called or ctx is cancelled, then drains: every
// task accepted before intake closed still runs, here, before Run
// returns. Run must be called from the goroutine that owns whatever
// resources the loop's tasks touch.
//
// Run returns nil after a Stop-triggered drain, ctx.Err() after a
// cancellation-triggered one, ErrAlreadyRunning while another Run is
// active, and ErrLoopClosed once the loop has run and stopped.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	if l.started {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.started = true
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	if l.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	runCtx := context.WithValue(ctx, loopKey, l)
	l.log.Debug().Str("loop", l.name).Msg("loop running")

	for {
		// Shutdown checks come first so a saturated queue cannot
		// starve them.
		select {
		case <-ctx.Done():
			l.shutdown(runCtx)
			return ctx.Err()
		case <-l.done:
			l.shutdown(runCtx)
			return nil
		default:
		}

		task, ok := l.q.pop()
		if ok {
			l.exec(runCtx, task)
			continue
		}

		select {
		case <-ctx.Done():
			l.shutdown(runCtx)
			return ctx.Err()
		case <-l.done:
			l.shutdown(runCtx)
			return nil
		case <-l.q.wake:
		}
	}
}

// shutdown closes intake and runs everything already accepted.
func (l *Loop) shutdown(ctx context.Context) {
	l.q.close()

	var n uint64
	for {
		task, ok := l.q.pop()
		if !ok {
			break
		}
		l.exec(ctx, task)
		n++
	}
	l.drained.Add(n)
	l.log.Debug().Str("loop", l.name).Uint64("drained", n).Msg("loop stopped")
}

// exec runs one task under panic recovery.
func (l *Loop) exec(ctx context.Context, task Task) {
	l.executed.Add(1)
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			l.log.Error().
				Str("loop", l.name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("task panic recovered")
		}
	}()
	task(ctx)
}

// Submit queues a task at priority p. It is safe from any goroutine,
// never blocks, and never runs the task inline, not even on the owner
// goroutine. Out-of-range priorities are clamped to the nearest level.
func (l *Loop) Submit(p Priority, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	p = p.clamp()
	if err := l.q.push(p, task); err != nil {
		return err
	}
	l.submitted[p].Add(1)
	return nil
}

// Stop closes intake and wakes the owner to drain and return. It is
// idempotent and safe from any goroutine, including from a task on the
// loop itself. Stop does not wait; observe completion through Run's
// return.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.q.close()
		close(l.done)
	})
}

// Owns reports whether ctx is executing on this loop's owner
// goroutine, i.e. descends from the run context.
func (l *Loop) Owns(ctx context.Context) bool {
	return l != nil && FromContext(ctx) == l
}

// Name returns the loop's label.
func (l *Loop) Name() string {
	return l.name
}

// Len returns the number of queued tasks.
func (l *Loop) Len() int {
	return l.q.len()
}

// Running reports whether a Run is currently servicing the queue.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}
