package sched

import (
	"container/heap"
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrStopped is returned by Run after Stop and by Post on a stopped loop.
	ErrStopped = errors.New("sched: loop stopped")

	// ErrQueueFull is returned by Post when the dispatch queue is full.
	ErrQueueFull = errors.New("sched: dispatch queue full")
)

// DefaultQueueSize is the dispatch queue capacity used when none is given.
const DefaultQueueSize = 256

// Loop is a single-threaded cooperative scheduler.
type Loop struct {
	mu      sync.Mutex
	tasks   taskHeap
	seq     uint64
	manual  bool
	virtNow time.Time

	dispatchCh chan func()
	wake       chan struct{}
	done       chan struct{}
	stopped    atomic.Bool

	logger *zap.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithQueueSize sets the capacity of the Post queue.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.dispatchCh = make(chan func(), n)
		}
	}
}

// New creates a real-time loop. Call Run to start it.
func New(opts ...Option) *Loop {
	return newLoop(false, time.Time{}, opts)
}

// NewManual creates a loop on a virtual clock starting at start.
// Time only moves when Advance or Drain is called. A manual loop must be
// driven from a single goroutine.
func NewManual(start time.Time, opts ...Option) *Loop {
	return newLoop(true, start, opts)
}

func newLoop(manual bool, start time.Time, opts []Option) *Loop {
	l := &Loop{
		manual:     manual,
		virtNow:    start,
		dispatchCh: make(chan func(), DefaultQueueSize),
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("sched")
	return l
}

// Manual reports whether the loop runs on a virtual clock.
func (l *Loop) Manual() bool { return l.manual }

// Now returns the loop's current time.
func (l *Loop) Now() time.Time {
	if !l.manual {
		return time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.virtNow
}

// After schedules fn to run once, d from now.
func (l *Loop) After(d time.Duration, fn func(), opts ...TaskOption) *Task {
	if d < 0 {
		d = 0
	}
	t := &Task{fn: fn, loop: l, index: -1}
	for _, opt := range opts {
		opt(t)
	}

	l.mu.Lock()
	now := l.virtNow
	if !l.manual {
		now = time.Now()
	}
	l.seq++
	t.seq = l.seq
	t.due = now.Add(d)
	heap.Push(&l.tasks, t)
	l.mu.Unlock()

	l.signal()
	return t
}

// Pending returns the number of tasks waiting to run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tasks.Len()
}

// NextDue returns the due time of the earliest pending task.
func (l *Loop) NextDue() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tasks.Len() == 0 {
		return time.Time{}, false
	}
	return l.tasks[0].due, true
}

// CancelAll drops every pending task.
func (l *Loop) CancelAll() int {
	l.mu.Lock()
	n := l.tasks.Len()
	for _, t := range l.tasks {
		t.cancelled = true
		t.index = -1
	}
	l.tasks = nil
	l.mu.Unlock()

	if n > 0 {
		l.logger.Debug("cancelled pending tasks", zap.Int("count", n))
	}
	return n
}

// Post queues fn to run on the loop. It is safe to call from any goroutine.
// On a manual loop fn runs immediately on the caller's goroutine.
func (l *Loop) Post(fn func()) error {
	if l.stopped.Load() {
		return ErrStopped
	}
	if l.manual {
		l.safeRun("post", fn)
		return nil
	}
	select {
	case l.dispatchCh <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	default:
		l.logger.Warn("dispatch queue full, discarding callback")
		return ErrQueueFull
	}
}

// Advance moves a manual loop's clock forward by d, running every task that
// comes due on the way, including tasks scheduled by those tasks. It returns
// the number of tasks run.
func (l *Loop) Advance(d time.Duration) int {
	if !l.manual {
		panic("sched: Advance called on a real-time loop")
	}
	l.mu.Lock()
	target := l.virtNow.Add(d)
	l.mu.Unlock()

	ran := l.runUntil(target, true)

	l.mu.Lock()
	if l.virtNow.Before(target) {
		l.virtNow = target
	}
	l.mu.Unlock()
	return ran
}

// Drain advances a manual loop until no tasks are pending or max has
// elapsed, whichever comes first. It returns the number of tasks run.
func (l *Loop) Drain(max time.Duration) int {
	if !l.manual {
		panic("sched: Drain called on a real-time loop")
	}
	l.mu.Lock()
	limit := l.virtNow.Add(max)
	l.mu.Unlock()

	ran := 0
	for {
		due, ok := l.NextDue()
		if !ok || due.After(limit) {
			return ran
		}
		ran += l.Advance(due.Sub(l.Now()))
	}
}

// Run drives a real-time loop until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	if l.manual {
		panic("sched: Run called on a manual loop")
	}
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		wait, ok := l.untilNext()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		var timerC <-chan time.Time
		if ok {
			timer.Reset(wait)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return ErrStopped
		case fn := <-l.dispatchCh:
			l.safeRun("post", fn)
		case <-l.wake:
		case <-timerC:
			l.runUntil(time.Now(), false)
		}
	}
}

// Stop ends Run and drops pending tasks. It is safe to call more than once.
func (l *Loop) Stop() {
	if l.stopped.Swap(true) {
		return
	}
	close(l.done)
	l.CancelAll()
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) untilNext() (time.Duration, bool) {
	due, ok := l.NextDue()
	if !ok {
		return 0, false
	}
	wait := time.Until(due)
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

// runUntil runs every task due at or before target, in due order.
func (l *Loop) runUntil(target time.Time, moveClock bool) int {
	ran := 0
	for {
		l.mu.Lock()
		if l.tasks.Len() == 0 || l.tasks[0].due.After(target) {
			l.mu.Unlock()
			return ran
		}
		t := heap.Pop(&l.tasks).(*Task)
		t.done = true
		if moveClock && t.due.After(l.virtNow) {
			l.virtNow = t.due
		}
		l.mu.Unlock()

		if t.owner != nil && !t.owner.Alive() {
			l.logger.Debug("dropped task for released owner", zap.String("task", t.name))
			continue
		}
		l.safeRun(t.name, t.fn)
		ran++
	}
}

func (l *Loop) safeRun(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked",
				zap.String("task", name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	fn()
}

func (l *Loop) signal() {
	if l.manual {
		return
	}
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
