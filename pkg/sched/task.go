package sched

import (
	"container/heap"
	"time"
)

// Lifetime reports whether the thing a task acts on still exists.
type Lifetime interface {
	Alive() bool
}

// LifetimeFunc adapts a function to Lifetime.
type LifetimeFunc func() bool

// Alive implements Lifetime.
func (f LifetimeFunc) Alive() bool { return f() }

// Task is a scheduled callback.
type Task struct {
	seq   uint64
	due   time.Time
	name  string
	owner Lifetime
	fn    func()
	loop  *Loop

	index     int
	cancelled bool
	done      bool
}

// Name returns the task name given with Named, or "" if none.
func (t *Task) Name() string { return t.name }

// Due returns the time the task is scheduled to run.
func (t *Task) Due() time.Time { return t.due }

// Cancel stops the task from running. Cancelling a task that already ran or
// was already cancelled is a no-op.
func (t *Task) Cancel() {
	if t == nil || t.loop == nil {
		return
	}
	l := t.loop
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.done || t.cancelled {
		return
	}
	t.cancelled = true
	if t.index >= 0 {
		heap.Remove(&l.tasks, t.index)
	}
}

// Pending reports whether the task is still waiting to run.
func (t *Task) Pending() bool {
	if t == nil || t.loop == nil {
		return false
	}
	t.loop.mu.Lock()
	defer t.loop.mu.Unlock()
	return !t.done && !t.cancelled
}

// TaskOption configures a task at scheduling time.
type TaskOption func(*Task)

// Bind ties the task to a Lifetime. The task is dropped if the Lifetime is
// no longer alive when the task comes due.
func Bind(owner Lifetime) TaskOption {
	return func(t *Task) {
		t.owner = owner
	}
}

// Named labels the task for logs and telemetry.
func Named(name string) TaskOption {
	return func(t *Task) {
		t.name = name
	}
}

// taskHeap orders tasks by due time, then by scheduling order.
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
