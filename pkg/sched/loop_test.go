package sched

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestAdvanceRunsTasksInDueOrder(t *testing.T) {
	l := NewManual(epoch)
	var order []string

	l.After(300*time.Millisecond, func() { order = append(order, "c") })
	l.After(100*time.Millisecond, func() { order = append(order, "a") })
	l.After(200*time.Millisecond, func() { order = append(order, "b") })

	assert.Equal(t, 0, l.Advance(50*time.Millisecond))
	assert.Empty(t, order)

	assert.Equal(t, 3, l.Advance(time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, epoch.Add(1050*time.Millisecond), l.Now())
}

func TestSameDueTimeKeepsSchedulingOrder(t *testing.T) {
	l := NewManual(epoch)
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		l.After(time.Second, func() { order = append(order, i) })
	}
	l.Advance(time.Second)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestTasksScheduledDuringAdvanceRunWhenDue(t *testing.T) {
	l := NewManual(epoch)
	var at []time.Duration

	l.After(4*time.Second, func() {
		at = append(at, l.Now().Sub(epoch))
		l.After(300*time.Millisecond, func() {
			at = append(at, l.Now().Sub(epoch))
		})
	})

	l.Advance(4200 * time.Millisecond)
	require.Len(t, at, 1)

	l.Advance(100 * time.Millisecond)
	assert.Equal(t, []time.Duration{4 * time.Second, 4300 * time.Millisecond}, at)
}

func TestCancel(t *testing.T) {
	l := NewManual(epoch)
	ran := false
	task := l.After(time.Second, func() { ran = true })

	assert.True(t, task.Pending())
	task.Cancel()
	task.Cancel()
	assert.False(t, task.Pending())

	l.Advance(2 * time.Second)
	assert.False(t, ran)
	assert.Equal(t, 0, l.Pending())
}

func TestBoundTaskDroppedWhenOwnerReleased(t *testing.T) {
	l := NewManual(epoch)
	alive := true
	ran := 0

	l.After(time.Second, func() { ran++ }, Bind(LifetimeFunc(func() bool { return alive })), Named("bound"))
	l.After(time.Second, func() { ran++ })

	alive = false
	assert.Equal(t, 1, l.Advance(time.Second))
	assert.Equal(t, 1, ran)
}

func TestCancelAll(t *testing.T) {
	l := NewManual(epoch)
	ran := false
	task := l.After(time.Second, func() { ran = true })
	l.After(2*time.Second, func() { ran = true })

	assert.Equal(t, 2, l.CancelAll())
	assert.False(t, task.Pending())
	l.Advance(time.Minute)
	assert.False(t, ran)
}

func TestDrainStopsAtLimit(t *testing.T) {
	l := NewManual(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		l.After(time.Second, tick)
	}
	l.After(time.Second, tick)

	assert.Equal(t, 10, l.Drain(10*time.Second))
	assert.Equal(t, 10, count)
	assert.Equal(t, 1, l.Pending())
}

func TestPanickingTaskDoesNotStopLoop(t *testing.T) {
	l := NewManual(epoch)
	ran := false
	l.After(time.Millisecond, func() { panic("boom") })
	l.After(2*time.Millisecond, func() { ran = true })

	l.Advance(time.Second)
	assert.True(t, ran)
}

func TestManualPostRunsInline(t *testing.T) {
	l := NewManual(epoch)
	ran := false
	require.NoError(t, l.Post(func() { ran = true }))
	assert.True(t, ran)
}

func TestRealLoopRunsPostedWorkAndTimers(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	fired := make(chan struct{})
	var calls atomic.Int32
	require.NoError(t, l.Post(func() {
		calls.Add(1)
		l.After(10*time.Millisecond, func() {
			calls.Add(1)
			close(fired)
		})
	}))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Equal(t, int32(2), calls.Load())

	cancel()
	err := <-errCh
	assert.True(t, errors.Is(err, context.Canceled))
	assert.ErrorIs(t, l.Post(func() {}), ErrStopped)
}

func TestStopEndsRun(t *testing.T) {
	l := New()
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()

	l.After(time.Hour, func() {})
	l.Stop()
	l.Stop()

	assert.ErrorIs(t, <-errCh, ErrStopped)
	assert.Equal(t, 0, l.Pending())
}
