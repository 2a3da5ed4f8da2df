package gesture_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/taskclock/core/gesture"
	"github.com/jrazmi/taskclock/core/gesture/gesturetest"
)

var start = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newMachine(t *testing.T) (*gesture.Machine, *gesturetest.Scheduler, *atomic.Int32) {
	t.Helper()
	sched := gesturetest.New(start)
	var deletes atomic.Int32
	m := gesture.NewMachine(7, sched, gesture.Options{}, func(taskID int64) {
		assert.Equal(t, int64(7), taskID)
		deletes.Add(1)
	})
	return m, sched, &deletes
}

func fire(t *testing.T, m *gesture.Machine, ev gesture.Event, want gesture.State) {
	t.Helper()
	got, err := m.Fire(ev)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestMachine_HoverAndLeave(t *testing.T) {
	m, _, deletes := newMachine(t)

	fire(t, m, gesture.Enter, gesture.Hovered)
	fire(t, m, gesture.Leave, gesture.Idle)
	assert.Zero(t, deletes.Load())
}

func TestMachine_ReleaseBeforeThresholdDoesNotDelete(t *testing.T) {
	m, sched, deletes := newMachine(t)

	fire(t, m, gesture.Enter, gesture.Hovered)
	fire(t, m, gesture.Press, gesture.PressHold)

	sched.Advance(2 * time.Second)
	assert.InDelta(t, 2.0/3.0, m.Progress(), 0.02)

	fire(t, m, gesture.Release, gesture.Hovered)
	assert.Zero(t, m.Progress())
	assert.Zero(t, sched.Pending())

	sched.Advance(5 * time.Second)
	assert.Zero(t, deletes.Load())
	assert.Equal(t, gesture.Hovered, m.State())
}

func TestMachine_FullHoldDeletesExactlyOnce(t *testing.T) {
	m, sched, deletes := newMachine(t)

	fire(t, m, gesture.Enter, gesture.Hovered)
	fire(t, m, gesture.Press, gesture.PressHold)

	sched.Advance(3 * time.Second)
	assert.Equal(t, int32(1), deletes.Load())
	assert.Equal(t, gesture.Deleted, m.State())
	assert.Equal(t, 1.0, m.Progress())

	for _, ev := range []gesture.Event{gesture.Release, gesture.Leave, gesture.Enter, gesture.Press, gesture.Elapsed} {
		state, err := m.Fire(ev)
		assert.True(t, errors.Is(err, gesture.ErrNoTransition))
		assert.Equal(t, gesture.Deleted, state)
	}

	sched.Advance(time.Minute)
	assert.Equal(t, int32(1), deletes.Load())
	assert.Zero(t, sched.Pending())
}

func TestMachine_LeaveCancelsHold(t *testing.T) {
	m, sched, deletes := newMachine(t)

	fire(t, m, gesture.Enter, gesture.Hovered)
	fire(t, m, gesture.Press, gesture.PressHold)
	sched.Advance(2900 * time.Millisecond)
	fire(t, m, gesture.Leave, gesture.Idle)

	sched.Advance(time.Second)
	assert.Zero(t, deletes.Load())
}

func TestMachine_RepressRestartsHold(t *testing.T) {
	m, sched, deletes := newMachine(t)

	fire(t, m, gesture.Enter, gesture.Hovered)
	fire(t, m, gesture.Press, gesture.PressHold)
	sched.Advance(2 * time.Second)
	fire(t, m, gesture.Release, gesture.Hovered)
	fire(t, m, gesture.Press, gesture.PressHold)

	// the first hold would have elapsed here
	sched.Advance(1500 * time.Millisecond)
	assert.Zero(t, deletes.Load())
	assert.Equal(t, gesture.PressHold, m.State())

	sched.Advance(1500 * time.Millisecond)
	assert.Equal(t, int32(1), deletes.Load())
}

func TestMachine_ProgressRises(t *testing.T) {
	m, sched, _ := newMachine(t)

	fire(t, m, gesture.Enter, gesture.Hovered)
	fire(t, m, gesture.Press, gesture.PressHold)

	prev := 0.0
	for range 10 {
		sched.Advance(300 * time.Millisecond)
		p := m.Progress()
		if m.State() == gesture.PressHold {
			assert.Greater(t, p, prev)
		}
		prev = p
	}
	assert.Equal(t, 1.0, prev)
}

func TestMachine_IgnoredEvents(t *testing.T) {
	m, _, _ := newMachine(t)

	state, err := m.Fire(gesture.Press)
	assert.True(t, errors.Is(err, gesture.ErrNoTransition))
	assert.Equal(t, gesture.Idle, state)

	_, err = m.Fire(gesture.Release)
	assert.Error(t, err)

	fire(t, m, gesture.Enter, gesture.Hovered)
	_, err = m.Fire(gesture.Enter)
	assert.Error(t, err)
	assert.Equal(t, gesture.Hovered, m.State())
}

func TestMachine_StopCancelsTimers(t *testing.T) {
	m, sched, deletes := newMachine(t)

	fire(t, m, gesture.Enter, gesture.Hovered)
	fire(t, m, gesture.Press, gesture.PressHold)
	m.Stop()

	assert.Zero(t, sched.Pending())
	sched.Advance(10 * time.Second)
	assert.Zero(t, deletes.Load())
}

func TestMachine_WallClock(t *testing.T) {
	done := make(chan int64, 2)
	m := gesture.NewMachine(3, gesture.WallClock, gesture.Options{
		Hold:             40 * time.Millisecond,
		ProgressInterval: 5 * time.Millisecond,
	}, func(taskID int64) { done <- taskID })

	fire(t, m, gesture.Enter, gesture.Hovered)
	fire(t, m, gesture.Press, gesture.PressHold)

	select {
	case id := <-done:
		assert.Equal(t, int64(3), id)
	case <-time.After(2 * time.Second):
		t.Fatal("hold never completed")
	}

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, done, 0)
}

func TestParseEvent(t *testing.T) {
	for in, want := range map[string]gesture.Event{
		"enter":   gesture.Enter,
		"LEAVE":   gesture.Leave,
		" press ": gesture.Press,
		"release": gesture.Release,
	} {
		got, err := gesture.ParseEvent(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := gesture.ParseEvent("elapsed")
	assert.Error(t, err)
	assert.Equal(t, "press_hold", gesture.PressHold.String())
}
