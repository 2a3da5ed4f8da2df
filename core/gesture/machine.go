// Package gesture implements the hover and hold-to-delete interaction on
// clock arcs as an explicit state machine per arc.
package gesture

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// State of one arc.
type State int

const (
	Idle State = iota
	Hovered
	PressHold
	Deleted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Hovered:
		return "hovered"
	case PressHold:
		return "press_hold"
	case Deleted:
		return "deleted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Event drives a Machine. Elapsed is raised by the hold timer.
type Event int

const (
	Enter Event = iota
	Leave
	Press
	Release
	Elapsed
)

func (e Event) String() string {
	switch e {
	case Enter:
		return "enter"
	case Leave:
		return "leave"
	case Press:
		return "press"
	case Release:
		return "release"
	case Elapsed:
		return "elapsed"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ParseEvent accepts the pointer events a client may send. Elapsed is not
// one of them.
func ParseEvent(s string) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enter":
		return Enter, nil
	case "leave":
		return Leave, nil
	case "press":
		return Press, nil
	case "release":
		return Release, nil
	}
	return 0, fmt.Errorf("unknown gesture event %q", s)
}

// ErrNoTransition is returned for events the current state does not handle.
// The machine is left unchanged.
var ErrNoTransition = errors.New("no transition")

const (
	DefaultHold             = 3 * time.Second
	DefaultProgressInterval = 30 * time.Millisecond
)

// Options configures hold timing.
type Options struct {
	Hold             time.Duration `env:"HOLD_DURATION" default:"3s"`
	ProgressInterval time.Duration `env:"HOLD_PROGRESS_INTERVAL" default:"30ms"`
}

func (o Options) withDefaults() Options {
	if o.Hold <= 0 {
		o.Hold = DefaultHold
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = DefaultProgressInterval
	}
	return o
}

// DeleteFunc is called once when a hold completes.
type DeleteFunc func(taskID int64)

// Machine is the gesture state of one arc. It is safe for concurrent use;
// timer callbacks run on their own goroutines.
type Machine struct {
	taskID   int64
	sched    Scheduler
	opts     Options
	onDelete DeleteFunc

	mu        sync.Mutex
	state     State
	gen       uint64
	pressedAt time.Time
	progress  float64
	holdTimer Timer
	tickTimer Timer
}

func NewMachine(taskID int64, sched Scheduler, opts Options, onDelete DeleteFunc) *Machine {
	return &Machine{
		taskID:   taskID,
		sched:    sched,
		opts:     opts.withDefaults(),
		onDelete: onDelete,
	}
}

func (m *Machine) TaskID() int64 {
	return m.taskID
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Progress of the current hold in [0, 1]. Zero unless pressed or deleted.
func (m *Machine) Progress() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// Fire applies ev and returns the resulting state.
func (m *Machine) Fire(ev Event) (State, error) {
	m.mu.Lock()
	from := m.state
	deleted := false

	switch {
	case from == Idle && ev == Enter:
		m.state = Hovered

	case from == Hovered && ev == Leave:
		m.state = Idle

	case from == Hovered && ev == Press:
		m.startHold()
		m.state = PressHold

	case from == PressHold && ev == Release:
		m.cancelHold()
		m.state = Hovered

	case from == PressHold && ev == Leave:
		m.cancelHold()
		m.state = Idle

	case from == PressHold && ev == Elapsed:
		m.completeHold()
		deleted = true

	default:
		m.mu.Unlock()
		return from, fmt.Errorf("%s in %s: %w", ev, from, ErrNoTransition)
	}

	to := m.state
	m.mu.Unlock()

	if deleted && m.onDelete != nil {
		m.onDelete(m.taskID)
	}
	return to, nil
}

// Stop cancels pending timers without changing state. Used on teardown.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.stopTimers()
}

// startHold must be called with mu held.
func (m *Machine) startHold() {
	m.gen++
	gen := m.gen
	m.pressedAt = m.sched.Now()
	m.progress = 0
	m.holdTimer = m.sched.AfterFunc(m.opts.Hold, func() { m.elapsed(gen) })
	m.scheduleTick(gen)
}

func (m *Machine) cancelHold() {
	m.gen++
	m.stopTimers()
	m.progress = 0
}

func (m *Machine) completeHold() {
	m.gen++
	m.stopTimers()
	m.progress = 1
	m.state = Deleted
}

func (m *Machine) stopTimers() {
	if m.holdTimer != nil {
		m.holdTimer.Stop()
		m.holdTimer = nil
	}
	if m.tickTimer != nil {
		m.tickTimer.Stop()
		m.tickTimer = nil
	}
}

func (m *Machine) scheduleTick(gen uint64) {
	m.tickTimer = m.sched.AfterFunc(m.opts.ProgressInterval, func() { m.tick(gen) })
}

// elapsed is the hold timer callback. A stale generation means the hold was
// cancelled or restarted after this timer was armed.
func (m *Machine) elapsed(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != PressHold {
		m.mu.Unlock()
		return
	}
	m.completeHold()
	m.mu.Unlock()

	if m.onDelete != nil {
		m.onDelete(m.taskID)
	}
}

func (m *Machine) tick(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen || m.state != PressHold {
		return
	}

	elapsed := m.sched.Now().Sub(m.pressedAt)
	m.progress = min(float64(elapsed)/float64(m.opts.Hold), 1)
	if m.progress < 1 {
		m.scheduleTick(gen)
	}
}
