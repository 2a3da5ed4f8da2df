package gesture

import (
	"errors"
	"sync"
)

// ErrClosed is returned by a Tracker after Close.
var ErrClosed = errors.New("tracker closed")

// Snapshot is what a viewer currently sees.
type Snapshot struct {
	HoveredID int64   `json:"hoveredId,omitempty"`
	PressedID int64   `json:"pressedId,omitempty"`
	Progress  float64 `json:"progress"`
}

// Tracker holds the machines of one viewer. At most one arc is hovered.
type Tracker struct {
	sched    Scheduler
	opts     Options
	onDelete DeleteFunc

	mu       sync.Mutex
	machines map[int64]*Machine
	active   int64
	closed   bool
}

func NewTracker(sched Scheduler, opts Options, onDelete DeleteFunc) *Tracker {
	return &Tracker{
		sched:    sched,
		opts:     opts.withDefaults(),
		onDelete: onDelete,
		machines: map[int64]*Machine{},
	}
}

// Fire routes ev to the arc of taskID. Entering an arc first leaves the one
// that was active, cancelling any hold on it.
func (t *Tracker) Fire(taskID int64, ev Event) (State, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return Idle, ErrClosed
	}

	var previous *Machine
	if ev == Enter && t.active != 0 && t.active != taskID {
		previous = t.machines[t.active]
	}

	m, ok := t.machines[taskID]
	if !ok {
		m = NewMachine(taskID, t.sched, t.opts, t.deleted)
		t.machines[taskID] = m
	}
	t.mu.Unlock()

	if previous != nil {
		previous.Fire(Leave)
	}

	state, err := m.Fire(ev)
	if err != nil {
		return state, err
	}

	t.mu.Lock()
	switch state {
	case Hovered, PressHold:
		t.active = taskID
	case Idle:
		if t.active == taskID {
			t.active = 0
		}
	}
	t.mu.Unlock()

	return state, nil
}

// deleted runs on the hold timer goroutine.
func (t *Tracker) deleted(taskID int64) {
	t.mu.Lock()
	delete(t.machines, taskID)
	if t.active == taskID {
		t.active = 0
	}
	closed := t.closed
	t.mu.Unlock()

	if !closed && t.onDelete != nil {
		t.onDelete(taskID)
	}
}

// Snapshot reports the active arc and hold progress.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	m := t.machines[t.active]
	t.mu.Unlock()

	if m == nil {
		return Snapshot{}
	}

	switch m.State() {
	case Hovered:
		return Snapshot{HoveredID: m.TaskID()}
	case PressHold:
		return Snapshot{HoveredID: m.TaskID(), PressedID: m.TaskID(), Progress: m.Progress()}
	}
	return Snapshot{}
}

// State of one arc. Arcs never touched are Idle.
func (t *Tracker) State(taskID int64) State {
	t.mu.Lock()
	m := t.machines[taskID]
	t.mu.Unlock()

	if m == nil {
		return Idle
	}
	return m.State()
}

// Forget drops the machine of a task removed by other means.
func (t *Tracker) Forget(taskID int64) {
	t.mu.Lock()
	m := t.machines[taskID]
	delete(t.machines, taskID)
	if t.active == taskID {
		t.active = 0
	}
	t.mu.Unlock()

	if m != nil {
		m.Stop()
	}
}

// Close cancels every pending timer. Later events return ErrClosed.
func (t *Tracker) Close() {
	t.mu.Lock()
	machines := make([]*Machine, 0, len(t.machines))
	for _, m := range t.machines {
		machines = append(machines, m)
	}
	t.machines = map[int64]*Machine{}
	t.active = 0
	t.closed = true
	t.mu.Unlock()

	for _, m := range machines {
		m.Stop()
	}
}
