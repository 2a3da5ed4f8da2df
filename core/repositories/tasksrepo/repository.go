// Package tasksrepo owns the ordered task list and mirrors it, in full, to a
// Storer on every change.
package tasksrepo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jrazmi/taskclock/core/clockface"
	"github.com/jrazmi/taskclock/core/notices"
	"github.com/jrazmi/taskclock/core/scaffolding/fop"
	"github.com/jrazmi/taskclock/sdk/cryptids"
	"github.com/jrazmi/taskclock/sdk/logger"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrValidation      = errors.New("task validation failed")
	ErrCorruptDocument = errors.New("stored tasks could not be parsed")
)

// ========================================
// STORER INTERFACE
// ========================================

// Storer persists the complete task list as one document.
type Storer interface {
	Load(ctx context.Context) ([]Task, error)
	Save(ctx context.Context, tasks []Task) error
}

// Notifier receives the user facing messages for task changes. Pinned
// messages stay visible to every viewer until the process exits.
type Notifier interface {
	Post(kind notices.Kind, title, description string) notices.Notice
	Pin(kind notices.Kind, title, description string) notices.Notice
}

// ========================================
// CHANGES
// ========================================

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeDeleted ChangeKind = "deleted"
)

// Change is delivered to subscribers after a mutation has been saved.
type Change struct {
	Kind   ChangeKind
	Task   Task
	Origin string
}

type originKey struct{}

// WithOrigin tags mutations made with ctx, usually with the viewer session.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

func OriginFrom(ctx context.Context) string {
	v, _ := ctx.Value(originKey{}).(string)
	return v
}

// ========================================
// REPOSITORY
// ========================================

// Repository provides access to the task list.
type Repository struct {
	log      *logger.Logger
	storer   Storer
	notifier Notifier

	mu      sync.Mutex
	tasks   []Task
	nextID  int64
	loadErr error

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// NewRepository creates a new Task repository. notifier may be nil.
func NewRepository(log *logger.Logger, storer Storer, notifier Notifier) *Repository {
	return &Repository{
		log:      log,
		storer:   storer,
		notifier: notifier,
		tasks:    []Task{},
		nextID:   1,
		subs:     map[int]func(Change){},
	}
}

// Load reads the persisted list. A corrupt document is not fatal: the list
// falls back to empty and an error notice is posted.
func (r *Repository) Load(ctx context.Context) error {
	loaded, err := r.storer.Load(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		if !errors.Is(err, ErrCorruptDocument) {
			return fmt.Errorf("load tasks: %w", err)
		}
		r.log.ErrorContext(ctx, "failed to parse stored tasks", "error", err)
		r.loadErr = err
		r.tasks = []Task{}
		r.nextID = 1
		if r.notifier != nil {
			r.notifier.Pin(notices.KindError, "Failed to parse tasks from storage", "")
		}
		return nil
	}

	r.loadErr = nil
	r.tasks, r.nextID = assignIDs(loaded)
	r.log.InfoContext(ctx, "tasks loaded", "count", len(r.tasks))
	return nil
}

// LoadError returns the parse failure of the last Load, if any.
func (r *Repository) LoadError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadErr
}

// assignIDs numbers tasks written without an id and returns the next free id.
func assignIDs(tasks []Task) ([]Task, int64) {
	var maxID int64
	for _, t := range tasks {
		maxID = max(maxID, t.ID)
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if t.ID <= 0 {
			maxID++
			t.ID = maxID
		}
		out[i] = t
	}
	return out, maxID + 1
}

// Create validates input, appends the task and saves the whole list.
func (r *Repository) Create(ctx context.Context, input CreateTask) (Task, error) {
	task, err := input.Validate()
	if err != nil {
		return Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if task.Color == "" {
		if task.Color, err = RandomColor(); err != nil {
			return Task{}, fmt.Errorf("create task: %w", err)
		}
	}

	r.mu.Lock()
	task.ID = r.nextID
	next := append(slices.Clone(r.tasks), task)
	if err := r.storer.Save(ctx, next); err != nil {
		r.mu.Unlock()
		r.log.ErrorContext(ctx, "failed to save tasks", "error", err)
		return Task{}, fmt.Errorf("save tasks: %w", err)
	}
	r.tasks = next
	r.nextID++
	r.mu.Unlock()

	r.log.InfoContext(ctx, "task created", "task_id", task.ID, "start", task.StartTime.String(), "end", task.EndTime.String())
	r.notify(notices.KindSuccess, "Task Added", fmt.Sprintf("'%s' scheduled from %s", task.Text, task.Span()))
	r.publish(Change{Kind: ChangeCreated, Task: task, Origin: OriginFrom(ctx)})

	return task, nil
}

// Delete removes the task and saves the whole list. On a failed save the
// list is left unchanged.
func (r *Repository) Delete(ctx context.Context, id int64) (Task, error) {
	r.mu.Lock()
	idx := slices.IndexFunc(r.tasks, func(t Task) bool { return t.ID == id })
	if idx < 0 {
		r.mu.Unlock()
		return Task{}, fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}

	task := r.tasks[idx]
	next := slices.Delete(slices.Clone(r.tasks), idx, idx+1)
	if err := r.storer.Save(ctx, next); err != nil {
		r.mu.Unlock()
		r.log.ErrorContext(ctx, "failed to save tasks", "error", err)
		return Task{}, fmt.Errorf("save tasks: %w", err)
	}
	r.tasks = next
	r.mu.Unlock()

	r.log.InfoContext(ctx, "task deleted", "task_id", task.ID)
	r.notify(notices.KindInfo, fmt.Sprintf("Deleted task: '%s'", task.Text), "")
	r.publish(Change{Kind: ChangeDeleted, Task: task, Origin: OriginFrom(ctx)})

	return task, nil
}

// Get returns one task by id.
func (r *Repository) Get(ctx context.Context, id int64) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return Task{}, fmt.Errorf("get task %d: %w", id, ErrNotFound)
}

// List returns the tasks in insertion order.
func (r *Repository) List(ctx context.Context) []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.tasks)
}

// Timeline returns the tasks sorted by orderBy, each flagged completed once
// now is past its end time.
func (r *Repository) Timeline(ctx context.Context, now time.Time, orderBy fop.By) []TimelineEntry {
	tasks := r.List(ctx)
	sortTasks(tasks, orderBy)

	clock := clockface.FromTime(now)
	entries := make([]TimelineEntry, len(tasks))
	for i, t := range tasks {
		entries[i] = TimelineEntry{Task: t, Completed: clock.After(t.EndTime)}
	}
	return entries
}

func sortTasks(tasks []Task, orderBy fop.By) {
	var less func(a, b Task) int
	switch orderBy.Field {
	case OrderByID:
		less = func(a, b Task) int { return compareInt(a.ID, b.ID) }
	case OrderByEndTime:
		less = func(a, b Task) int { return compareInt(a.EndTime.Minutes(), b.EndTime.Minutes()) }
	case OrderByText:
		less = func(a, b Task) int { return strings.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text)) }
	default:
		less = func(a, b Task) int { return compareInt(a.StartTime.Minutes(), b.StartTime.Minutes()) }
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		c := less(tasks[i], tasks[j])
		if orderBy.Descending() {
			return c > 0
		}
		return c < 0
	})
}

func compareInt[T int | int64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Subscribe registers fn for every saved change. Calling the returned func
// removes it.
func (r *Repository) Subscribe(fn func(Change)) func() {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn

	return func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		delete(r.subs, id)
	}
}

func (r *Repository) publish(c Change) {
	r.subMu.Lock()
	fns := make([]func(Change), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

func (r *Repository) notify(kind notices.Kind, title, description string) {
	if r.notifier == nil {
		return
	}
	r.notifier.Post(kind, title, description)
}

// RandomColor returns a random #rrggbb color.
func RandomColor() (string, error) {
	hex, err := cryptids.GenerateHex(6)
	if err != nil {
		return "", fmt.Errorf("random color: %w", err)
	}
	return "#" + hex, nil
}
