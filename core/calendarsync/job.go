// Package calendarsync mirrors task changes into an external calendar. Task
// Store changes become Jobs on a Queue that a worker pool drains.
package calendarsync

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
)

type JobKind string

const (
	JobUpsert JobKind = "upsert"
	JobDelete JobKind = "delete"
)

// Job mirrors one task change. Origin is the viewer session that made it.
type Job struct {
	ID     string         `json:"id"`
	Kind   JobKind        `json:"kind"`
	Task   tasksrepo.Task `json:"task"`
	Origin string         `json:"origin,omitempty"`
	Result string         `json:"result,omitempty"`
}

func (j Job) GetID() string {
	return j.ID
}

// JobFor maps a task change onto a mirror job.
func JobFor(c tasksrepo.Change) Job {
	kind := JobUpsert
	if c.Kind == tasksrepo.ChangeDeleted {
		kind = JobDelete
	}
	return Job{
		ID:     uuid.NewString(),
		Kind:   kind,
		Task:   c.Task,
		Origin: c.Origin,
	}
}

// Queue is a FIFO of pending jobs, safe for concurrent use.
type Queue struct {
	mu   sync.Mutex
	jobs []Job
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(j Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, j)
}

// Pop removes the oldest job.
func (q *Queue) Pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return Job{}, false
	}
	j := q.jobs[0]
	q.jobs[0] = Job{}
	q.jobs = q.jobs[1:]
	return j, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Subscribable is the part of the Task Store the queue listens to.
type Subscribable interface {
	Subscribe(fn func(tasksrepo.Change)) func()
}

// Follow queues a job for every change published by src until the returned
// func is called.
func (q *Queue) Follow(src Subscribable) func() {
	return src.Subscribe(func(c tasksrepo.Change) {
		q.Push(JobFor(c))
	})
}
