package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jrazmi/taskclock/infrastructure/workers"
	"github.com/jrazmi/taskclock/sdk/logger"
)

const (
	ResultMirrored = "mirrored"
	ResultSkipped  = "skipped"
	ResultFailed   = "failed"

	historySize = 50
)

// Outcome records how one job ended.
type Outcome struct {
	Job      Job       `json:"job"`
	Result   string    `json:"result"`
	Error    string    `json:"error,omitempty"`
	Duration int       `json:"durationMs"`
	At       time.Time `json:"at"`
}

// Processor drains a Queue into the calendar through a worker pool.
type Processor struct {
	log    *logger.Logger
	queue  *Queue
	source Source
	now    func() time.Time

	mu      sync.Mutex
	history []Outcome
}

var _ workers.Processor[Job] = (*Processor)(nil)

// NewProcessor creates a processor. now supplies the day events are placed
// on and defaults to time.Now.
func NewProcessor(log *logger.Logger, queue *Queue, source Source, now func() time.Time) *Processor {
	if now == nil {
		now = time.Now
	}
	return &Processor{
		log:    log,
		queue:  queue,
		source: source,
		now:    now,
	}
}

func (p *Processor) Checkout(ctx context.Context, workerID string) (Job, error) {
	j, ok := p.queue.Pop()
	if !ok {
		return Job{}, workers.ErrNoWorkAvailable
	}
	return j, nil
}

func (p *Processor) Process(ctx context.Context, job Job) (Job, error) {
	api, err := p.source.For(ctx, job.Origin)
	if errors.Is(err, ErrNoCredentials) {
		job.Result = ResultSkipped
		return job, nil
	}
	if err != nil {
		return job, fmt.Errorf("resolve calendar: %w", err)
	}

	switch job.Kind {
	case JobUpsert:
		err = api.Upsert(ctx, EventFor(job.Task, p.now()))
	case JobDelete:
		err = api.Delete(ctx, job.Task.ID)
	default:
		return job, fmt.Errorf("unknown job kind %q", job.Kind)
	}
	if err != nil {
		return job, err
	}

	job.Result = ResultMirrored
	return job, nil
}

func (p *Processor) Complete(ctx context.Context, job Job, processingTimeMS int) error {
	p.log.InfoContext(ctx, "calendar job complete",
		"job_id", job.ID,
		"kind", job.Kind,
		"task_id", job.Task.ID,
		"result", job.Result,
		"duration_ms", processingTimeMS)

	p.record(Outcome{Job: job, Result: job.Result, Duration: processingTimeMS, At: p.now()})
	return nil
}

func (p *Processor) Fail(ctx context.Context, job Job, err error) error {
	p.log.ErrorContext(ctx, "calendar job failed",
		"job_id", job.ID,
		"kind", job.Kind,
		"task_id", job.Task.ID,
		"error", err)

	p.record(Outcome{Job: job, Result: ResultFailed, Error: err.Error(), At: p.now()})
	return nil
}

func (p *Processor) record(o Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history, o)
	if over := len(p.history) - historySize; over > 0 {
		p.history = append([]Outcome(nil), p.history[over:]...)
	}
}

// History returns recent outcomes, newest first.
func (p *Processor) History() []Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Outcome, len(p.history))
	for i, o := range p.history {
		out[len(out)-1-i] = o
	}
	return out
}

// Pending is the number of queued jobs.
func (p *Processor) Pending() int {
	return p.queue.Len()
}
