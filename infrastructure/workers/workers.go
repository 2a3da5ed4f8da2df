// Package workers runs a Processor's jobs on a fixed pool of polling
// goroutines with retries, hooks, middleware and metrics.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jrazmi/taskclock/sdk/environment"
)

var (
	ErrWorkerShutdown  = errors.New("worker should shutdown")
	ErrPoolShutdown    = errors.New("pool should shutdown")
	ErrNoWorkAvailable = errors.New("no work available")
)

// Options represents the exportable worker configuration
type Options struct {
	Name         string        `env:"WORKER_NAME" default:"worker"`
	WorkerCount  int           `env:"WORKER_COUNT" default:"2"`
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" default:"1s"`
	IdleInterval time.Duration `env:"WORKER_IDLE_INTERVAL" default:"5s"`
	MaxRetries   int           `env:"WORKER_MAX_RETRIES" default:"3"`
	RetryDelay   time.Duration `env:"WORKER_RETRY_DELAY" default:"1s"`
}

// options holds the internal runtime configuration
type options struct {
	name         string
	workerCount  int
	pollInterval time.Duration
	idleInterval time.Duration
	maxRetries   int
	retryDelay   time.Duration
	middlewares  []Middleware
	metrics      WorkerPoolMetrics
	logger       *slog.Logger
}

// Option is a function that configures the worker pool options
type Option func(*options)

// WorkerPool runs jobs supplied by a Processor.
type WorkerPool[T Job] struct {
	processor    Processor[T]
	name         string
	workerCount  int
	pollInterval time.Duration
	idleInterval time.Duration
	maxRetries   int
	retryDelay   time.Duration
	log          *slog.Logger

	workFunc         WorkFunc
	middlewares      []Middleware
	preProcessHooks  []PreProcessHook[T]
	postProcessHooks []PostProcessHook[T]
	metrics          WorkerPoolMetrics

	ctx        context.Context
	cancel     context.CancelFunc
	workers    sync.WaitGroup
	stopMutex  sync.Mutex
	startMutex sync.Mutex
	running    bool
	startTime  time.Time
	errors     chan error
}

func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func WithWorkerCount(count int) Option {
	return func(o *options) {
		o.workerCount = count
	}
}

// WithPollInterval sets the delay between cycles while work keeps coming.
func WithPollInterval(interval time.Duration) Option {
	return func(o *options) {
		o.pollInterval = interval
	}
}

// WithIdleInterval sets the delay after a cycle found no work.
func WithIdleInterval(interval time.Duration) Option {
	return func(o *options) {
		o.idleInterval = interval
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxRetries sets how many times Process is attempted per job.
func WithMaxRetries(maxRetries int) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
	}
}

// WithRetryDelay sets the first backoff delay. It doubles per attempt.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		o.retryDelay = d
	}
}

func WithMiddleware(middlewares ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

func WithMetrics(metrics WorkerPoolMetrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// NewFromEnv creates a new worker pool using environment variables
func NewFromEnv[T Job](prefix string, processor Processor[T], opts ...Option) (*WorkerPool[T], error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing worker config: %w", err)
	}
	return New(processor, cfg, opts...), nil
}

// New creates a pool from cfg. Options override cfg.
func New[T Job](processor Processor[T], cfg Options, opts ...Option) *WorkerPool[T] {
	o := &options{
		name:         cfg.Name,
		workerCount:  cfg.WorkerCount,
		pollInterval: cfg.PollInterval,
		idleInterval: cfg.IdleInterval,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		metrics:      NewNoOpMetrics(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.name == "" {
		o.name = "worker"
	}
	if o.workerCount <= 0 {
		o.workerCount = 1
	}
	if o.pollInterval <= 0 {
		o.pollInterval = time.Second
	}
	if o.idleInterval <= 0 {
		o.idleInterval = 5 * time.Second
	}
	if o.retryDelay <= 0 {
		o.retryDelay = time.Second
	}

	pool := &WorkerPool[T]{
		processor:    processor,
		name:         o.name,
		workerCount:  o.workerCount,
		pollInterval: o.pollInterval,
		idleInterval: o.idleInterval,
		maxRetries:   o.maxRetries,
		retryDelay:   o.retryDelay,
		log:          o.logger,
		middlewares:  o.middlewares,
		metrics:      o.metrics,
		errors:       make(chan error, o.workerCount),
	}
	pool.buildMiddlewareChain()

	return pool
}

// Start runs the workers and blocks until ctx is cancelled, Stop is called,
// or every worker has exited. A worker reporting ErrPoolShutdown stops the
// pool and its error is returned.
func (wp *WorkerPool[T]) Start(ctx context.Context) error {
	wp.startMutex.Lock()
	if wp.running {
		wp.startMutex.Unlock()
		return errors.New("worker pool already running")
	}
	wp.startTime = time.Now()
	wp.ctx, wp.cancel = context.WithCancel(ctx)
	wp.running = true
	wp.startMutex.Unlock()

	wp.log.InfoContext(ctx, "starting worker pool",
		"name", wp.name,
		"worker_count", wp.workerCount,
		"poll_interval", wp.pollInterval,
	)
	wp.metrics.Start(ctx, wp.name)

	for i := range wp.workerCount {
		workerID := fmt.Sprintf("%s-worker-%d", wp.name, i+1)
		wp.workers.Add(1)
		go wp.worker(workerID)
	}

	var poolErr error
	done := make(chan struct{})
	go func() {
		wp.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
	case err := <-wp.errors:
		poolErr = err
		wp.cancel()
		<-done
	}

	wp.cancel()
	wp.metrics.Stop(ctx)

	wp.startMutex.Lock()
	wp.running = false
	wp.startMutex.Unlock()

	wp.log.InfoContext(ctx, "worker pool stopped", "name", wp.name, "total_runtime", time.Since(wp.startTime))
	return poolErr
}

// Stop cancels the workers. Start returns once they have drained.
func (wp *WorkerPool[T]) Stop() {
	wp.stopMutex.Lock()
	defer wp.stopMutex.Unlock()

	wp.startMutex.Lock()
	running, cancel := wp.running, wp.cancel
	wp.startMutex.Unlock()

	if !running || cancel == nil {
		return
	}
	wp.log.Info("stopping worker pool", "name", wp.name)
	cancel()
}

func (wp *WorkerPool[T]) worker(workerID string) {
	defer wp.workers.Done()
	defer wp.metrics.RecordWorkerStopped()

	wp.log.DebugContext(wp.ctx, "worker started", "worker_id", workerID, "pool", wp.name)
	defer wp.log.Debug("worker stopped", "worker_id", workerID, "pool", wp.name)

	wp.metrics.RecordWorkerStarted()

	currentInterval := time.Millisecond
	ticker := time.NewTicker(currentInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wp.ctx.Done():
			return

		case <-ticker.C:
			err := wp.workWithPanicRecovery(wp.ctx, workerID)

			newInterval := wp.pollInterval
			switch {
			case err == nil:
			case errors.Is(err, ErrWorkerShutdown):
				wp.log.InfoContext(wp.ctx, "worker shutting down as requested", "worker_id", workerID)
				return
			case errors.Is(err, ErrPoolShutdown):
				wp.log.ErrorContext(wp.ctx, "worker requesting pool shutdown", "worker_id", workerID, "error", err)
				select {
				case wp.errors <- fmt.Errorf("worker %s: %w", workerID, err):
				default:
				}
				return
			case errors.Is(err, ErrNoWorkAvailable):
				newInterval = wp.idleInterval
			default:
				wp.log.ErrorContext(wp.ctx, "job processing error", "worker_id", workerID, "error", err)
			}

			if newInterval != currentInterval {
				currentInterval = newInterval
				ticker.Reset(newInterval)
			}
		}
	}
}

// workWithPanicRecovery runs one cycle, converting a panic outside Process
// into an error.
func (wp *WorkerPool[T]) workWithPanicRecovery(ctx context.Context, workerID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			wp.log.ErrorContext(context.Background(), "panic recovered in worker",
				"worker_id", workerID,
				"panic", r,
				"stack_trace", string(debug.Stack()))
			wp.metrics.RecordWorkerPanic()
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	return wp.workFunc(ctx, workerID)
}

// work runs Checkout -> Process -> Complete/Fail for one job.
func (wp *WorkerPool[T]) work(ctx context.Context, workerID string) (err error) {
	job, err := wp.processor.Checkout(ctx, workerID)
	if err != nil {
		wp.metrics.RecordCheckoutError()
		if errors.Is(err, ErrNoWorkAvailable) {
			return err
		}
		return fmt.Errorf("checkout failed: %w", err)
	}
	wp.metrics.RecordJobCheckedOut()

	var (
		processErr error
		processed  T
	)
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)

		if r := recover(); r != nil {
			wp.log.ErrorContext(ctx, "panic recovered in job",
				"worker_id", workerID,
				"job_id", job.GetID(),
				"panic", r,
				"stack_trace", string(debug.Stack()))
			wp.metrics.RecordWorkerPanic()
			processErr = fmt.Errorf("panic: %v", r)
			err = fmt.Errorf("job processing error: %w", processErr)
		}

		hookJob := processed
		if processErr != nil {
			hookJob = job
		}
		for _, hook := range wp.postProcessHooks {
			if hookErr := hook(ctx, hookJob, processErr); hookErr != nil {
				wp.log.ErrorContext(ctx, "post-process hook failed", "job_id", job.GetID(), "error", hookErr)
			}
		}

		if processErr != nil {
			wp.metrics.RecordJobFailed(duration)
			if failErr := wp.processor.Fail(ctx, job, processErr); failErr != nil {
				wp.log.ErrorContext(ctx, "failed to mark job as failed", "job_id", job.GetID(), "error", failErr)
			}
			return
		}

		wp.metrics.RecordJobCompleted(duration)
		if completeErr := wp.processor.Complete(ctx, processed, int(duration.Milliseconds())); completeErr != nil {
			wp.log.ErrorContext(ctx, "failed to mark job as complete", "job_id", job.GetID(), "error", completeErr)
		}
	}()

	for _, hook := range wp.preProcessHooks {
		if hookErr := hook(ctx, job); hookErr != nil {
			wp.log.ErrorContext(ctx, "pre-process hook failed", "job_id", job.GetID(), "error", hookErr)
		}
	}

	processed, processErr = wp.processWithRetry(ctx, job)
	if processErr != nil {
		return fmt.Errorf("job processing error: %w", processErr)
	}

	wp.log.DebugContext(ctx, "job completed",
		"worker_id", workerID,
		"job_id", job.GetID(),
		"duration_ms", time.Since(startTime).Milliseconds())
	return nil
}

// processWithRetry attempts Process up to maxRetries times with exponential
// backoff starting at retryDelay.
func (wp *WorkerPool[T]) processWithRetry(ctx context.Context, job T) (T, error) {
	maxAttempts := max(wp.maxRetries, 1)

	var (
		lastErr   error
		processed T
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			wp.metrics.RecordRetryAttempt()
			wp.log.InfoContext(ctx, "retrying job",
				"job_id", job.GetID(),
				"attempt", attempt,
				"max_attempts", maxAttempts)

			delay := wp.retryDelay * time.Duration(1<<(attempt-2))
			select {
			case <-ctx.Done():
				return processed, ctx.Err()
			case <-time.After(delay):
			}
		}

		processed, lastErr = wp.processor.Process(ctx, job)
		if lastErr == nil {
			if attempt > 1 {
				wp.metrics.RecordRetrySuccess()
			}
			return processed, nil
		}
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}

		wp.log.WarnContext(ctx, "job attempt failed",
			"job_id", job.GetID(),
			"attempt", attempt,
			"error", lastErr)
	}

	if maxAttempts > 1 {
		wp.metrics.RecordRetryExhausted()
	}
	return processed, fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

func (wp *WorkerPool[T]) GetMetrics() MetricsSnapshot {
	return wp.metrics.GetSnapshot()
}
