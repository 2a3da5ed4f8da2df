package workers

import "context"

// Job is one unit of work. Anything with a stable id qualifies.
type Job interface {
	GetID() string
}

// Processor supplies jobs to the pool and records their outcome.
type Processor[T Job] interface {
	// Checkout hands out the next job or ErrNoWorkAvailable. It must be safe
	// to call from every worker at once.
	Checkout(ctx context.Context, workerID string) (T, error)

	// Process runs the job. Errors are retried up to the configured limit.
	Process(ctx context.Context, job T) (T, error)

	// Complete is called with the processed job on success.
	Complete(ctx context.Context, job T, processingTimeMS int) error

	// Fail is called with the original job once retries are exhausted.
	Fail(ctx context.Context, job T, err error) error
}

// WorkFunc is one checkout/process/settle cycle of a worker.
type WorkFunc func(ctx context.Context, workerID string) error

// Middleware wraps a WorkFunc.
type Middleware func(WorkFunc) WorkFunc

// PreProcessHook runs between Checkout and Process.
type PreProcessHook[T Job] func(ctx context.Context, job T) error

// PostProcessHook runs after Process, before Complete or Fail.
type PostProcessHook[T Job] func(ctx context.Context, job T, err error) error
