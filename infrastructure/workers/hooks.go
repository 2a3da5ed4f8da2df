package workers

import (
	"context"
	"log/slog"
)

// AddPreProcessHooks registers hooks run after Checkout and before Process.
func (wp *WorkerPool[T]) AddPreProcessHooks(hooks ...PreProcessHook[T]) {
	wp.preProcessHooks = append(wp.preProcessHooks, hooks...)
}

// AddPostProcessHooks registers hooks run after Process and before Complete or Fail.
func (wp *WorkerPool[T]) AddPostProcessHooks(hooks ...PostProcessHook[T]) {
	wp.postProcessHooks = append(wp.postProcessHooks, hooks...)
}

// LogStartHook logs every job as it is picked up.
func LogStartHook[T Job](log *slog.Logger) PreProcessHook[T] {
	return func(ctx context.Context, job T) error {
		log.DebugContext(ctx, "job started", "job_id", job.GetID())
		return nil
	}
}

// LogEndHook logs every job outcome.
func LogEndHook[T Job](log *slog.Logger) PostProcessHook[T] {
	return func(ctx context.Context, job T, err error) error {
		if err != nil {
			log.WarnContext(ctx, "job ended with error", "job_id", job.GetID(), "error", err)
			return nil
		}
		log.DebugContext(ctx, "job ended", "job_id", job.GetID())
		return nil
	}
}
