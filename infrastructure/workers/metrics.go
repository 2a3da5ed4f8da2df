package workers

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// WorkerPoolMetrics collects pool orchestration metrics.
type WorkerPoolMetrics interface {
	RecordWorkerStarted()
	RecordWorkerStopped()
	RecordWorkerPanic()

	RecordJobCheckedOut()
	RecordJobCompleted(duration time.Duration)
	RecordJobFailed(duration time.Duration)
	RecordCheckoutError()

	RecordRetryAttempt()
	RecordRetrySuccess()
	RecordRetryExhausted()

	GetSnapshot() MetricsSnapshot

	Start(ctx context.Context, poolName string)
	Stop(ctx context.Context)
}

// MetricsSnapshot is a point-in-time view of pool metrics.
type MetricsSnapshot struct {
	WorkersStarted int64 `json:"workers_started"`
	WorkersStopped int64 `json:"workers_stopped"`
	WorkersActive  int64 `json:"workers_active"`
	WorkerPanics   int64 `json:"worker_panics"`

	JobsCheckedOut int64 `json:"jobs_checked_out"`
	JobsCompleted  int64 `json:"jobs_completed"`
	JobsFailed     int64 `json:"jobs_failed"`
	JobsInProgress int64 `json:"jobs_in_progress"`
	CheckoutErrors int64 `json:"checkout_errors"`

	RetryAttempts    int64 `json:"retry_attempts"`
	RetrySuccesses   int64 `json:"retry_successes"`
	RetriesExhausted int64 `json:"retries_exhausted"`

	AverageDuration time.Duration `json:"average_duration_ns"`
	MinDuration     time.Duration `json:"min_duration_ns"`
	MaxDuration     time.Duration `json:"max_duration_ns"`

	ErrorRate float64 `json:"error_rate"`

	CollectedAt    time.Time     `json:"collected_at"`
	UptimeDuration time.Duration `json:"uptime_ns"`
}

// ================================================================================
// NoOpMetrics
// ================================================================================

type NoOpMetrics struct{}

func NewNoOpMetrics() WorkerPoolMetrics {
	return &NoOpMetrics{}
}

func (n *NoOpMetrics) RecordWorkerStarted()             {}
func (n *NoOpMetrics) RecordWorkerStopped()             {}
func (n *NoOpMetrics) RecordWorkerPanic()               {}
func (n *NoOpMetrics) RecordJobCheckedOut()             {}
func (n *NoOpMetrics) RecordJobCompleted(time.Duration) {}
func (n *NoOpMetrics) RecordJobFailed(time.Duration)    {}
func (n *NoOpMetrics) RecordCheckoutError()             {}
func (n *NoOpMetrics) RecordRetryAttempt()              {}
func (n *NoOpMetrics) RecordRetrySuccess()              {}
func (n *NoOpMetrics) RecordRetryExhausted()            {}
func (n *NoOpMetrics) GetSnapshot() MetricsSnapshot     { return MetricsSnapshot{} }
func (n *NoOpMetrics) Start(context.Context, string)    {}
func (n *NoOpMetrics) Stop(context.Context)             {}

// ================================================================================
// InMemoryMetrics
// ================================================================================

type InMemoryMetrics struct {
	poolName  string
	startTime time.Time

	workersStarted atomic.Int64
	workersStopped atomic.Int64
	workerPanics   atomic.Int64

	jobsCheckedOut atomic.Int64
	jobsCompleted  atomic.Int64
	jobsFailed     atomic.Int64
	checkoutErrors atomic.Int64

	retryAttempts    atomic.Int64
	retrySuccesses   atomic.Int64
	retriesExhausted atomic.Int64

	totalDurationNs atomic.Int64

	mu          sync.RWMutex
	minDuration time.Duration
	maxDuration time.Duration
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{minDuration: math.MaxInt64}
}

func (m *InMemoryMetrics) Start(_ context.Context, poolName string) {
	m.poolName = poolName
	m.startTime = time.Now()
}

func (m *InMemoryMetrics) Stop(context.Context) {}

func (m *InMemoryMetrics) RecordWorkerStarted()  { m.workersStarted.Add(1) }
func (m *InMemoryMetrics) RecordWorkerStopped()  { m.workersStopped.Add(1) }
func (m *InMemoryMetrics) RecordWorkerPanic()    { m.workerPanics.Add(1) }
func (m *InMemoryMetrics) RecordJobCheckedOut()  { m.jobsCheckedOut.Add(1) }
func (m *InMemoryMetrics) RecordCheckoutError()  { m.checkoutErrors.Add(1) }
func (m *InMemoryMetrics) RecordRetryAttempt()   { m.retryAttempts.Add(1) }
func (m *InMemoryMetrics) RecordRetrySuccess()   { m.retrySuccesses.Add(1) }
func (m *InMemoryMetrics) RecordRetryExhausted() { m.retriesExhausted.Add(1) }

func (m *InMemoryMetrics) RecordJobCompleted(duration time.Duration) {
	m.jobsCompleted.Add(1)
	m.recordDuration(duration)
}

func (m *InMemoryMetrics) RecordJobFailed(duration time.Duration) {
	m.jobsFailed.Add(1)
	m.recordDuration(duration)
}

func (m *InMemoryMetrics) recordDuration(d time.Duration) {
	m.totalDurationNs.Add(int64(d))

	m.mu.Lock()
	m.minDuration = min(m.minDuration, d)
	m.maxDuration = max(m.maxDuration, d)
	m.mu.Unlock()
}

func (m *InMemoryMetrics) GetSnapshot() MetricsSnapshot {
	now := time.Now()

	started := m.workersStarted.Load()
	stopped := m.workersStopped.Load()
	completed := m.jobsCompleted.Load()
	failed := m.jobsFailed.Load()
	settled := completed + failed

	m.mu.RLock()
	minDur, maxDur := m.minDuration, m.maxDuration
	m.mu.RUnlock()
	if minDur == math.MaxInt64 {
		minDur = 0
	}

	var avg time.Duration
	var errorRate float64
	if settled > 0 {
		avg = time.Duration(m.totalDurationNs.Load() / settled)
		errorRate = float64(failed) / float64(settled) * 100
	}

	var uptime time.Duration
	if !m.startTime.IsZero() {
		uptime = now.Sub(m.startTime)
	}

	return MetricsSnapshot{
		WorkersStarted: started,
		WorkersStopped: stopped,
		WorkersActive:  started - stopped,
		WorkerPanics:   m.workerPanics.Load(),

		JobsCheckedOut: m.jobsCheckedOut.Load(),
		JobsCompleted:  completed,
		JobsFailed:     failed,
		JobsInProgress: m.jobsCheckedOut.Load() - settled,
		CheckoutErrors: m.checkoutErrors.Load(),

		RetryAttempts:    m.retryAttempts.Load(),
		RetrySuccesses:   m.retrySuccesses.Load(),
		RetriesExhausted: m.retriesExhausted.Load(),

		AverageDuration: avg,
		MinDuration:     minDur,
		MaxDuration:     maxDur,
		ErrorRate:       errorRate,

		CollectedAt:    now,
		UptimeDuration: uptime,
	}
}

// ================================================================================
// LoggerMetrics
// ================================================================================

// LoggerMetrics is InMemoryMetrics that also logs a snapshot periodically
// and on stop.
type LoggerMetrics struct {
	*InMemoryMetrics
	interval time.Duration
	level    slog.Level
	logger   *slog.Logger

	done chan struct{}
	once sync.Once
}

func NewLoggerMetrics(logger *slog.Logger, interval time.Duration) *LoggerMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggerMetrics{
		InMemoryMetrics: NewInMemoryMetrics(),
		interval:        interval,
		level:           slog.LevelInfo,
		logger:          logger,
		done:            make(chan struct{}),
	}
}

func (l *LoggerMetrics) Start(ctx context.Context, poolName string) {
	l.InMemoryMetrics.Start(ctx, poolName)
	if l.interval > 0 {
		go l.periodicLog(ctx)
	}
}

func (l *LoggerMetrics) Stop(ctx context.Context) {
	l.once.Do(func() { close(l.done) })
	l.logMetrics(ctx, l.GetSnapshot(), "shutdown")
}

func (l *LoggerMetrics) periodicLog(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case <-ticker.C:
			l.logMetrics(ctx, l.GetSnapshot(), "periodic")
		}
	}
}

func (l *LoggerMetrics) logMetrics(ctx context.Context, s MetricsSnapshot, trigger string) {
	attrs := []slog.Attr{
		slog.String("pool", l.poolName),
		slog.String("trigger", trigger),
		slog.Duration("uptime", s.UptimeDuration.Round(time.Second)),
		slog.Group("workers",
			slog.Int64("active", s.WorkersActive),
			slog.Int64("panics", s.WorkerPanics),
		),
		slog.Group("jobs",
			slog.Int64("completed", s.JobsCompleted),
			slog.Int64("failed", s.JobsFailed),
			slog.Int64("in_progress", s.JobsInProgress),
		),
		slog.Group("performance",
			slog.Duration("avg_duration", s.AverageDuration),
			slog.Duration("max_duration", s.MaxDuration),
			slog.Float64("error_rate_pct", s.ErrorRate),
		),
	}
	if s.RetryAttempts > 0 {
		attrs = append(attrs, slog.Group("retries",
			slog.Int64("attempts", s.RetryAttempts),
			slog.Int64("successes", s.RetrySuccesses),
			slog.Int64("exhausted", s.RetriesExhausted),
		))
	}

	l.logger.LogAttrs(ctx, l.level, "worker_pool_metrics", attrs...)
}
