// Package telemetry provides support for initializing the telemetry system.
package telemetry

import (
	"context"
	"time"

	"github.com/jrazmi/taskclock/sdk/cryptids"
)

type telKey int

const (
	traceIDKey telKey = iota + 1
	startKey
)

// NoTrace is returned when a context carries no trace id.
const NoTrace = "--------NOTRACE--------"

type TraceValues struct {
	TraceID    string
	Now        time.Time
	StatusCode int
}

type Telemetry struct{}

// Creates a new telemetry instance
func NewTelemetry() Telemetry {
	return Telemetry{}
}

// SetTraceID stores a fresh trace id and the request start time.
func (t Telemetry) SetTraceID(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, startKey, time.Now())

	tid, err := cryptids.GenerateID()
	if err != nil {
		return context.WithValue(ctx, traceIDKey, NoTrace)
	}
	return context.WithValue(ctx, traceIDKey, tid)
}

func (t Telemetry) GetTraceID(ctx context.Context) string {
	return TraceID(ctx)
}

// TraceID is usable as a logger.TraceIDFn.
func TraceID(ctx context.Context) string {
	v, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return NoTrace
	}
	return v
}

// Since reports the time elapsed since SetTraceID, or zero.
func Since(ctx context.Context) time.Duration {
	start, ok := ctx.Value(startKey).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}
