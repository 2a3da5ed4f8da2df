// Package metrics maintains expvar counters for the web layer.
package metrics

import (
	"context"
	"expvar"
	"runtime"
)

type metrics struct {
	goroutines *expvar.Int
	requests   *expvar.Int
	errors     *expvar.Int
	panics     *expvar.Int
	gestures   *expvar.Int
}

// expvar names are process global, so the counters are created once.
var m *metrics

func init() {
	m = &metrics{
		goroutines: expvar.NewInt("goroutines"),
		requests:   expvar.NewInt("requests"),
		errors:     expvar.NewInt("errors"),
		panics:     expvar.NewInt("panics"),
		gestures:   expvar.NewInt("gestures"),
	}
}

type ctxKey int

const key ctxKey = 1

// Set places the counters in ctx.
func Set(ctx context.Context) context.Context {
	return context.WithValue(ctx, key, m)
}

func from(ctx context.Context) *metrics {
	v, ok := ctx.Value(key).(*metrics)
	if !ok {
		return nil
	}
	return v
}

// AddGoroutines samples the goroutine count and returns it.
func AddGoroutines(ctx context.Context) int64 {
	if v := from(ctx); v != nil {
		g := int64(runtime.NumGoroutine())
		v.goroutines.Set(g)
		return g
	}
	return 0
}

// AddRequests increments the request count and returns the new value.
func AddRequests(ctx context.Context) int64 {
	if v := from(ctx); v != nil {
		v.requests.Add(1)
		return v.requests.Value()
	}
	return 0
}

func AddErrors(ctx context.Context) int64 {
	if v := from(ctx); v != nil {
		v.errors.Add(1)
		return v.errors.Value()
	}
	return 0
}

func AddPanics(ctx context.Context) int64 {
	if v := from(ctx); v != nil {
		v.panics.Add(1)
		return v.panics.Value()
	}
	return 0
}

// AddGestures counts gesture events accepted by the clock.
func AddGestures(ctx context.Context) int64 {
	if v := from(ctx); v != nil {
		v.gestures.Add(1)
		return v.gestures.Value()
	}
	return 0
}
