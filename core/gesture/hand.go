package gesture

import (
	"context"
	"sync"
	"time"

	"github.com/jrazmi/taskclock/core/clockface"
)

// Reading is the hand position at one tick.
type Reading struct {
	Time  time.Time
	Angle float64
}

// HandTicker re-derives the current time hand from the wall clock on a fixed
// interval.
type HandTicker struct {
	interval time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	current Reading
}

func NewHandTicker(interval time.Duration, now func() time.Time) *HandTicker {
	if interval <= 0 {
		interval = time.Second
	}
	if now == nil {
		now = time.Now
	}
	h := &HandTicker{interval: interval, now: now}
	h.Tick()
	return h
}

// Tick samples the clock immediately.
func (h *HandTicker) Tick() Reading {
	t := h.now()
	r := Reading{Time: t, Angle: clockface.AngleForClock(t)}

	h.mu.Lock()
	h.current = r
	h.mu.Unlock()
	return r
}

// Current is the reading of the last tick.
func (h *HandTicker) Current() Reading {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Run ticks until ctx is done.
func (h *HandTicker) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Tick()
		}
	}
}
