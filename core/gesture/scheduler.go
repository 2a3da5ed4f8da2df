package gesture

import "time"

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Scheduler is the source of time for machines.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type wallScheduler struct{}

func (wallScheduler) Now() time.Time {
	return time.Now()
}

func (wallScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// WallClock schedules on real timers.
var WallClock Scheduler = wallScheduler{}
