package gesture

import (
	"context"
	"sync"
	"time"
)

// SessionDeleteFunc is called when a hold in session completes.
type SessionDeleteFunc func(sessionID string, taskID int64)

const DefaultSessionIdle = 30 * time.Minute

type session struct {
	tracker  *Tracker
	lastSeen time.Time
}

// Sessions keeps one Tracker per viewer and closes trackers left idle.
type Sessions struct {
	sched    Scheduler
	opts     Options
	idle     time.Duration
	onDelete SessionDeleteFunc

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessions(sched Scheduler, opts Options, idle time.Duration, onDelete SessionDeleteFunc) *Sessions {
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	return &Sessions{
		sched:    sched,
		opts:     opts,
		idle:     idle,
		onDelete: onDelete,
		sessions: map[string]*session{},
	}
}

// Tracker returns the tracker of id, creating it on first use.
func (s *Sessions) Tracker(id string) *Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{
			tracker: NewTracker(s.sched, s.opts, func(taskID int64) {
				if s.onDelete != nil {
					s.onDelete(id, taskID)
				}
			}),
		}
		s.sessions[id] = sess
	}
	sess.lastSeen = s.sched.Now()
	return sess.tracker
}

// Lookup returns the tracker of id without creating or touching it.
func (s *Sessions) Lookup(id string) (*Tracker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.tracker, true
}

// Len is the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Forget drops taskID from every tracker.
func (s *Sessions) Forget(taskID int64) {
	for _, t := range s.trackers() {
		t.Forget(taskID)
	}
}

// Sweep closes trackers not used since now minus the idle timeout and
// returns how many were closed.
func (s *Sessions) Sweep(now time.Time) int {
	s.mu.Lock()
	var stale []*Tracker
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) >= s.idle {
			stale = append(stale, sess.tracker)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, t := range stale {
		t.Close()
	}
	return len(stale)
}

// Run sweeps periodically until ctx is done, then closes every tracker.
func (s *Sessions) Run(ctx context.Context) {
	ticker := time.NewTicker(s.idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-ticker.C:
			s.Sweep(s.sched.Now())
		}
	}
}

// Close closes every tracker.
func (s *Sessions) Close() {
	s.mu.Lock()
	trackers := make([]*Tracker, 0, len(s.sessions))
	for _, sess := range s.sessions {
		trackers = append(trackers, sess.tracker)
	}
	s.sessions = map[string]*session{}
	s.mu.Unlock()

	for _, t := range trackers {
		t.Close()
	}
}

func (s *Sessions) trackers() []*Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Tracker, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.tracker)
	}
	return out
}
