// Package notices keeps the short lived notifications shown to viewers after
// task changes.
package notices

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the tone of a notice.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

const (
	DefaultLifetime = 5 * time.Second
	DefaultCapacity = 20
)

type Notice struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt,omitzero"`
	Pinned      bool      `json:"pinned,omitempty"`
}

// Expired reports whether the notice should no longer be shown at now.
// Pinned notices never expire.
func (n Notice) Expired(now time.Time) bool {
	if n.Pinned {
		return false
	}
	return !now.Before(n.ExpiresAt)
}

// Feed is a bounded, concurrency safe list of notices.
type Feed struct {
	mu       sync.Mutex
	notices  []Notice
	seq      int64
	capacity int
	lifetime time.Duration
	now      func() time.Time
}

type Option func(*Feed)

func WithCapacity(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.capacity = n
		}
	}
}

func WithLifetime(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.lifetime = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Feed) {
		f.now = now
	}
}

func NewFeed(opts ...Option) *Feed {
	f := &Feed{
		capacity: DefaultCapacity,
		lifetime: DefaultLifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Post records a notice. The oldest unpinned notice is evicted when the feed
// is full.
func (f *Feed) Post(kind Kind, title, description string) Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.newNotice(kind, title, description)
	n.ExpiresAt = n.CreatedAt.Add(f.lifetime)
	f.add(n)
	return n
}

// Pin records a notice that stays active and is never evicted, for
// conditions every viewer has to see whenever they open the page.
func (f *Feed) Pin(kind Kind, title, description string) Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.newNotice(kind, title, description)
	n.Pinned = true
	f.add(n)
	return n
}

func (f *Feed) newNotice(kind Kind, title, description string) Notice {
	f.seq++
	return Notice{
		ID:          uuid.NewString(),
		Seq:         f.seq,
		Kind:        kind,
		Title:       title,
		Description: description,
		CreatedAt:   f.now(),
	}
}

func (f *Feed) add(n Notice) {
	f.notices = append(f.notices, n)
	for len(f.notices) > f.capacity {
		i := slices.IndexFunc(f.notices, func(n Notice) bool { return !n.Pinned })
		if i < 0 {
			return
		}
		f.notices = slices.Delete(f.notices, i, i+1)
	}
}

// Active returns the unexpired notices at now, newest first.
func (f *Feed) Active(now time.Time) []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notice, 0, len(f.notices))
	for i := len(f.notices) - 1; i >= 0; i-- {
		if !f.notices[i].Expired(now) {
			out = append(out, f.notices[i])
		}
	}
	return out
}

// Since returns retained notices with a sequence above seq, oldest first.
func (f *Feed) Since(seq int64) []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notice, 0)
	for _, n := range f.notices {
		if n.Seq > seq {
			out = append(out, n)
		}
	}
	return out
}

// Now is the feed clock.
func (f *Feed) Now() time.Time {
	return f.now()
}
