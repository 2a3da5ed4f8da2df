package calendarsync_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/jrazmi/taskclock/core/calendarsync"
	"github.com/jrazmi/taskclock/core/clockface"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo/stores/tasksmemstore"
	"github.com/jrazmi/taskclock/infrastructure/workers"
	"github.com/jrazmi/taskclock/sdk/logger"
)

var day = time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

type fakeAPI struct {
	mu      sync.Mutex
	upserts []calendarsync.Event
	deletes []int64
	err     error
}

func (f *fakeAPI) Upsert(ctx context.Context, ev calendarsync.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, ev)
	return nil
}

func (f *fakeAPI) Delete(ctx context.Context, taskID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, taskID)
	return nil
}

type fakeSource struct {
	api      *fakeAPI
	sessions map[string]bool
}

func (s fakeSource) For(ctx context.Context, session string) (calendarsync.EventsAPI, error) {
	if !s.sessions[session] {
		return nil, calendarsync.ErrNoCredentials
	}
	return s.api, nil
}

func sampleTask() tasksrepo.Task {
	return tasksrepo.Task{
		ID:        7,
		Text:      "Write report",
		StartTime: clockface.MustTimeOfDay("09:00"),
		EndTime:   clockface.MustTimeOfDay("10:30"),
		Color:     "#ff0000",
	}
}

func TestEventFor(t *testing.T) {
	ev := calendarsync.EventFor(sampleTask(), day)

	assert.Equal(t, int64(7), ev.TaskID)
	assert.Equal(t, "Write report", ev.Summary)
	assert.Equal(t, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), ev.Start)
	assert.Equal(t, time.Date(2026, 10, 18, 10, 30, 0, 0, time.UTC), ev.End)
	assert.Contains(t, ev.Description, "9:00 AM to 10:30 AM")
	assert.Contains(t, ev.Description, "#ff0000")
}

func TestQueue_FollowsRepository(t *testing.T) {
	repo := tasksrepo.NewRepository(logger.NewDiscard(), tasksmemstore.NewStore(), nil)
	require.NoError(t, repo.Load(context.Background()))

	q := calendarsync.NewQueue()
	stop := q.Follow(repo)

	ctx := tasksrepo.WithOrigin(context.Background(), "viewer-1")
	task, err := repo.Create(ctx, tasksrepo.CreateTask{Task: "Standup", StartTime: "09:00", EndTime: "09:15"})
	require.NoError(t, err)
	_, err = repo.Delete(ctx, task.ID)
	require.NoError(t, err)

	stop()
	_, err = repo.Create(ctx, tasksrepo.CreateTask{Task: "Ignored", StartTime: "11:00", EndTime: "12:00"})
	require.NoError(t, err)

	require.Equal(t, 2, q.Len())
	first, _ := q.Pop()
	second, _ := q.Pop()
	_, ok := q.Pop()
	assert.False(t, ok)

	assert.Equal(t, calendarsync.JobUpsert, first.Kind)
	assert.Equal(t, "viewer-1", first.Origin)
	assert.Equal(t, task.ID, first.Task.ID)
	assert.Equal(t, calendarsync.JobDelete, second.Kind)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestProcessor_MapsJobsToCalls(t *testing.T) {
	api := &fakeAPI{}
	q := calendarsync.NewQueue()
	p := calendarsync.NewProcessor(logger.NewDiscard(), q, fakeSource{api: api, sessions: map[string]bool{"s": true}}, func() time.Time { return day })
	ctx := context.Background()

	q.Push(calendarsync.Job{ID: "1", Kind: calendarsync.JobUpsert, Task: sampleTask(), Origin: "s"})
	q.Push(calendarsync.Job{ID: "2", Kind: calendarsync.JobDelete, Task: sampleTask(), Origin: "s"})
	q.Push(calendarsync.Job{ID: "3", Kind: calendarsync.JobUpsert, Task: sampleTask(), Origin: "anonymous"})

	for range 3 {
		job, err := p.Checkout(ctx, "w")
		require.NoError(t, err)
		done, err := p.Process(ctx, job)
		require.NoError(t, err)
		require.NoError(t, p.Complete(ctx, done, 1))
	}

	_, err := p.Checkout(ctx, "w")
	assert.ErrorIs(t, err, workers.ErrNoWorkAvailable)

	require.Len(t, api.upserts, 1)
	assert.Equal(t, int64(7), api.upserts[0].TaskID)
	assert.Equal(t, []int64{7}, api.deletes)

	history := p.History()
	require.Len(t, history, 3)
	assert.Equal(t, calendarsync.ResultSkipped, history[0].Result)
	assert.Equal(t, calendarsync.ResultMirrored, history[1].Result)
	assert.Zero(t, p.Pending())
}

func TestProcessor_RunsOnWorkerPool(t *testing.T) {
	api := &fakeAPI{}
	q := calendarsync.NewQueue()
	p := calendarsync.NewProcessor(logger.NewDiscard(), q, fakeSource{api: api, sessions: map[string]bool{"s": true}}, nil)

	api.err = errors.New("calendar down")
	q.Push(calendarsync.Job{ID: "bad", Kind: calendarsync.JobDelete, Task: sampleTask(), Origin: "s"})

	pool := workers.New[calendarsync.Job](p, workers.Options{
		Name:         "calendar",
		WorkerCount:  1,
		PollInterval: time.Millisecond,
		IdleInterval: time.Millisecond,
		MaxRetries:   2,
		RetryDelay:   time.Millisecond,
	}, workers.WithLogger(logger.NewDiscard().Logger))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Start(ctx) }()

	require.Eventually(t, func() bool { return len(p.History()) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	out := p.History()[0]
	assert.Equal(t, calendarsync.ResultFailed, out.Result)
	assert.Contains(t, out.Error, "calendar down")
}

func TestGoogleEvents_InsertPatchDelete(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	var inserted calendar.Event
	existing := false

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, r.Method+" "+r.URL.Path)

		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/events"):
			assert.Equal(t, "taskclock_id=7", r.URL.Query().Get("privateExtendedProperty"))
			list := calendar.Events{}
			if existing {
				list.Items = []*calendar.Event{{Id: "evt1"}}
			}
			_ = json.NewEncoder(w).Encode(list)
		case r.Method == http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&inserted))
			existing = true
			_ = json.NewEncoder(w).Encode(calendar.Event{Id: "evt1"})
		case r.Method == http.MethodPatch:
			_ = json.NewEncoder(w).Encode(calendar.Event{Id: "evt1"})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	g := calendarsync.NewGoogleEvents(svc, "primary")

	ev := calendarsync.EventFor(sampleTask(), day)
	require.NoError(t, g.Upsert(ctx, ev))
	require.NoError(t, g.Upsert(ctx, ev))
	require.NoError(t, g.Delete(ctx, 7))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"GET /calendars/primary/events",
		"POST /calendars/primary/events",
		"GET /calendars/primary/events",
		"PATCH /calendars/primary/events/evt1",
		"GET /calendars/primary/events",
		"DELETE /calendars/primary/events/evt1",
	}, calls)

	assert.Equal(t, "Write report", inserted.Summary)
	assert.Equal(t, "2026-10-18T09:00:00Z", inserted.Start.DateTime)
	assert.Equal(t, "UTC", inserted.Start.TimeZone)
	assert.Equal(t, "7", inserted.ExtendedProperties.Private[calendarsync.PropertyKey])
}

type clientsFunc func(ctx context.Context, session string) (*http.Client, error)

func (f clientsFunc) HTTPClient(ctx context.Context, session string) (*http.Client, error) {
	return f(ctx, session)
}

func TestGoogleSource(t *testing.T) {
	src := calendarsync.NewGoogleSource(clientsFunc(func(ctx context.Context, session string) (*http.Client, error) {
		if session == "" {
			return nil, calendarsync.ErrNoCredentials
		}
		return http.DefaultClient, nil
	}), "primary")

	_, err := src.For(context.Background(), "")
	assert.ErrorIs(t, err, calendarsync.ErrNoCredentials)

	api, err := src.For(context.Background(), "viewer")
	require.NoError(t, err)
	assert.IsType(t, &calendarsync.GoogleEvents{}, api)
}
