package tasksrepo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/taskclock/core/clockface"
	"github.com/jrazmi/taskclock/core/notices"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo/stores/tasksmemstore"
	"github.com/jrazmi/taskclock/core/scaffolding/fop"
	"github.com/jrazmi/taskclock/sdk/logger"
	"github.com/jrazmi/taskclock/sdk/validation"
)

func newRepo(t *testing.T, store *tasksmemstore.Store) (*tasksrepo.Repository, *notices.Feed) {
	t.Helper()
	feed := notices.NewFeed(notices.WithCapacity(50))
	repo := tasksrepo.NewRepository(logger.NewDiscard(), store, feed)
	require.NoError(t, repo.Load(context.Background()))
	return repo, feed
}

func TestCreate_EndToEnd(t *testing.T) {
	store := tasksmemstore.NewStore()
	repo, feed := newRepo(t, store)

	task, err := repo.Create(context.Background(), tasksrepo.CreateTask{
		Task:      "Write report",
		StartTime: "09:00",
		EndTime:   "10:30",
		Color:     "#ff0000",
	})
	require.NoError(t, err)

	list := repo.List(context.Background())
	require.Len(t, list, 1)
	assert.Equal(t, tasksrepo.Task{
		ID:        1,
		Text:      "Write report",
		StartTime: clockface.MustTimeOfDay("09:00"),
		EndTime:   clockface.MustTimeOfDay("10:30"),
		Color:     "#ff0000",
	}, list[0])
	assert.Equal(t, list[0], task)

	assert.JSONEq(t,
		`[{"id":1,"text":"Write report","startTime":"09:00","endTime":"10:30","color":"#ff0000"}]`,
		string(store.Document()))

	got := feed.Since(0)
	require.Len(t, got, 1)
	assert.Equal(t, "Task Added", got[0].Title)
	assert.Equal(t, "'Write report' scheduled from 9:00 AM to 10:30 AM", got[0].Description)
}

func TestCreateThenDelete_RoundTrip(t *testing.T) {
	store := tasksmemstore.NewStoreWithDocument([]byte(
		`[{"id":4,"text":"Gym","startTime":"06:00","endTime":"07:00","color":"#00ff00"}]`))
	repo, feed := newRepo(t, store)

	ctx := context.Background()
	before := repo.List(ctx)
	require.NoError(t, store.Save(ctx, before))
	docBefore := store.Document()

	task, err := repo.Create(ctx, tasksrepo.CreateTask{Task: "Lunch", StartTime: "12:00", EndTime: "13:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), task.ID)
	assert.True(t, validation.HexColor(task.Color), task.Color)

	deleted, err := repo.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, deleted)

	assert.Equal(t, before, repo.List(ctx))
	assert.JSONEq(t, string(docBefore), string(store.Document()))

	active := feed.Active(time.Now())
	require.NotEmpty(t, active)
	assert.Equal(t, "Deleted task: 'Lunch'", active[0].Title)
}

func TestCreate_ValidationBlocksCreation(t *testing.T) {
	store := tasksmemstore.NewStore()
	repo, _ := newRepo(t, store)

	_, err := repo.Create(context.Background(), tasksrepo.CreateTask{
		Task:      "a",
		StartTime: "10:00",
		EndTime:   "09:00",
		Color:     "#12345",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tasksrepo.ErrValidation))

	fe, ok := validation.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"task":    tasksrepo.MsgTaskTooShort,
		"endTime": tasksrepo.MsgEndBeforeStart,
		"color":   tasksrepo.MsgInvalidColor,
	}, fe.Fields())

	assert.Empty(t, repo.List(context.Background()))
	assert.Empty(t, store.Document())
}

func TestDelete_NotFound(t *testing.T) {
	repo, _ := newRepo(t, tasksmemstore.NewStore())
	_, err := repo.Delete(context.Background(), 42)
	assert.True(t, errors.Is(err, tasksrepo.ErrNotFound))

	_, err = repo.Get(context.Background(), 42)
	assert.True(t, errors.Is(err, tasksrepo.ErrNotFound))
}

func TestDelete_SaveFailureRollsBack(t *testing.T) {
	store := tasksmemstore.NewStore()
	repo, _ := newRepo(t, store)
	ctx := context.Background()

	task, err := repo.Create(ctx, tasksrepo.CreateTask{Task: "Read", StartTime: "20:00", EndTime: "21:00", Color: "#0000ff"})
	require.NoError(t, err)

	store.FailSaves(errors.New("disk full"))
	_, err = repo.Delete(ctx, task.ID)
	require.Error(t, err)
	assert.Len(t, repo.List(ctx), 1)

	_, err = repo.Create(ctx, tasksrepo.CreateTask{Task: "Write", StartTime: "21:00", EndTime: "22:00"})
	require.Error(t, err)
	assert.Len(t, repo.List(ctx), 1)

	store.FailSaves(nil)
	next, err := repo.Create(ctx, tasksrepo.CreateTask{Task: "Write", StartTime: "21:00", EndTime: "22:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID)
}

func TestLoad_CorruptDocumentIsNotFatal(t *testing.T) {
	store := tasksmemstore.NewStoreWithDocument([]byte(`{"broken":`))
	repo, feed := newRepo(t, store)

	assert.Empty(t, repo.List(context.Background()))
	assert.True(t, errors.Is(repo.LoadError(), tasksrepo.ErrCorruptDocument))

	got := feed.Since(0)
	require.Len(t, got, 1)
	assert.Equal(t, notices.KindError, got[0].Kind)
	assert.Equal(t, "Failed to parse tasks from storage", got[0].Title)
	assert.True(t, got[0].Pinned)
}

func TestLoad_LegacyDocument(t *testing.T) {
	prev := time.Local
	time.Local = time.FixedZone("PDT", -7*60*60)
	t.Cleanup(func() { time.Local = prev })

	store := tasksmemstore.NewStoreWithDocument([]byte(`[
		{"text":"Old","startTime":"2024-05-01T08:00:00Z","endTime":"2024-05-01T09:30:00Z","color":"#abcdef"},
		{"id":7,"text":"New","startTime":"10:00","endTime":"11:00","color":"#123456"}
	]`))
	repo, _ := newRepo(t, store)

	list := repo.List(context.Background())
	require.Len(t, list, 2)
	assert.Equal(t, int64(8), list[0].ID)
	assert.Equal(t, clockface.TimeOfDay{Hour: 1, Minute: 0}, list[0].StartTime)
	assert.Equal(t, clockface.TimeOfDay{Hour: 2, Minute: 30}, list[0].EndTime)
	assert.Equal(t, int64(7), list[1].ID)

	task, err := repo.Create(context.Background(), tasksrepo.CreateTask{Task: "Next", StartTime: "12:00", EndTime: "12:30"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), task.ID)
}

func TestTimeline(t *testing.T) {
	repo, _ := newRepo(t, tasksmemstore.NewStore())
	ctx := context.Background()

	for _, in := range []tasksrepo.CreateTask{
		{Task: "Evening", StartTime: "18:00", EndTime: "19:00"},
		{Task: "Morning", StartTime: "08:00", EndTime: "09:00"},
		{Task: "Noon", StartTime: "12:00", EndTime: "12:45"},
	} {
		_, err := repo.Create(ctx, in)
		require.NoError(t, err)
	}

	now := time.Date(2026, 10, 18, 12, 50, 0, 0, time.Local)
	entries := repo.Timeline(ctx, now, tasksrepo.DefaultOrderBy)
	require.Len(t, entries, 3)
	assert.Equal(t, "Morning", entries[0].Text)
	assert.True(t, entries[0].Completed)
	assert.Equal(t, "Noon", entries[1].Text)
	assert.True(t, entries[1].Completed)
	assert.Equal(t, "Evening", entries[2].Text)
	assert.False(t, entries[2].Completed)

	entries = repo.Timeline(ctx, now, fop.NewBy(tasksrepo.OrderByID, fop.DESC))
	assert.Equal(t, "Noon", entries[0].Text)
	assert.Equal(t, "Evening", entries[2].Text)

	entries = repo.Timeline(ctx, now, fop.NewBy(tasksrepo.OrderByText, fop.ASC))
	assert.Equal(t, "Evening", entries[0].Text)
}

func TestSubscribe(t *testing.T) {
	repo, _ := newRepo(t, tasksmemstore.NewStore())

	var mu sync.Mutex
	var got []tasksrepo.Change
	unsubscribe := repo.Subscribe(func(c tasksrepo.Change) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, c)
	})

	ctx := tasksrepo.WithOrigin(context.Background(), "viewer-1")
	task, err := repo.Create(ctx, tasksrepo.CreateTask{Task: "Call", StartTime: "15:00", EndTime: "15:30"})
	require.NoError(t, err)
	_, err = repo.Delete(ctx, task.ID)
	require.NoError(t, err)

	unsubscribe()
	_, err = repo.Create(ctx, tasksrepo.CreateTask{Task: "Ignored", StartTime: "16:00", EndTime: "16:30"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, tasksrepo.ChangeCreated, got[0].Kind)
	assert.Equal(t, "viewer-1", got[0].Origin)
	assert.Equal(t, tasksrepo.ChangeDeleted, got[1].Kind)
	assert.Equal(t, task.ID, got[1].Task.ID)
}
