package clockbridge_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/taskclock/bridge/clockbridge"
	"github.com/jrazmi/taskclock/bridge/scaffolding/mid"
	"github.com/jrazmi/taskclock/core/gesture"
	"github.com/jrazmi/taskclock/core/gesture/gesturetest"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo/stores/tasksmemstore"
	"github.com/jrazmi/taskclock/infrastructure/web"
	"github.com/jrazmi/taskclock/sdk/logger"
)

var noon = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

const doc = `[{"id":1,"text":"Deep work","startTime":"09:00","endTime":"10:30","color":"#ff8800"}]`

type fixture struct {
	handler *web.WebHandler
	repo    *tasksrepo.Repository
	sched   *gesturetest.Scheduler
	session string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewDiscard()
	ctx := context.Background()

	repo := tasksrepo.NewRepository(log, tasksmemstore.NewStoreWithDocument([]byte(doc)), nil)
	require.NoError(t, repo.Load(ctx))

	sched := gesturetest.New(noon)
	sessions := gesture.NewSessions(sched, gesture.Options{}, 0, func(session string, taskID int64) {
		_, _ = repo.Delete(tasksrepo.WithOrigin(ctx, session), taskID)
	})
	t.Cleanup(sessions.Close)

	h := web.NewWebHandler(web.HandlerOptions{},
		web.WithLogging(log.Logger),
		web.WithGlobalMiddleware(mid.Errors(log), mid.Session(false)),
	)
	clockbridge.AddHttpRoutes(h.Group("/api/v1"), clockbridge.Config{
		Log:        log,
		Repository: repo,
		Sessions:   sessions,
		Hand:       gesture.NewHandTicker(time.Second, sched.Now),
	})

	return &fixture{handler: h, repo: repo, sched: sched, session: uuid.NewString()}
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: mid.SessionCookie, Value: f.session})

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) gesture(t *testing.T, event string) clockbridge.GestureResult {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/v1/clock/arcs/1/gesture", `{"event":"`+event+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		TaskID  int64            `json:"taskId"`
		State   string           `json:"state"`
		Ignored bool             `json:"ignored"`
		View    gesture.Snapshot `json:"view"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	res := clockbridge.GestureResult{TaskID: out.TaskID, Ignored: out.Ignored, View: out.View}
	switch out.State {
	case "idle":
		res.State = gesture.Idle
	case "hovered":
		res.State = gesture.Hovered
	case "press_hold":
		res.State = gesture.PressHold
	case "deleted":
		res.State = gesture.Deleted
	default:
		t.Fatalf("unexpected state %q", out.State)
	}
	return res
}

func TestSVG(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodGet, "/api/v1/clock.svg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(body), "<svg"))
	assert.Contains(t, body, `viewBox="0 0 600 625"`)
	assert.Contains(t, body, "#ff8800")
	assert.NotContains(t, body, `class="tooltip"`)

	rec = f.do(http.MethodGet, "/api/v1/clock.svg?variant=wedge&size=300", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `viewBox="0 0 300 325"`)
}

func TestSVG_BadQuery(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodGet, "/api/v1/clock.svg?variant=pie&size=12", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "variant")
	assert.Contains(t, body.Fields, "size")
}

func TestNow(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodGet, "/api/v1/clock/now", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"time":"12:00 PM","year":2026,"weekday":"Sunday","day":18,"month":"October","angle":180}`,
		rec.Body.String())
}

func TestGesture_HoverShowsTooltip(t *testing.T) {
	f := setup(t)

	res := f.gesture(t, "enter")
	assert.Equal(t, gesture.Hovered, res.State)
	assert.Equal(t, int64(1), res.View.HoveredID)

	rec := f.do(http.MethodGet, "/api/v1/clock.svg", "")
	assert.Contains(t, rec.Body.String(), `class="tooltip"`)
	assert.Contains(t, rec.Body.String(), "09:00 AM - 10:30 AM")

	res = f.gesture(t, "leave")
	assert.Equal(t, gesture.Idle, res.State)

	rec = f.do(http.MethodGet, "/api/v1/clock/gesture", "")
	assert.JSONEq(t, `{"progress":0}`, rec.Body.String())
}

func TestGesture_HoldDeletes(t *testing.T) {
	f := setup(t)

	f.gesture(t, "enter")
	res := f.gesture(t, "press")
	assert.Equal(t, gesture.PressHold, res.State)

	f.sched.Advance(1500 * time.Millisecond)
	rec := f.do(http.MethodGet, "/api/v1/clock/gesture", "")
	var snap gesture.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap.PressedID)
	assert.InDelta(t, 0.5, snap.Progress, 0.02)

	f.sched.Advance(1500 * time.Millisecond)
	assert.Empty(t, f.repo.List(context.Background()))

	rec = f.do(http.MethodPost, "/api/v1/clock/arcs/1/gesture", `{"event":"enter"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGesture_ReleaseKeepsTask(t *testing.T) {
	f := setup(t)

	f.gesture(t, "enter")
	f.gesture(t, "press")
	f.sched.Advance(2 * time.Second)
	res := f.gesture(t, "release")
	assert.Equal(t, gesture.Hovered, res.State)

	f.sched.Advance(5 * time.Second)
	assert.Len(t, f.repo.List(context.Background()), 1)
}

func TestGesture_IgnoredAndInvalid(t *testing.T) {
	f := setup(t)

	res := f.gesture(t, "release")
	assert.True(t, res.Ignored)
	assert.Equal(t, gesture.Idle, res.State)

	rec := f.do(http.MethodPost, "/api/v1/clock/arcs/1/gesture", `{"event":"elapsed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/clock/arcs/zero/gesture", `{"event":"enter"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
