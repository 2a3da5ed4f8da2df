package clockbridge

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/jrazmi/taskclock/bridge/scaffolding/errs"
	"github.com/jrazmi/taskclock/bridge/scaffolding/metrics"
	"github.com/jrazmi/taskclock/bridge/scaffolding/mid"
	"github.com/jrazmi/taskclock/core/arcs"
	"github.com/jrazmi/taskclock/core/clockface"
	"github.com/jrazmi/taskclock/core/gesture"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/infrastructure/web"
	"github.com/jrazmi/taskclock/sdk/validation"
)

func (b *bridge) httpSVG(ctx context.Context, r *http.Request) web.Encoder {
	var fe validation.FieldErrors

	variant, err := arcs.ParseVariant(web.QueryParam(r, "variant"))
	if err != nil {
		fe.Add("variant", err.Error())
	}

	size := float64(DefaultSize)
	if raw := web.QueryParam(r, "size"); raw != "" {
		size, err = strconv.ParseFloat(raw, 64)
		if err != nil || size < minSize || size > maxSize {
			fe.Add("size", "must be a number between 100 and 4000")
		}
	}

	if err := fe.Err(); err != nil {
		return errs.NewFieldErrors(err)
	}

	scene := arcs.NewScene(
		clockface.NewFace(size),
		variant,
		b.repo.List(ctx),
		b.hand.Current().Time,
		b.view(ctx),
	)

	var buf bytes.Buffer
	if err := arcs.Render(&buf, scene); err != nil {
		return errs.New(errs.Internal, err)
	}
	return web.NewRawResponse(buf.Bytes(), "image/svg+xml")
}

func (b *bridge) view(ctx context.Context) arcs.View {
	session, err := mid.GetSessionID(ctx)
	if err != nil {
		return arcs.View{}
	}
	tracker, ok := b.sessions.Lookup(session)
	if !ok {
		return arcs.View{}
	}
	snap := tracker.Snapshot()
	return arcs.View{HoveredID: snap.HoveredID, PressedID: snap.PressedID, Progress: snap.Progress}
}

func (b *bridge) httpNow(ctx context.Context, r *http.Request) web.Encoder {
	reading := b.hand.Current()
	t := reading.Time

	return Now{
		Time:    t.Format("03:04 PM"),
		Year:    t.Year(),
		Weekday: t.Weekday().String(),
		Day:     t.Day(),
		Month:   t.Month().String(),
		Angle:   reading.Angle,
	}
}

func (b *bridge) httpSnapshot(ctx context.Context, r *http.Request) web.Encoder {
	session, err := mid.GetSessionID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	tracker, ok := b.sessions.Lookup(session)
	if !ok {
		return Snapshot{}
	}
	return Snapshot{tracker.Snapshot()}
}

func (b *bridge) httpGesture(ctx context.Context, r *http.Request) web.Encoder {
	session, err := mid.GetSessionID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	taskID, err := strconv.ParseInt(web.Param(r, "task_id"), 10, 64)
	if err != nil || taskID <= 0 {
		return errs.Newf(errs.InvalidArgument, "invalid task id")
	}

	var input GestureInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	ev, err := gesture.ParseEvent(input.Event)
	if err != nil {
		var fe validation.FieldErrors
		fe.Add("event", err.Error())
		return errs.NewFieldErrors(fe.Err())
	}

	if _, err := b.repo.Get(ctx, taskID); err != nil {
		if errors.Is(err, tasksrepo.ErrNotFound) {
			return errs.Newf(errs.NotFound, "task not found")
		}
		return errs.New(errs.Internal, err)
	}

	tracker := b.sessions.Tracker(session)
	state, err := tracker.Fire(taskID, ev)
	metrics.AddGestures(ctx)

	result := GestureResult{TaskID: taskID, State: state}
	switch {
	case errors.Is(err, gesture.ErrNoTransition):
		result.Ignored = true
	case errors.Is(err, gesture.ErrClosed):
		return errs.New(errs.FailedPrecondition, err)
	case err != nil:
		return errs.New(errs.Internal, err)
	}

	b.log.DebugContext(ctx, "gesture", "task_id", taskID, "event", ev.String(), "state", state.String())

	result.View = tracker.Snapshot()
	return result
}
