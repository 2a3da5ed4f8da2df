package tasksrepobridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrazmi/taskclock/bridge/scaffolding/errs"
	"github.com/jrazmi/taskclock/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/taskclock/bridge/scaffolding/mid"
	"github.com/jrazmi/taskclock/core/clockface"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/infrastructure/web"
)

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	orderBy, err := fopbridge.ParseOrder(r, orderByFields, tasksrepo.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors(err)
	}

	entries := b.tasksRepository.Timeline(ctx, b.now(), orderBy)
	return fopbridge.NewRecordsResponse(MarshalTimelineToBridge(entries))
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	qpath, err := parsePath(r)
	if err != nil {
		return errs.NewFieldErrors(err)
	}

	task, err := b.tasksRepository.Get(ctx, qpath.TaskID)
	if err != nil {
		return repositoryError(err)
	}

	out := MarshalToBridge(task)
	out.Completed = clockface.FromTime(b.now()).After(task.EndTime)
	return fopbridge.NewRecordResponse(out)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input tasksrepo.CreateTask
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	task, err := b.tasksRepository.Create(withOrigin(ctx), input)
	if err != nil {
		if errors.Is(err, tasksrepo.ErrValidation) {
			return errs.NewFieldErrors(err)
		}
		return errs.New(errs.Internal, err)
	}

	return fopbridge.NewCreatedResponse(MarshalToBridge(task))
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	qpath, err := parsePath(r)
	if err != nil {
		return errs.NewFieldErrors(err)
	}

	if _, err := b.tasksRepository.Delete(withOrigin(ctx), qpath.TaskID); err != nil {
		return repositoryError(err)
	}
	return nil
}

func repositoryError(err error) web.Encoder {
	if errors.Is(err, tasksrepo.ErrNotFound) {
		return errs.Newf(errs.NotFound, "task not found")
	}
	return errs.New(errs.Internal, err)
}

// withOrigin tags the change with the viewer session so mirrors can act on
// behalf of that viewer.
func withOrigin(ctx context.Context) context.Context {
	session, err := mid.GetSessionID(ctx)
	if err != nil {
		return ctx
	}
	return tasksrepo.WithOrigin(ctx, session)
}
