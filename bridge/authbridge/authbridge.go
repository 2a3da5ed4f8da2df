// Package authbridge serves the Google sign-in flow for the viewer session.
package authbridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jrazmi/taskclock/bridge/scaffolding/errs"
	"github.com/jrazmi/taskclock/bridge/scaffolding/mid"
	"github.com/jrazmi/taskclock/infrastructure/identity"
	"github.com/jrazmi/taskclock/infrastructure/web"
	"github.com/jrazmi/taskclock/sdk/logger"
)

type Config struct {
	Log      *logger.Logger
	Identity *identity.Provider
	// AfterLogin is where the browser lands once signed in. Defaults to "/".
	AfterLogin string
	Middleware []web.Middleware
}

// AddHttpRoutes registers the auth routes. They live outside the API prefix
// because the OAuth redirect URL is configured against them.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	if cfg.AfterLogin == "" {
		cfg.AfterLogin = "/"
	}
	b := &bridge{log: cfg.Log, identity: cfg.Identity, afterLogin: cfg.AfterLogin}

	group.GET("/auth/login", b.httpLogin, cfg.Middleware...)
	group.GET("/auth/callback", b.httpCallback, cfg.Middleware...)
	group.GET("/auth/status", b.httpStatus, cfg.Middleware...)
	group.POST("/auth/logout", b.httpLogout, cfg.Middleware...)
}

type bridge struct {
	log        *logger.Logger
	identity   *identity.Provider
	afterLogin string
}

type status struct {
	identity.Status
}

func (s status) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s.Status)
	return data, "application/json", err
}

func (b *bridge) httpLogin(ctx context.Context, r *http.Request) web.Encoder {
	session, err := mid.GetSessionID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	url, err := b.identity.LoginURL(session)
	if err != nil {
		return identityError(err)
	}
	return web.Redirect(ctx, r, url, http.StatusFound)
}

func (b *bridge) httpCallback(ctx context.Context, r *http.Request) web.Encoder {
	session, err := mid.GetSessionID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	if reason := web.QueryParam(r, "error"); reason != "" {
		return errs.Newf(errs.Unauthenticated, "sign-in was not completed: %s", reason)
	}

	code := web.QueryParam(r, "code")
	if code == "" {
		return errs.Newf(errs.InvalidArgument, "missing authorization code")
	}

	if err := b.identity.Callback(ctx, session, web.QueryParam(r, "state"), code); err != nil {
		return identityError(err)
	}
	return web.Redirect(ctx, r, b.afterLogin, http.StatusFound)
}

func (b *bridge) httpStatus(ctx context.Context, r *http.Request) web.Encoder {
	session, err := mid.GetSessionID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}
	return status{b.identity.Status(session)}
}

func (b *bridge) httpLogout(ctx context.Context, r *http.Request) web.Encoder {
	session, err := mid.GetSessionID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}
	b.identity.Logout(session)
	return nil
}

func identityError(err error) web.Encoder {
	switch {
	case errors.Is(err, identity.ErrDisabled):
		return errs.New(errs.FailedPrecondition, err)
	case errors.Is(err, identity.ErrInvalidState):
		return errs.New(errs.Unauthenticated, err)
	}
	return errs.New(errs.Internal, err)
}
