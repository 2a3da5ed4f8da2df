// Package noticesbridge serves the notice feed to polling browsers.
package noticesbridge

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jrazmi/taskclock/bridge/scaffolding/errs"
	"github.com/jrazmi/taskclock/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/taskclock/core/notices"
	"github.com/jrazmi/taskclock/infrastructure/web"
	"github.com/jrazmi/taskclock/sdk/logger"
)

type Config struct {
	Log        *logger.Logger
	Feed       *notices.Feed
	Middleware []web.Middleware
}

func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := &bridge{log: cfg.Log, feed: cfg.Feed}
	group.GET("/notices", b.httpList, cfg.Middleware...)
}

type bridge struct {
	log  *logger.Logger
	feed *notices.Feed
}

// httpList returns active notices, or with ?since=<seq> the unexpired ones
// posted after seq.
func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	now := b.feed.Now()

	raw := web.QueryParam(r, "since")
	if raw == "" {
		return fopbridge.NewRecordsResponse(b.feed.Active(now))
	}

	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seq < 0 {
		return errs.Newf(errs.InvalidArgument, "since must be a non-negative integer")
	}

	out := make([]notices.Notice, 0)
	for _, n := range b.feed.Since(seq) {
		if !n.Expired(now) {
			out = append(out, n)
		}
	}
	return fopbridge.NewRecordsResponse(out)
}
