// Package calendarbridge reports the calendar mirror to the viewer whose
// changes it carried.
package calendarbridge

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrazmi/taskclock/bridge/scaffolding/errs"
	"github.com/jrazmi/taskclock/bridge/scaffolding/mid"
	"github.com/jrazmi/taskclock/core/calendarsync"
	"github.com/jrazmi/taskclock/infrastructure/web"
	"github.com/jrazmi/taskclock/sdk/logger"
)

type Config struct {
	Log *logger.Logger
	// Processor is nil when mirroring is disabled.
	Processor  *calendarsync.Processor
	Middleware []web.Middleware
}

func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := &bridge{log: cfg.Log, processor: cfg.Processor}
	group.GET("/calendar", b.httpStatus, cfg.Middleware...)
}

type bridge struct {
	log       *logger.Logger
	processor *calendarsync.Processor
}

// Status lists the mirror outcomes of the caller's own changes, newest
// first.
type Status struct {
	Enabled bool                   `json:"enabled"`
	Pending int                    `json:"pending"`
	History []calendarsync.Outcome `json:"history"`
}

func (s Status) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

func (b *bridge) httpStatus(ctx context.Context, r *http.Request) web.Encoder {
	session, err := mid.GetSessionID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	if b.processor == nil {
		return Status{History: []calendarsync.Outcome{}}
	}

	history := make([]calendarsync.Outcome, 0)
	for _, o := range b.processor.History() {
		if o.Job.Origin == session {
			history = append(history, o)
		}
	}

	return Status{
		Enabled: true,
		Pending: b.processor.Pending(),
		History: history,
	}
}
