// Package healthbridge serves the readiness check.
package healthbridge

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrazmi/taskclock/bridge/scaffolding/errs"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/infrastructure/web"
	"github.com/jrazmi/taskclock/sdk/logger"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusSkipped  = "skipped"
)

type Config struct {
	Log        *logger.Logger
	Repository *tasksrepo.Repository
	// DBCheck pings the database. Nil when tasks are not kept in Postgres.
	DBCheck func(ctx context.Context) error
	Build   string
}

func AddHttpRoutes(handler *web.WebHandler, cfg Config) {
	b := &bridge{cfg: cfg}
	handler.GET("/healthz", b.httpReadiness)
}

// Status is the readiness report.
type Status struct {
	Status   string `json:"status"`
	Store    string `json:"store"`
	Database string `json:"database"`
	Build    string `json:"build,omitempty"`
}

func (s Status) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

type bridge struct {
	cfg Config
}

// httpReadiness fails only when the database is unreachable. A document
// that could not be parsed leaves the service usable with an empty list.
func (b *bridge) httpReadiness(ctx context.Context, r *http.Request) web.Encoder {
	s := Status{Status: StatusOK, Store: StatusOK, Database: StatusSkipped, Build: b.cfg.Build}

	if err := b.cfg.Repository.LoadError(); err != nil {
		s.Status = StatusDegraded
		s.Store = StatusDegraded
	}

	if b.cfg.DBCheck != nil {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		if err := b.cfg.DBCheck(ctx); err != nil {
			b.cfg.Log.ErrorContext(ctx, "readiness: database", "error", err)
			return errs.Newf(errs.Unavailable, "database not ready")
		}
		s.Database = StatusOK
	}

	return s
}
