// Package api binds the bridges to the web handler.
package api

import (
	"expvar"
	"fmt"

	"github.com/jrazmi/taskclock/app/taskclock/config"
	"github.com/jrazmi/taskclock/app/taskclock/static"
	"github.com/jrazmi/taskclock/bridge/authbridge"
	"github.com/jrazmi/taskclock/bridge/calendarbridge"
	"github.com/jrazmi/taskclock/bridge/clockbridge"
	"github.com/jrazmi/taskclock/bridge/healthbridge"
	"github.com/jrazmi/taskclock/bridge/noticesbridge"
	"github.com/jrazmi/taskclock/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/taskclock/infrastructure/web"
)

func AddHandlers(handler *web.WebHandler, cfg config.Taskclock) error {
	// PAGE
	if err := handler.Page(static.Files, "index.html", "/"); err != nil {
		return fmt.Errorf("index page: %w", err)
	}
	if err := handler.FileServer(static.Files, ".", "/static/"); err != nil {
		return fmt.Errorf("static files: %w", err)
	}

	// OPERATIONS
	healthbridge.AddHttpRoutes(handler, healthbridge.Config{
		Log:        cfg.Logger,
		Repository: cfg.Repositories.Tasks,
		DBCheck:    cfg.DBCheck,
		Build:      cfg.Build,
	})
	handler.HandleRaw("GET /debug/vars", expvar.Handler())

	// AUTH
	authbridge.AddHttpRoutes(handler.Group(""), authbridge.Config{
		Log:      cfg.Logger,
		Identity: cfg.Identity,
	})

	// API
	v1 := handler.Group(config.ApiRoute)
	tasksrepobridge.AddHttpRoutes(v1, tasksrepobridge.Config{
		Log:        cfg.Logger,
		Repository: cfg.Repositories.Tasks,
	})
	clockbridge.AddHttpRoutes(v1, clockbridge.Config{
		Log:        cfg.Logger,
		Repository: cfg.Repositories.Tasks,
		Sessions:   cfg.Sessions,
		Hand:       cfg.Hand,
	})
	noticesbridge.AddHttpRoutes(v1, noticesbridge.Config{
		Log:  cfg.Logger,
		Feed: cfg.Notices,
	})
	calendarbridge.AddHttpRoutes(v1, calendarbridge.Config{
		Log:       cfg.Logger,
		Processor: cfg.Calendar,
	})

	return nil
}
