// Package clockbridge serves the rendered clock, the hand readout and the
// hold-to-delete gesture API.
package clockbridge

import (
	"github.com/jrazmi/taskclock/core/gesture"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/infrastructure/web"
	"github.com/jrazmi/taskclock/sdk/logger"
)

const (
	DefaultSize = 600
	minSize     = 100
	maxSize     = 4000
)

// Config holds configuration for the clock bridge.
type Config struct {
	Log        *logger.Logger
	Repository *tasksrepo.Repository
	Sessions   *gesture.Sessions
	Hand       *gesture.HandTicker
	Middleware []web.Middleware
}

// AddHttpRoutes registers the clock routes.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := &bridge{
		log:      cfg.Log,
		repo:     cfg.Repository,
		sessions: cfg.Sessions,
		hand:     cfg.Hand,
	}

	group.GET("/clock.svg", b.httpSVG, cfg.Middleware...)
	group.GET("/clock/now", b.httpNow, cfg.Middleware...)
	group.GET("/clock/gesture", b.httpSnapshot, cfg.Middleware...)
	group.POST("/clock/arcs/{task_id}/gesture", b.httpGesture, cfg.Middleware...)
}

type bridge struct {
	log      *logger.Logger
	repo     *tasksrepo.Repository
	sessions *gesture.Sessions
	hand     *gesture.HandTicker
}
