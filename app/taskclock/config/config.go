package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jrazmi/taskclock/core/calendarsync"
	"github.com/jrazmi/taskclock/core/gesture"
	"github.com/jrazmi/taskclock/core/notices"
	"github.com/jrazmi/taskclock/core/repositories"
	"github.com/jrazmi/taskclock/infrastructure/identity"
	"github.com/jrazmi/taskclock/sdk/environment"
	"github.com/jrazmi/taskclock/sdk/logger"
	"github.com/jrazmi/taskclock/sdk/telemetry"
)

// site wide globals.
const (
	AppName  = "TASKCLOCK"
	ApiRoute = "/api/v1"
)

// Options are the service settings no infrastructure package owns.
type Options struct {
	HandInterval   time.Duration `env:"CLOCK_HAND_INTERVAL" default:"1s"`
	SessionIdle    time.Duration `env:"SESSION_IDLE" default:"30m"`
	SecureCookies  bool          `env:"SECURE_COOKIES" default:"false"`
	NoticeLifetime time.Duration `env:"NOTICE_LIFETIME" default:"5s"`
	NoticeCapacity int           `env:"NOTICE_CAPACITY" default:"20"`
	AutoMigrate    bool          `env:"AUTO_MIGRATE" default:"true"`
	// CalendarID turns on the calendar mirror when sign-in is configured too.
	CalendarID string `env:"CALENDAR_ID"`
}

func Load(prefix string) (Options, error) {
	var o Options
	if err := environment.ParseEnvTags(prefix, &o); err != nil {
		return Options{}, fmt.Errorf("parsing taskclock config: %w", err)
	}
	return o, nil
}

// Taskclock is the overall configuration handed to the api layer.
type Taskclock struct {
	Build     string
	Logger    *logger.Logger
	Telemetry telemetry.Telemetry
	Options   Options

	Repositories repositories.Repositories
	Notices      *notices.Feed
	Sessions     *gesture.Sessions
	Hand         *gesture.HandTicker

	// Identity and Calendar are nil when disabled.
	Identity *identity.Provider
	Calendar *calendarsync.Processor

	// DBCheck is nil unless tasks are kept in Postgres.
	DBCheck func(ctx context.Context) error
}
