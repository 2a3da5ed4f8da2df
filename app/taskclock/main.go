package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jrazmi/taskclock/app/taskclock/api"
	"github.com/jrazmi/taskclock/app/taskclock/config"
	"github.com/jrazmi/taskclock/bridge/scaffolding/mid"
	"github.com/jrazmi/taskclock/core/calendarsync"
	"github.com/jrazmi/taskclock/core/gesture"
	"github.com/jrazmi/taskclock/core/notices"
	"github.com/jrazmi/taskclock/core/repositories"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/infrastructure/identity"
	"github.com/jrazmi/taskclock/infrastructure/postgresdb"
	"github.com/jrazmi/taskclock/infrastructure/web"
	"github.com/jrazmi/taskclock/infrastructure/workers"
	"github.com/jrazmi/taskclock/sdk/environment"
	"github.com/jrazmi/taskclock/sdk/logger"
	"github.com/jrazmi/taskclock/sdk/telemetry"
)

var build = "develop"

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	var log *logger.Logger
	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			log.InfoContext(ctx, "******* SEND ALERT *******", "message", r.Message)
		},
	}

	log, err := logger.NewFromEnv(config.AppName,
		logger.WithService("taskclock"),
		logger.WithTraceID(telemetry.TraceID),
		logger.WithEvents(events),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	if err := run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	opts, err := config.Load(config.AppName)
	if err != nil {
		return err
	}
	storeOpts, err := repositories.LoadStoreOptions(config.AppName)
	if err != nil {
		return err
	}

	// :*: START DATABASES :*:
	var (
		pool    *postgresdb.Pool
		dbCheck func(ctx context.Context) error
	)
	if storeOpts.UsesPostgres() {
		pool, err = postgresdb.NewFromEnv(config.AppName, postgresdb.WithLogger(log.Logger))
		if err != nil {
			return fmt.Errorf("configuring postgres support: %w", err)
		}
		defer func() {
			log.InfoContext(ctx, "shutdown", "status", "closing database connection")
			pool.Close()
		}()

		if opts.AutoMigrate {
			if err := postgresdb.Migrate(ctx, log, pool); err != nil {
				return fmt.Errorf("migrating database: %w", err)
			}
		}
		dbCheck = func(ctx context.Context) error {
			return postgresdb.StatusCheck(ctx, pool)
		}
	}
	// END DATABASES //

	// REPOSITORIES //
	log.InfoContext(ctx, "startup", "status", "initializing repository support", "store", storeOpts.Kind)
	feed := notices.NewFeed(
		notices.WithCapacity(opts.NoticeCapacity),
		notices.WithLifetime(opts.NoticeLifetime),
	)
	storer, err := repositories.NewTasksStorer(log, storeOpts, pool)
	if err != nil {
		return fmt.Errorf("task store: %w", err)
	}
	repos, err := repositories.NewRepositories(ctx, log, storer, feed)
	if err != nil {
		return fmt.Errorf("repositories: %w", err)
	}
	// END REPOSITORIES //

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	var background sync.WaitGroup

	// CLOCK //
	var gestureOpts gesture.Options
	if err := environment.ParseEnvTags(config.AppName, &gestureOpts); err != nil {
		return fmt.Errorf("parsing gesture config: %w", err)
	}

	sessions := gesture.NewSessions(gesture.WallClock, gestureOpts, opts.SessionIdle, func(session string, taskID int64) {
		ctx := tasksrepo.WithOrigin(bgCtx, session)
		if _, err := repos.Tasks.Delete(ctx, taskID); err != nil && !errors.Is(err, tasksrepo.ErrNotFound) {
			log.ErrorContext(ctx, "hold delete", "task_id", taskID, "error", err)
		}
	})
	repos.Tasks.Subscribe(func(c tasksrepo.Change) {
		if c.Kind == tasksrepo.ChangeDeleted {
			sessions.Forget(c.Task.ID)
		}
	})
	hand := gesture.NewHandTicker(opts.HandInterval, nil)

	background.Add(2)
	go func() {
		defer background.Done()
		hand.Run(bgCtx)
	}()
	go func() {
		defer background.Done()
		sessions.Run(bgCtx)
	}()
	// END CLOCK //

	// IDENTITY & CALENDAR //
	idOpts, err := identity.LoadOptions(config.AppName)
	if err != nil {
		return err
	}
	provider := identity.New(log, idOpts)

	var processor *calendarsync.Processor
	if opts.CalendarID != "" && provider != nil {
		processor, err = startCalendar(bgCtx, log, repos.Tasks, provider, opts.CalendarID, &background)
		if err != nil {
			return err
		}
	} else {
		log.InfoContext(ctx, "startup", "status", "calendar mirror disabled")
	}
	// END IDENTITY & CALENDAR //

	tel := telemetry.NewTelemetry()
	cfg := config.Taskclock{
		Build:        build,
		Logger:       log,
		Telemetry:    tel,
		Options:      opts,
		Repositories: repos,
		Notices:      feed,
		Sessions:     sessions,
		Hand:         hand,
		Identity:     provider,
		Calendar:     processor,
		DBCheck:      dbCheck,
	}

	handler, err := webHandler(cfg)
	if err != nil {
		return err
	}

	server, err := web.NewServerFromEnv(config.AppName,
		web.WithHandler(handler),
		web.WithErrorLog(logger.NewStdLogger(log, slog.LevelError)),
	)
	if err != nil {
		return fmt.Errorf("webserver: %w", err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "startup", "status", "api router started", "host", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.InfoContext(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.InfoContext(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, server.Config.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		stopBackground()
		background.Wait()
	}

	return nil
}

// startCalendar mirrors task changes into the signed in viewer's calendar on
// a worker pool.
func startCalendar(ctx context.Context, log *logger.Logger, tasks *tasksrepo.Repository, provider *identity.Provider, calendarID string, background *sync.WaitGroup) (*calendarsync.Processor, error) {
	queue := calendarsync.NewQueue()
	queue.Follow(tasks)

	clients := calendarsync.HTTPClientsFunc(func(ctx context.Context, session string) (*http.Client, error) {
		client, err := provider.HTTPClient(ctx, session)
		if errors.Is(err, identity.ErrNotSignedIn) {
			return nil, calendarsync.ErrNoCredentials
		}
		return client, err
	})

	processor := calendarsync.NewProcessor(log, queue, calendarsync.NewGoogleSource(clients, calendarID), nil)
	pool, err := workers.NewFromEnv[calendarsync.Job](config.AppName, processor,
		workers.WithName("calendar"),
		workers.WithLogger(log.Logger),
		workers.WithMetrics(workers.NewLoggerMetrics(log.Logger, 15*time.Minute)),
		workers.WithMiddleware(workers.Timeout(30*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("calendar workers: %w", err)
	}

	background.Add(1)
	go func() {
		defer background.Done()
		if err := pool.Start(ctx); err != nil {
			log.ErrorContext(ctx, "calendar workers stopped", "error", err)
		}
	}()

	log.InfoContext(ctx, "startup", "status", "calendar mirror enabled", "calendar_id", calendarID)
	return processor, nil
}

func webHandler(cfg config.Taskclock) (http.Handler, error) {
	// INITIALIZATION
	handler, err := web.NewWebHandlerFromEnv(config.AppName,
		web.WithLogging(cfg.Logger.Logger),
		web.WithTelemetry(cfg.Telemetry),
		web.WithDefaultHeaders(map[string]string{"X-Content-Type-Options": "nosniff"}),
		// GLOBAL MIDDLEWARE
		web.WithGlobalMiddleware(
			mid.Logger(cfg.Logger),
			mid.Errors(cfg.Logger),
			mid.Metrics(),
			mid.Panics(),
			mid.Session(cfg.Options.SecureCookies),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("web handler: %w", err)
	}

	if err := api.AddHandlers(handler, cfg); err != nil {
		return nil, err
	}
	return handler, nil
}
