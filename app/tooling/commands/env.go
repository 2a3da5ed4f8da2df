// Package commands holds the taskclock command line subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jrazmi/taskclock/core/repositories"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/infrastructure/postgresdb"
	"github.com/jrazmi/taskclock/sdk/logger"
)

// Env is what every command runs against. The store is read from the same
// prefixed variables the service uses.
type Env struct {
	Log    *logger.Logger
	Prefix string
	Out    io.Writer
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

// openPool connects to Postgres.
func (e *Env) openPool() (*postgresdb.Pool, error) {
	pool, err := postgresdb.NewFromEnv(e.Prefix, postgresdb.WithTracer(postgresdb.NewLoggingQueryTracer(e.Log.Logger)))
	if err != nil {
		return nil, fmt.Errorf("configuring postgres support: %w", err)
	}
	return pool, nil
}

// openTasks loads the task repository. The returned func releases the store.
func (e *Env) openTasks(ctx context.Context) (*tasksrepo.Repository, func(), error) {
	opts, err := repositories.LoadStoreOptions(e.Prefix)
	if err != nil {
		return nil, nil, err
	}

	var pool *postgresdb.Pool
	release := func() {}
	if opts.UsesPostgres() {
		if pool, err = e.openPool(); err != nil {
			return nil, nil, err
		}
		release = pool.Close
	}

	storer, err := repositories.NewTasksStorer(e.Log, opts, pool)
	if err != nil {
		release()
		return nil, nil, err
	}

	repos, err := repositories.NewRepositories(ctx, e.Log, storer, nil)
	if err != nil {
		release()
		return nil, nil, err
	}
	if err := repos.Tasks.LoadError(); err != nil {
		e.Log.WarnContext(ctx, "stored tasks could not be parsed, starting from an empty list", "error", err)
	}
	return repos.Tasks, release, nil
}
