// Package repositories selects and builds the persistence behind the
// repositories the apps use.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo/stores/tasksfilestore"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo/stores/tasksmemstore"
	"github.com/jrazmi/taskclock/core/repositories/tasksrepo/stores/taskspgxstore"
	"github.com/jrazmi/taskclock/infrastructure/postgresdb"
	"github.com/jrazmi/taskclock/sdk/environment"
	"github.com/jrazmi/taskclock/sdk/logger"
)

var (
	ErrUnknownStore = errors.New("unknown store kind")
	ErrNoDatabase   = errors.New("postgres store requires a database pool")
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// StoreOptions is the exportable persistence configuration.
type StoreOptions struct {
	Kind  string `env:"TASKS_STORE" default:"file"`
	Dir   string `env:"TASKS_DIR" default:"./data"`
	Key   string `env:"TASKS_KEY" default:"tasks"`
	Table string `env:"TASKS_TABLE" default:"task_documents"`
}

func (o StoreOptions) UsesPostgres() bool {
	return strings.EqualFold(o.Kind, StorePostgres)
}

func LoadStoreOptions(prefix string) (StoreOptions, error) {
	var o StoreOptions
	if err := environment.ParseEnvTags(prefix, &o); err != nil {
		return StoreOptions{}, fmt.Errorf("parsing store config: %w", err)
	}
	return o, nil
}

// NewTasksStorer builds the storer named by opts.Kind. pool is only read for
// the postgres kind.
func NewTasksStorer(log *logger.Logger, opts StoreOptions, pool *postgresdb.Pool) (tasksrepo.Storer, error) {
	switch strings.ToLower(opts.Kind) {
	case StoreFile, "":
		return tasksfilestore.NewStore(log, opts.Dir, opts.Key)
	case StorePostgres:
		if pool == nil {
			return nil, ErrNoDatabase
		}
		return taskspgxstore.NewStore(log, pool, opts.Key, opts.Table)
	case StoreMemory:
		return tasksmemstore.NewStore(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStore, opts.Kind)
}

// Repositories are the loaded repositories of one process.
type Repositories struct {
	Tasks *tasksrepo.Repository
}

// NewRepositories builds and loads every repository. notifier may be nil.
func NewRepositories(ctx context.Context, log *logger.Logger, storer tasksrepo.Storer, notifier tasksrepo.Notifier) (Repositories, error) {
	tasks := tasksrepo.NewRepository(log, storer, notifier)
	if err := tasks.Load(ctx); err != nil {
		return Repositories{}, err
	}
	return Repositories{Tasks: tasks}, nil
}
