// Package taskspgxstore keeps the task document in a postgres JSONB row.
package taskspgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/infrastructure/postgresdb"
	"github.com/jrazmi/taskclock/sdk/logger"
)

const DefaultTable = "task_documents"

type Store struct {
	log   *logger.Logger
	pool  *postgresdb.Pool
	key   string
	table string
}

// NewStore stores the document under key in table (DefaultTable if empty).
func NewStore(log *logger.Logger, pool *postgresdb.Pool, key, table string) (*Store, error) {
	if table == "" {
		table = DefaultTable
	}
	quoted, err := postgresdb.QuoteIdentifier(table)
	if err != nil {
		return nil, fmt.Errorf("task table: %w", err)
	}

	return &Store{
		log:   log,
		pool:  pool,
		key:   key,
		table: quoted,
	}, nil
}

func (s *Store) Load(ctx context.Context) ([]tasksrepo.Task, error) {
	query := `SELECT payload FROM ` + s.table + ` WHERE storage_key = @storage_key`

	var payload []byte
	err := s.pool.QueryRow(ctx, query, pgx.NamedArgs{"storage_key": s.key}).Scan(&payload)
	if err != nil {
		if errors.Is(postgresdb.HandlePgError(err), postgresdb.ErrDBNotFound) {
			return []tasksrepo.Task{}, nil
		}
		return nil, fmt.Errorf("load task document: %w", postgresdb.HandlePgError(err))
	}

	return tasksrepo.DecodeDocument(payload)
}

func (s *Store) Save(ctx context.Context, tasks []tasksrepo.Task) error {
	payload, err := tasksrepo.EncodeDocument(tasks)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + s.table + ` (storage_key, payload, updated_at)
		VALUES (@storage_key, @payload, NOW())
		ON CONFLICT (storage_key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

	args := pgx.NamedArgs{
		"storage_key": s.key,
		"payload":     string(payload),
	}
	if _, err := s.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("save task document: %w", postgresdb.HandlePgError(err))
	}

	s.log.DebugContext(ctx, "task document saved", "key", s.key, "count", len(tasks))
	return nil
}
