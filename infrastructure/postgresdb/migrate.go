package postgresdb

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrazmi/taskclock/schema"
	"github.com/jrazmi/taskclock/sdk/logger"
)

// Migrate runs all pending migrations from schema/pgmigrations/*.sql files.
// Migrations are applied in file name order and tracked with a checksum in
// schema_migrations. Forward only.
func Migrate(ctx context.Context, log *logger.Logger, pool *pgxpool.Pool) error {
	if err := StatusCheck(ctx, pool); err != nil {
		return fmt.Errorf("status check database: %w", err)
	}

	log.InfoContext(ctx, "running database migrations")

	applied, err := runMigrations(ctx, log, pool, schema.MigrationsFS, "pgmigrations")
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.InfoContext(ctx, "migrations complete", "applied", applied)
	return nil
}

// AppliedMigration is one row of schema_migrations.
type AppliedMigration struct {
	Version   string    `db:"version" json:"version"`
	Checksum  string    `db:"checksum" json:"checksum"`
	AppliedAt time.Time `db:"applied_at" json:"applied_at"`
}

// MigrationStatus is a migration file and whether it has run.
type MigrationStatus struct {
	Version   string    `json:"version"`
	Applied   bool      `json:"applied"`
	Modified  bool      `json:"modified"`
	AppliedAt time.Time `json:"applied_at,omitzero"`
}

// AppliedMigrations lists recorded migrations oldest first. A database that
// was never migrated has none.
func AppliedMigrations(ctx context.Context, pool *pgxpool.Pool) ([]AppliedMigration, error) {
	if err := createMigrationsTable(ctx, pool); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	rows, err := pool.Query(ctx, "SELECT version, checksum, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, HandlePgError(err)
	}
	defer rows.Close()

	applied, err := pgx.CollectRows(rows, pgx.RowToStructByName[AppliedMigration])
	if err != nil {
		return nil, HandlePgError(err)
	}
	return applied, nil
}

// MigrationsStatus compares the embedded migration files with the recorded
// ones.
func MigrationsStatus(ctx context.Context, pool *pgxpool.Pool) ([]MigrationStatus, error) {
	applied, err := AppliedMigrations(ctx, pool)
	if err != nil {
		return nil, err
	}
	return compareMigrations(schema.MigrationsFS, "pgmigrations", applied)
}

func compareMigrations(migrationsFS fs.FS, migrationsDir string, applied []AppliedMigration) ([]MigrationStatus, error) {
	files, err := migrationFiles(migrationsFS, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("get migration files: %w", err)
	}

	recorded := make(map[string]AppliedMigration, len(applied))
	for _, a := range applied {
		recorded[a.Version] = a
	}

	status := make([]MigrationStatus, 0, len(files))
	for _, file := range files {
		content, err := fs.ReadFile(migrationsFS, path.Join(migrationsDir, file))
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", file, err)
		}

		s := MigrationStatus{Version: file}
		if a, ok := recorded[file]; ok {
			s.Applied = true
			s.AppliedAt = a.AppliedAt
			s.Modified = a.Checksum != Checksum(content)
		}
		status = append(status, s)
	}
	return status, nil
}

func runMigrations(ctx context.Context, log *logger.Logger, pool *pgxpool.Pool, migrationsFS fs.FS, migrationsDir string) (int, error) {
	if err := createMigrationsTable(ctx, pool); err != nil {
		return 0, fmt.Errorf("create migrations table: %w", err)
	}

	files, err := migrationFiles(migrationsFS, migrationsDir)
	if err != nil {
		return 0, fmt.Errorf("get migration files: %w", err)
	}

	applied := 0
	for _, file := range files {
		content, err := fs.ReadFile(migrationsFS, path.Join(migrationsDir, file))
		if err != nil {
			return applied, fmt.Errorf("read migration file %s: %w", file, err)
		}

		ran, err := applyMigration(ctx, pool, file, content)
		if err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", file, err)
		}
		if ran {
			applied++
			log.InfoContext(ctx, "migration applied", "version", file, "checksum", Checksum(content)[:8])
		} else {
			log.DebugContext(ctx, "migration already applied", "version", file)
		}
	}

	return applied, nil
}

func createMigrationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			checksum VARCHAR(64) NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := pool.Exec(ctx, query)
	return err
}

// migrationFiles returns the sorted .sql file names directly under dir.
func migrationFiles(migrationsFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}

	sort.Strings(files)
	return files, nil
}

// Checksum is the hex sha256 recorded for a migration.
func Checksum(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// applyMigration runs one migration in a transaction unless it is already
// recorded. A recorded migration whose content changed is an error.
func applyMigration(ctx context.Context, pool *pgxpool.Pool, version string, content []byte) (bool, error) {
	checksum := Checksum(content)

	var existingChecksum string
	err := pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existingChecksum)
	if err == nil {
		if existingChecksum != checksum {
			return false, fmt.Errorf("checksum mismatch: migration %s has been modified after being applied (expected: %s, got: %s)",
				version, existingChecksum, checksum)
		}
		return false, nil
	}
	if HandlePgError(err) != ErrDBNotFound {
		return false, fmt.Errorf("lookup migration: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return false, fmt.Errorf("execute migration: %w", err)
	}

	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)", version, checksum); err != nil {
		return false, fmt.Errorf("record migration: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return true, nil
}
