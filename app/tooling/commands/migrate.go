package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrazmi/taskclock/infrastructure/postgresdb"
)

// MigrateCmd applies the embedded migrations to the configured database.
func MigrateCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the task document schema in Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := env.openPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			return Migrate(cmd.Context(), env, pool)
		},
	}
	cmd.AddCommand(migrateStatusCmd(env))
	return cmd
}

func migrateStatusCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := env.openPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			status, err := postgresdb.MigrationsStatus(cmd.Context(), pool)
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}

			w := tabwriter.NewWriter(env.out(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT")
			for _, s := range status {
				state, at := "pending", "-"
				if s.Applied {
					state, at = "applied", s.AppliedAt.Local().Format(time.DateTime)
				}
				if s.Modified {
					state = "modified"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Version, state, at)
			}
			return w.Flush()
		},
	}
}

// Migrate checks the database is reachable and runs the migrations.
func Migrate(ctx context.Context, env *Env, pool *postgresdb.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	env.Log.InfoContext(ctx, "migration started", "step", "checking database status")

	if err := postgresdb.StatusCheck(ctx, pool); err != nil {
		return fmt.Errorf("database status check failed: %w", err)
	}

	env.Log.InfoContext(ctx, "database status check successful", "step", "running migrations")

	if err := postgresdb.Migrate(ctx, env.Log, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	env.Log.InfoContext(ctx, "migrations completed successfully")
	return nil
}
