package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jrazmi/taskclock/app/tooling/commands"
	"github.com/jrazmi/taskclock/sdk/environment"
	"github.com/jrazmi/taskclock/sdk/logger"
)

var build = "develop"

// appName is shared with the service so both read the same store settings.
var appName = "TASKCLOCK"

func newRootCmd(env *commands.Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskclock-tooling",
		Short:         "Maintenance commands for the taskclock store",
		Version:       build,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		commands.MigrateCmd(env),
		commands.TasksCmd(env),
		commands.RenderCmd(env),
	)
	return root
}

func main() {
	if err := environment.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "reading .env:", err)
	}

	// Records go to stderr so render can write SVG to stdout.
	log, err := logger.NewFromEnv(appName, logger.WithOutput(os.Stderr), logger.WithService("tooling"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "oh no we couldn't even get logging going.")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env := &commands.Env{Log: log, Prefix: appName}
	if err := newRootCmd(env).ExecuteContext(ctx); err != nil {
		log.ErrorContext(ctx, "command failed", "err", err)
		stop()
		os.Exit(1)
	}
}
