package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/core/scaffolding/fop"
	"github.com/jrazmi/taskclock/sdk/validation"
)

var orderByFields = map[string]string{
	"id":         tasksrepo.OrderByID,
	"start_time": tasksrepo.OrderByStartTime,
	"end_time":   tasksrepo.OrderByEndTime,
	"text":       tasksrepo.OrderByText,
}

// TasksCmd groups the task subcommands.
func TasksCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List, add and delete stored tasks",
		Long: `List, add and delete stored tasks.

The service reads the task document once at startup and rewrites it on every
change, so stop it before adding or deleting tasks here or its next save will
overwrite these edits.`,
	}
	cmd.AddCommand(tasksListCmd(env), tasksAddCmd(env), tasksDeleteCmd(env))
	return cmd
}

func tasksListCmd(env *Env) *cobra.Command {
	var (
		order  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the timeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orderBy, err := fop.ParseOrder(orderByFields, order, tasksrepo.DefaultOrderBy)
			if err != nil {
				return err
			}

			repo, release, err := env.openTasks(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			entries := repo.Timeline(cmd.Context(), time.Now(), orderBy)

			if asJSON {
				enc := json.NewEncoder(env.out())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			w := tabwriter.NewWriter(env.out(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTASK\tSPAN\tCOLOR\tDONE")
			for _, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", e.ID, e.Text, e.Span(), e.Color, e.Completed)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&order, "order", "o", "", "order as field[,asc|desc] (id, start_time, end_time, text)")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}

func tasksAddCmd(env *Env) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <task> <start HH:MM> <end HH:MM>",
		Short: "Add a task",
		Example: `  taskclock-tooling tasks add "Deep work" 09:00 10:30
  taskclock-tooling tasks add Lunch 12:30 13:00 --color "#00ff88"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, release, err := env.openTasks(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			task, err := repo.Create(cmd.Context(), tasksrepo.CreateTask{
				Task:      args[0],
				StartTime: args[1],
				EndTime:   args[2],
				Color:     color,
			})
			if err != nil {
				if fe, ok := validation.AsFieldErrors(err); ok {
					for field, msg := range fe.Fields() {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
					}
				}
				return err
			}

			fmt.Fprintf(env.out(), "added %d: '%s' scheduled from %s\n", task.ID, task.Text, task.Span())
			return nil
		},
	}

	cmd.Flags().StringVarP(&color, "color", "c", "", "arc color as #RRGGBB, random when empty")
	return cmd
}

func tasksDeleteCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("task id %q: %w", args[0], err)
			}

			repo, release, err := env.openTasks(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			task, err := repo.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintf(env.out(), "deleted %d: '%s'\n", task.ID, task.Text)
			return nil
		},
	}
}
