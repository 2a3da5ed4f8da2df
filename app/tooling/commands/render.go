package commands

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrazmi/taskclock/core/arcs"
	"github.com/jrazmi/taskclock/core/clockface"
)

// RenderCmd writes the clock SVG for the stored tasks.
func RenderCmd(env *Env) *cobra.Command {
	var (
		variant string
		size    float64
		out     string
		at      string
		hover   int64
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the clock as SVG to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := arcs.ParseVariant(variant)
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				tod, err := clockface.ParseTimeOfDay(at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				now = tod.On(now)
			}

			repo, release, err := env.openTasks(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			scene := arcs.NewScene(clockface.NewFace(size), v, repo.List(cmd.Context()), now, arcs.View{HoveredID: hover})

			var buf bytes.Buffer
			if err := arcs.Render(&buf, scene); err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err := env.out().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			env.Log.InfoContext(cmd.Context(), "clock rendered", "path", out, "variant", string(v))
			return nil
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "stroke", "arc style: stroke or wedge")
	cmd.Flags().Float64Var(&size, "size", clockface.DefaultSize, "dial size in pixels")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	cmd.Flags().StringVar(&at, "at", "", "draw the hand at HH:MM instead of now")
	cmd.Flags().Int64Var(&hover, "hover", 0, "show the tooltip of this task id")
	return cmd
}
