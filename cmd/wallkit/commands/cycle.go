package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/cycle"
	"github.com/wallkit/wallkit/internal/report"
)

var (
	nextCmd = &cobra.Command{
		Use:   "next",
		Short: "Apply the next wallpaper in the directory",
		Args:  cobra.NoArgs,
		RunE:  runCycle(func(c *cycle.Controller) stepFunc { return c.Next }),
	}
	prevCmd = &cobra.Command{
		Use:   "prev",
		Short: "Apply the previous wallpaper in the directory",
		Args:  cobra.NoArgs,
		RunE:  runCycle(func(c *cycle.Controller) stepFunc { return c.Prev }),
	}
	randomCmd = &cobra.Command{
		Use:   "random",
		Short: "Apply a random wallpaper, avoiding the current one",
		Args:  cobra.NoArgs,
		RunE:  runCycle(func(c *cycle.Controller) stepFunc { return c.Random }),
	}
)

type stepFunc = func(context.Context, compositor.Kind, cycle.Target) (string, error)

func init() {
	for _, cmd := range []*cobra.Command{nextCmd, prevCmd, randomCmd} {
		cmd.Flags().String("monitor", "", "target monitor (default: focused, or all per cycle_target)")
		rootCmd.AddCommand(cmd)
	}
}

func runCycle(step func(*cycle.Controller) stepFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		monitor, _ := cmd.Flags().GetString("monitor")
		ctx := cmd.Context()

		targets, _, err := a.targets(ctx, monitor)
		if err != nil {
			return err
		}
		batch := report.NewBatch()
		for _, t := range targets {
			path, err := step(a.controller)(ctx, a.kind, t)
			if err != nil {
				batch.Failed(t.Monitor, path, err)
				continue
			}
			batch.Applied(t.Monitor, path, tierLabel(t), 0)
		}
		fmt.Print(batch.Render())
		if !batch.OK() {
			totals := batch.Totals()
			return fmt.Errorf("%d of %d monitors failed", totals.Failed, totals.Failed+totals.Applied)
		}
		return nil
	}
}

func tierLabel(t cycle.Target) string {
	if t.Workspace != "" {
		return "workspace"
	}
	return "monitor"
}
