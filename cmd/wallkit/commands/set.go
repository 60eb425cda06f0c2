package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wallkit/wallkit/internal/cycle"
	"github.com/wallkit/wallkit/internal/dispatch"
	"github.com/wallkit/wallkit/internal/report"
	"github.com/wallkit/wallkit/internal/store"
)

var setCmd = &cobra.Command{
	Use:   "set <image>",
	Short: "Assign a wallpaper to a monitor, workspace or the whole session",
	Long: `Assign a wallpaper and apply it immediately. Without --monitor the
focused monitor is used. With --workspace the assignment only takes effect
while that workspace is active on the monitor. With --global the image
becomes the session-wide fallback for monitors without their own
assignment.`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func init() {
	setCmd.Flags().String("monitor", "", "target monitor (default: focused)")
	setCmd.Flags().String("workspace", "", "bind the assignment to a workspace on the monitor")
	setCmd.Flags().Bool("global", false, "set the session-wide default instead of a monitor")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	path, err := normalizeImagePath(args[0])
	if err != nil {
		return err
	}
	monitor, _ := cmd.Flags().GetString("monitor")
	workspace, _ := cmd.Flags().GetString("workspace")
	global, _ := cmd.Flags().GetBool("global")

	if global {
		if monitor != "" || workspace != "" {
			return fmt.Errorf("--global cannot be combined with --monitor or --workspace")
		}
		if err := a.store.SetGlobal(ctx, store.Assignment{Path: path, Mode: a.cfg.Mode}); err != nil {
			return err
		}
		return syncAll(cmd, a)
	}

	snap, err := a.snapshot(ctx)
	if err != nil {
		return err
	}
	if monitor == "" {
		m, ok := snap.FocusedMonitor()
		if !ok {
			return fmt.Errorf("no monitors connected")
		}
		monitor = m.Name
	} else if _, ok := snap.MonitorByName(monitor); !ok {
		a.logger.Warnf("monitor %q is not currently connected; assignment recorded anyway", monitor)
	}

	assignment := store.Assignment{Path: path, Mode: a.cfg.Mode}
	if workspace != "" {
		err = a.store.SetWorkspace(ctx, monitor, workspace, assignment)
	} else {
		err = a.store.SetMonitor(ctx, monitor, assignment)
	}
	if err != nil {
		return err
	}

	// Only dispatch when the assignment is visible right now.
	if workspace != "" {
		if m, ok := snap.MonitorByName(monitor); ok && m.ActiveWorkspace != workspace {
			fmt.Printf("%s: assigned %s to workspace %s (applies on switch)\n", monitor, path, workspace)
			return nil
		}
	}
	if err := a.dispatcher.Apply(ctx, a.kind, dispatch.Request{Monitor: monitor, Path: path, Mode: a.cfg.Mode}); err != nil {
		return err
	}
	fmt.Printf("%s: applied %s\n", monitor, path)
	return nil
}

var syncCmd = &cobra.Command{
	Use:   "sync <image>",
	Short: "Set the global wallpaper and apply it to every monitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		path, err := normalizeImagePath(args[0])
		if err != nil {
			return err
		}
		if err := a.store.SetGlobal(cmd.Context(), store.Assignment{Path: path, Mode: a.cfg.Mode}); err != nil {
			return err
		}
		return syncAll(cmd, a)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

// syncAll resolves every monitor and fans the applies out.
func syncAll(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	snap, err := a.snapshot(ctx)
	if err != nil {
		return err
	}
	assignments, err := a.store.Assignments()
	if err != nil {
		a.logger.Warnf("reading assignments: %v", err)
	}
	effs := a.resolver.ForSnapshot(assignments, snap)

	batch := report.NewBatch()
	a.dispatcher.Sync(ctx, a.kind, snap, effs, batch)
	fmt.Print(batch.Render())
	if !batch.OK() {
		totals := batch.Totals()
		return fmt.Errorf("%d of %d monitors failed", totals.Failed, len(snap.Monitors))
	}
	return nil
}

func normalizeImagePath(arg string) (string, error) {
	path, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("wallpaper %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("wallpaper %s is a directory", path)
	}
	if !cycle.IsImage(path) {
		return "", fmt.Errorf("wallpaper %s is not a recognized image type", path)
	}
	return path, nil
}
