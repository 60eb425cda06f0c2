package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Remove a wallpaper assignment",
	Long: `Remove an assignment so the next layer down takes over: dropping a
workspace override falls back to the monitor default, dropping a monitor
default falls back to the global wallpaper. The monitors are re-applied
afterwards so the fallback becomes visible.`,
	Args: cobra.NoArgs,
	RunE: runUnset,
}

func init() {
	unsetCmd.Flags().String("monitor", "", "target monitor (default: focused)")
	unsetCmd.Flags().String("workspace", "", "remove the workspace override instead of the monitor default")
	unsetCmd.Flags().Bool("global", false, "remove the session-wide default")
	rootCmd.AddCommand(unsetCmd)
}

func runUnset(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	monitor, _ := cmd.Flags().GetString("monitor")
	workspace, _ := cmd.Flags().GetString("workspace")
	global, _ := cmd.Flags().GetBool("global")

	if global {
		if monitor != "" || workspace != "" {
			return fmt.Errorf("--global cannot be combined with --monitor or --workspace")
		}
		if err := a.store.RemoveGlobal(ctx); err != nil {
			return err
		}
		fmt.Println("removed global wallpaper")
		return syncAll(cmd, a)
	}

	if monitor == "" {
		snap, err := a.snapshot(ctx)
		if err != nil {
			return err
		}
		m, ok := snap.FocusedMonitor()
		if !ok {
			return fmt.Errorf("no monitors connected")
		}
		monitor = m.Name
	}
	if err := a.store.Remove(ctx, monitor, workspace); err != nil {
		return err
	}
	if workspace != "" {
		fmt.Printf("%s: removed workspace %s override\n", monitor, workspace)
	} else {
		fmt.Printf("%s: removed monitor default\n", monitor)
	}
	return syncAll(cmd, a)
}
