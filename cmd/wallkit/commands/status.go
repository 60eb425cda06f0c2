package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/control/client"
	"github.com/wallkit/wallkit/internal/output"
	"github.com/wallkit/wallkit/internal/resolve"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resolved wallpaper for every monitor",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Bool("live", false, "read state from the running daemon instead of querying the compositor")
	statusCmd.Flags().Bool("keybinds", false, "print a keybinding snippet for the detected compositor")
	statusCmd.Flags().String("socket", "", "daemon control socket path (with --live)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	keybinds, _ := cmd.Flags().GetBool("keybinds")
	live, _ := cmd.Flags().GetBool("live")

	a, err := buildApp()
	if err != nil {
		return err
	}
	if keybinds {
		fmt.Println(compositor.KeybindHint(a.kind))
		return nil
	}
	if live {
		socket, _ := cmd.Flags().GetString("socket")
		return liveStatus(cmd, socket)
	}

	return statusReport(cmd.Context(), a, cmd.OutOrStdout())
}

// statusReport prints the resolved wallpaper per monitor. A compositor we
// cannot query reports as such instead of failing the command.
func statusReport(ctx context.Context, a *app, out io.Writer) error {
	fmt.Fprintf(out, "compositor: %s\n", a.kind)

	snap, err := a.snapshot(ctx)
	if err != nil {
		var qe *output.QueryError
		if errors.As(err, &qe) && qe.Unsupported {
			fmt.Fprintln(out, "output query unsupported; no monitor state available")
			return nil
		}
		return err
	}
	if len(snap.Monitors) == 0 {
		fmt.Fprintln(out, "no monitors connected")
		return nil
	}
	assignments, err := a.store.Assignments()
	if err != nil {
		a.logger.Warnf("reading assignments: %v", err)
	}
	effs := a.resolver.ForSnapshot(assignments, snap)

	for _, m := range snap.Monitors {
		line := fmt.Sprintf("%s (%dx%d)", m.Name, m.Width, m.Height)
		if m.ActiveWorkspace != "" {
			line += fmt.Sprintf(" [workspace %s]", m.ActiveWorkspace)
		}
		eff := effs[m.Name]
		if eff.Tier == resolve.TierNone {
			line += ": no wallpaper assigned"
		} else {
			line += fmt.Sprintf(": %s (%s)", eff.Assignment.Path, eff.Tier)
		}
		if p, ok, err := a.store.Pointer(m.Name); err == nil && ok {
			line += fmt.Sprintf(", applied %s", p.AppliedAt.Local().Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(out, line)
		for _, skipped := range eff.Skipped {
			fmt.Fprintf(out, "  missing file skipped: %s\n", skipped)
		}
	}
	return nil
}

func liveStatus(cmd *cobra.Command, socket string) error {
	c, err := client.New(socket)
	if err != nil {
		return err
	}
	status, err := c.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	fmt.Printf("compositor: %s (daemon up since %s)\n",
		status.Compositor, status.Started.Local().Format("2006-01-02 15:04:05"))
	for _, m := range status.Monitors {
		line := m.Name
		if m.Workspace != "" {
			line += fmt.Sprintf(" [workspace %s]", m.Workspace)
		}
		if m.Path == "" {
			line += ": no wallpaper assigned"
		} else {
			line += fmt.Sprintf(": %s (%s)", m.Path, m.Tier)
		}
		if !m.AppliedAt.IsZero() {
			line += fmt.Sprintf(", applied %s", m.AppliedAt.Local().Format("2006-01-02 15:04:05"))
		}
		fmt.Println(line)
	}
	return nil
}
