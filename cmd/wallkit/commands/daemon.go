package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wallkit/wallkit/internal/daemon"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Keep wallpapers applied across workspace switches and hotplug",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().String("socket", "", "control socket path (default: $XDG_RUNTIME_DIR/wallkit/control.sock)")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	socket, _ := cmd.Flags().GetString("socket")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := daemon.New(daemon.Options{
		Config:     a.cfg,
		Kind:       a.kind,
		Store:      a.store,
		Registry:   a.registry,
		Resolver:   a.resolver,
		Dispatcher: a.dispatcher,
		Controller: a.controller,
		Logger:     a.logger,
		SocketPath: socket,
	})
	a.logger.Infof("wallkit daemon starting on %s", a.kind)
	return d.Run(ctx)
}
