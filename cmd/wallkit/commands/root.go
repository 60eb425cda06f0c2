package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wallkit/wallkit/internal/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "wallkit",
		Short: "Per-monitor wallpaper state for Wayland compositors",
		Long: `wallkit keeps a durable record of which wallpaper belongs on which
monitor and workspace, resolves the effective wallpaper through layered
fallbacks (workspace override, monitor default, global default), and pushes
it out through the right backend for the running compositor: swww on
Hyprland, niri, sway and labwc, plasma-apply-wallpaperimage on KDE.

Assignments survive restarts and monitor hotplug. Run "wallkit daemon" to
keep per-workspace wallpapers applied as you switch.`,
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/wallkit/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("wallpaper-dir", "", "directory holding wallpapers")
	rootCmd.PersistentFlags().String("state-dir", "", "directory holding wallkit state")
	rootCmd.PersistentFlags().String("compositor", "", "compositor override (hyprland, niri, sway, labwc, kde)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("wallpaper_dir", rootCmd.PersistentFlags().Lookup("wallpaper-dir"))
	viper.BindPFlag("state_dir", rootCmd.PersistentFlags().Lookup("state-dir"))
	viper.BindPFlag("compositor", rootCmd.PersistentFlags().Lookup("compositor"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if path := config.DefaultPath(); path != "" {
		viper.SetConfigFile(path)
	}
	viper.SetEnvPrefix("WALLKIT")
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
