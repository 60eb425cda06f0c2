package commands

import (
	"github.com/spf13/cobra"
)

var reapplyCmd = &cobra.Command{
	Use:   "reapply",
	Short: "Resolve and apply the recorded wallpaper for every monitor",
	Long: `Resolve each monitor's wallpaper through the assignment layers and
push it out. Useful at session start before the daemon is up, or after
editing the assignment file by hand.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		return syncAll(cmd, a)
	},
}

func init() {
	rootCmd.AddCommand(reapplyCmd)
}
