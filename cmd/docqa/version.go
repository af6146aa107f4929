package main

import (
	"github.com/spf13/cobra"
	"github.com/ternarybob/banner"
)

var showBanner bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	// No config or logger needed.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, _ []string) {
		if showBanner {
			banner.PrintSimple("docqa", version)
			return
		}
		cmd.Printf("docqa version %s\n", version)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&showBanner, "banner", false, "Print the banner instead of the plain version line")
	rootCmd.AddCommand(versionCmd)
}
