package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s-boardman/enviroplus-datalogger/internal/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetVersion())
	},
}

func init() {
	// Add version command to root
	rootCmd.AddCommand(versionCmd)
}
