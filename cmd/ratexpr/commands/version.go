package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version can be set at build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of ratexpr",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ratexpr version %s\n", Version)
	},
}
