package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/ratexpr"
)

var treeCmd = &cobra.Command{
	Use:   "tree expression...",
	Short: "Print the parse tree of an expression without evaluating it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := ratexpr.ParseString(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%#v\n%v\n", e, e)
		return nil
	},
}
