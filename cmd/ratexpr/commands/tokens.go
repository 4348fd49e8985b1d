package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/ratexpr"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens expression...",
	Short: "Print the tokens of an expression",
	Long: `Print the token stream the lexer produces for an expression, one token
per line as kind:text@column. Number tokens also show their exact value.

Examples:
  ratexpr tokens '2x^1_000.5'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toks, err := ratexpr.LexString(strings.Join(args, " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, tok := range toks {
			if tok.Kind == ratexpr.TokenNum {
				fmt.Fprintf(out, "%v = %s\n", tok, tok.Num.RatString())
				continue
			}
			fmt.Fprintln(out, tok)
		}
		return nil
	},
}
