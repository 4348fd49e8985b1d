// Package commands provides the CLI commands for the ratexpr calculator.
package commands

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/ratexpr"
	"github.com/zephyrtronium/ratexpr/internal/repl"
)

var (
	rootIn       string
	rootGiven    []string
	rootApprox   bool
	rootTree     bool
	rootNoColor  bool
	rootPrec     uint
	rootPowLimit uint64
)

var rootCmd = &cobra.Command{
	Use:   "ratexpr [expression...]",
	Short: "Exact rational calculator",
	Long: `ratexpr evaluates arithmetic over exact rational numbers.

Each argument is executed as one line, in order, sharing variables. With no
arguments, lines are read from --in or standard input; on a terminal, ratexpr
prompts for them interactively.

Examples:
  ratexpr '1/3 + 1/3 + 1/3'         # 1
  ratexpr 'x = 5' '2 x'             # 5, then 10
  ratexpr --given r=3 'r^2 - 1'     # 8
  ratexpr --approx '2^(1/2)'        # 2 ^ (1/2), ≈ 1.414...`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runRoot,
}

// Execute runs the root command.
func Execute() {
	log.SetFlags(0)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringVarP(&rootIn, "in", "f", "", "input file (default stdin if no args given)")
	rootCmd.Flags().StringArrayVarP(&rootGiven, "given", "g", nil, "name=value variable definition (any number of times)")
	rootCmd.Flags().BoolVarP(&rootApprox, "approx", "a", false, "also print decimal approximations of non-integer results")
	rootCmd.Flags().BoolVar(&rootTree, "tree", false, "print results in structural form")
	rootCmd.Flags().BoolVar(&rootNoColor, "no-color", false, "disable colored output")
	rootCmd.Flags().UintVarP(&rootPrec, "prec", "p", 64, "precision of approximations in bits")
	rootCmd.Flags().Uint64Var(&rootPowLimit, "pow-limit", ratexpr.DefaultPowLimit, "largest exact power, in bits of numerator or denominator")
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx, err := newContext(rootGiven)
	if err != nil {
		return err
	}
	s := repl.New(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), repl.Options{
		Approx: rootApprox,
		Tree:   rootTree,
		Color:  !rootNoColor,
	})
	if len(args) > 0 {
		return s.Run(strings.NewReader(strings.Join(args, "\n")))
	}
	switch rootIn {
	case "", "-":
		if rootIn == "" && (isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) {
			return s.Interactive()
		}
		return s.Run(cmd.InOrStdin())
	default:
		f, err := os.Open(rootIn)
		if err != nil {
			return err
		}
		defer f.Close()
		return s.Run(f)
	}
}

// newContext creates a context with the variables defined by --given. Each
// value is evaluated with the definitions before it.
func newContext(given []string) (*ratexpr.Context, error) {
	ctx := ratexpr.NewContext(ratexpr.Prec(rootPrec), ratexpr.PowLimit(rootPowLimit))
	for _, d := range given {
		name, val, ok := strings.Cut(d, "=")
		if !ok {
			return nil, fmt.Errorf(`variable definitions must be "name=value", not %q`, d)
		}
		name = strings.TrimSpace(name)
		if !isName(name) {
			return nil, fmt.Errorf("invalid variable name %q", name)
		}
		e, err := ratexpr.ParseString(val)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
		v, err := ctx.Eval(e)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
		ctx.Set(name, v)
	}
	return ctx, nil
}

// isName reports whether s lexes as exactly one identifier.
func isName(s string) bool {
	toks, err := ratexpr.LexString(s)
	return err == nil && len(toks) == 2 && toks[0].Kind == ratexpr.TokenIdent
}
