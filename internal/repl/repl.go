// Package repl runs line-oriented calculator sessions.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/zephyrtronium/ratexpr"
)

// Prompt is the interactive prompt.
const Prompt = "% "

// Options control how a session prints results.
type Options struct {
	// Approx prints a decimal approximation after results that are not
	// integers but can be approximated.
	Approx bool
	// Tree prints results in structural form instead of infix.
	Tree bool
	// Color highlights errors and notes.
	Color bool
}

// Session executes lines against one context. Bindings made by one line are
// visible to later lines.
type Session struct {
	ctx  *ratexpr.Context
	out  io.Writer
	errs io.Writer
	opts Options

	errc, notec, approxc *color.Color
}

// New creates a session writing results to out and errors and notes to errs.
func New(ctx *ratexpr.Context, out, errs io.Writer, opts Options) *Session {
	s := Session{
		ctx:     ctx,
		out:     out,
		errs:    errs,
		opts:    opts,
		errc:    color.New(color.FgRed, color.Bold),
		notec:   color.New(color.FgYellow),
		approxc: color.New(color.FgCyan),
	}
	if !opts.Color {
		s.errc.DisableColor()
		s.notec.DisableColor()
		s.approxc.DisableColor()
	}
	return &s
}

// Context returns the session's context.
func (s *Session) Context() *ratexpr.Context {
	return s.ctx
}

// Line executes one line of input and prints the result or the error. Blank
// lines do nothing. The returned error is the one printed, if any.
func (s *Session) Line(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	e, err := ratexpr.ParseString(line)
	if err != nil {
		s.report(line, err)
		return err
	}
	r, err := s.ctx.Exec(e)
	if err != nil {
		s.report(line, err)
		return err
	}
	for _, n := range s.ctx.Notes() {
		s.notec.Fprintf(s.errs, "note: %v\n", n)
	}
	if s.opts.Tree {
		fmt.Fprintf(s.out, "%#v\n", r)
	} else {
		fmt.Fprintln(s.out, r)
	}
	if s.opts.Approx {
		s.approx(r)
	}
	return nil
}

// approx prints an approximation of r if it is useful.
func (s *Session) approx(r ratexpr.Expr) {
	if n, ok := r.(ratexpr.Number); ok && n.IsInt() {
		return
	}
	f, err := s.ctx.Approx(r)
	if err != nil {
		// Symbolic results have no approximation.
		return
	}
	s.approxc.Fprintf(s.out, "≈ %s\n", f.Text('g', digits(s.ctx.Prec())))
}

// digits gives the number of significant decimal digits in prec bits.
func digits(prec uint) int {
	d := int(uint64(prec) * 30103 / 100000)
	if d < 1 {
		return 1
	}
	return d
}

// report prints an error. Errors with a position get a marker under the
// offending column.
func (s *Session) report(line string, err error) {
	var ie ratexpr.InputError
	if errors.As(err, &ie) && ie.Pos() > 0 {
		fmt.Fprintf(s.errs, "  %s\n  %s^\n", line, strings.Repeat(" ", ie.Pos()-1))
	}
	s.errc.Fprintf(s.errs, "error: %v\n", err)
}

// Run executes each line of r in order. Errors are reported and do not stop
// the run. If any line fails, the result is an error counting them.
func (s *Session) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	failed := 0
	for sc.Scan() {
		if s.Line(sc.Text()) != nil {
			failed++
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of the input lines failed", failed)
	}
	return nil
}

// Interactive prompts for lines on the terminal until EOF, keeping an
// in-memory history. Ctrl-C abandons the current line.
func (s *Session) Interactive() error {
	cli := liner.NewLiner()
	defer cli.Close()
	cli.SetCtrlCAborts(true)
	cli.SetWordCompleter(s.complete)
	for {
		line, err := cli.Prompt(Prompt)
		switch err {
		case nil:
			if strings.TrimSpace(line) != "" {
				cli.AppendHistory(line)
			}
			s.Line(line)
		case liner.ErrPromptAborted:
			continue
		case io.EOF:
			fmt.Fprintln(s.out)
			return nil
		default:
			return err
		}
	}
}

// complete completes the word before the cursor from variable and function
// names. pos counts runes.
func (s *Session) complete(line string, pos int) (head string, completions []string, tail string) {
	rs := []rune(line)
	head, tail = string(rs[:pos]), string(rs[pos:])
	k := strings.LastIndexFunc(head, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if k >= 0 {
		_, sz := utf8.DecodeRuneInString(head[k:])
		k += sz
	} else {
		k = 0
	}
	word := head[k:]
	if word == "" {
		return head, nil, tail
	}
	head = head[:k]
	for _, name := range s.ctx.Names() {
		if strings.HasPrefix(name, word) {
			completions = append(completions, name)
		}
	}
	for _, name := range ratexpr.Builtins() {
		if strings.HasPrefix(name, word) && s.ctx.Func(name) != nil && !contains(completions, name) {
			completions = append(completions, name)
		}
	}
	return head, completions, tail
}

func contains(v []string, s string) bool {
	for _, x := range v {
		if x == s {
			return true
		}
	}
	return false
}
