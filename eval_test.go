package ratexpr_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/ratexpr"
)

func TestEval(t *testing.T) {
	type vv struct {
		n string
		v ratexpr.Expr
	}
	cases := []struct {
		name string
		src  string
		vars []vv
		want string
	}{
		{"num", "1", nil, "1"},
		{"decimal", "0.1 + 0.2", nil, "3/10"},
		{"thirds", "1/3 + 1/3 + 1/3", nil, "1"},
		{"prec", "2 + 3 * 4", nil, "14"},
		{"mulpow", "2 * 3^2", nil, "18"},
		{"powright", "2^3^2", nil, "512"},
		{"powparen", "(2^3)^2", nil, "64"},
		{"negpow", "-2^2", nil, "-4"},
		{"powneg", "2^-1", nil, "1/2"},
		{"fracnegpow", "(2/3)^-2", nil, "9/4"},
		{"negbase", "(-2)^3", nil, "-8"},
		{"negfracnegpow", "(-2/3)^-3", nil, "-27/8"},
		{"fracpow", "1.5^2", nil, "9/4"},
		{"bigpow", "2^100", nil, "1267650600228229401496703205376"},
		{"zerozero", "0^0", nil, "1"},
		{"zeropos", "0^5", nil, "0"},
		{"onehuge", "1^1000000000000000000000", nil, "1"},
		{"negonehuge", "(-1)^1000000000000000000001", nil, "-1"},
		{"negoneevenhuge", "(-1)^1000000000000000000000", nil, "1"},
		{"mod", "7 % 3", nil, "1"},
		{"modneg", "-7 % 3", nil, "-1"},
		{"modnegdivisor", "7 % -3", nil, "1"},
		{"modfrac", "5.5 % 2", nil, "3/2"},
		{"altops", "6 × 4 ÷ 3", nil, "8"},
		{"divmul", "(7/3) / (5/11) * (5/11)", nil, "7/3"},
		{"divmulneg", "(7/3) / (-5/11) * (-5/11)", nil, "7/3"},
		{"divmulnegdividend", "(-7/3) / (5/11) * (5/11)", nil, "-7/3"},
		{"divmulvars", "a / b * b", []vv{{"a", ratexpr.Frac(-22, 7)}, {"b", ratexpr.Frac(-355, 113)}}, "-22/7"},
		{"adjnum", "2 3", nil, "6"},
		{"ident", "x", []vv{{"x", ratexpr.Int(4)}}, "4"},
		{"adjvar", "2 x", []vv{{"x", ratexpr.Int(5)}}, "10"},
		{"adjvars", "x y", []vv{{"x", ratexpr.Int(2)}, {"y", ratexpr.Int(3)}}, "6"},
		{"neg", "-x", []vv{{"x", ratexpr.Frac(1, 2)}}, "-1/2"},
		{"chain", "a", []vv{{"a", ratexpr.Name("b")}, {"b", ratexpr.Int(7)}}, "7"},
		{"repeat", "a", []vv{
			{"a", ratexpr.BinaryExpr{Left: ratexpr.Name("b"), Op: ratexpr.OpAdd, Right: ratexpr.Name("b")}},
			{"b", ratexpr.Int(1)},
		}, "2"},
		{"floor", "floor 7.8", nil, "7"},
		{"floorneg", "floor(-7.8)", nil, "-8"},
		{"ceil", "ceil 7.2", nil, "8"},
		{"round", "round 2.5", nil, "3"},
		{"roundneg", "round(-2.5)", nil, "-3"},
		{"trunc", "trunc(-7.8)", nil, "-7"},
		{"fract", "fract(-7.25)", nil, "-1/4"},
		{"abs", "abs(-3/4)", nil, "3/4"},
		{"callvar", "floor(10 x)", []vv{{"x", ratexpr.Frac(1, 3)}}, "3"},
		{"eq", "3 = 3", nil, "true"},
		{"eqfrac", "1/2 = 2/4", nil, "true"},
		{"neq", "1 = 2", nil, "false"},
		{"eqbool", "(1 = 1) = (2 = 2)", nil, "true"},
		{"neqbool", "(1 = 2) = (2 = 2)", nil, "false"},
		{"unbound", "z", nil, "z"},
		{"unboundadd", "x + 1", nil, "x + 1"},
		{"partial", "x * (2 + 3)", nil, "x * 5"},
		{"fracadj", "(1/2) x", nil, "1/2 x"},
		{"callunbound", "floor x", nil, "floor x"},
		{"tuple", "1 + 1, x", []vv{{"x", ratexpr.Int(3)}}, "2, 3"},
		{"boolarith", "(1 = 1) + 1", nil, "true + 1"},
	}
	ctx := ratexpr.NewContext()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := ctx.Clone()
			for _, x := range c.vars {
				ctx.Set(x.n, x.v)
			}
			a, err := ratexpr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := ctx.Eval(a)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			if got := r.String(); got != c.want {
				t.Errorf("wrong result for %q: want %s, got %s (%#v)", c.src, c.want, got, r)
			}
			// Evaluation is idempotent.
			s, err := ctx.Eval(r)
			if err != nil {
				t.Fatalf("re-evaluating %q: %v", c.src, err)
			}
			if diff := cmp.Diff(r, s); diff != "" {
				t.Errorf("re-evaluating %q changed the result (-first +second):\n%s", c.src, diff)
			}
		})
	}
}

func TestEvalDoesNotModify(t *testing.T) {
	a, err := ratexpr.ParseString("x + 1/2")
	if err != nil {
		t.Fatal(err)
	}
	before := a.String()
	ctx := ratexpr.NewContext(ratexpr.SetVar("x", ratexpr.Int(1)))
	if _, err := ctx.Eval(a); err != nil {
		t.Fatal(err)
	}
	if a.String() != before {
		t.Errorf("evaluation changed %s to %s", before, a)
	}
}

func TestEvalNotes(t *testing.T) {
	cases := []struct {
		name string
		src  string
		opts []ratexpr.ContextOption
		want string
		note string
	}{
		{"irrational", "2^(1/2)", nil, "2 ^ (1/2)", "non-integer exponents are not supported"},
		{"irrationalvar", "x^0.5", []ratexpr.ContextOption{ratexpr.SetVar("x", ratexpr.Int(3))}, "3 ^ (1/2)", "non-integer exponents are not supported"},
		{"toolarge", "10^(10^10)", nil, "10 ^ 10000000000", "result of exponentiation is too large"},
		{"limit", "3^100", []ratexpr.ContextOption{ratexpr.PowLimit(64)}, "3 ^ 100", "result of exponentiation is too large"},
		{"limitden", "(1/3)^100", []ratexpr.ContextOption{ratexpr.PowLimit(64)}, "(1/3) ^ 100", "result of exponentiation is too large"},
		{"outofrange", "2^(2^70)", nil, "2 ^ 1180591620717411303424", "exponent out of range"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := ratexpr.NewContext(c.opts...)
			a, err := ratexpr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := ctx.Eval(a)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			if got := r.String(); got != c.want {
				t.Errorf("wrong result for %q: want %s, got %s", c.src, c.want, got)
			}
			notes := ctx.Notes()
			if len(notes) != 1 {
				t.Fatalf("want one note, got %v", notes)
			}
			if notes[0].Msg != c.note {
				t.Errorf("wrong note: want %q, got %q", c.note, notes[0].Msg)
			}
			if !ratexpr.Equal(notes[0].Expr, r) {
				t.Errorf("note is about %v, not %v", notes[0].Expr, r)
			}
			// Notes belong to one evaluation.
			if _, err := ctx.Eval(ratexpr.Int(1)); err != nil {
				t.Fatal(err)
			}
			if notes := ctx.Notes(); len(notes) != 0 {
				t.Errorf("notes survived another evaluation: %v", notes)
			}
		})
	}
}

func TestEvalPowLimitAllows(t *testing.T) {
	ctx := ratexpr.NewContext(ratexpr.PowLimit(64))
	a, err := ratexpr.ParseString("2^64")
	if err != nil {
		t.Fatal(err)
	}
	r, err := ctx.Eval(a)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.String(), "18446744073709551616"; got != want {
		t.Errorf("want %s, got %s", want, got)
	}
	if notes := ctx.Notes(); len(notes) != 0 {
		t.Errorf("unexpected notes: %v", notes)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"div", "1/0"},
		{"altdiv", "1÷0"},
		{"zerozero", "0/0"},
		{"mod", "1 % 0"},
		{"modfrac", "1/2 % 0"},
		{"pow", "0^-1"},
		{"nested", "x + 1/(y - y)"},
		{"call", "floor(1/0)"},
	}
	ctx := ratexpr.NewContext(ratexpr.SetVar("y", ratexpr.Int(2)))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := ratexpr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := ctx.Eval(a)
			if err == nil {
				t.Fatalf("evaluating %q gave %v with no error", c.src, r)
			}
			if !errors.Is(err, ratexpr.ErrDivisionByZero) {
				t.Errorf("evaluating %q: error %v is not division by zero", c.src, err)
			}
			var ae *ratexpr.ArithmeticError
			if !errors.As(err, &ae) {
				t.Errorf("evaluating %q: error %#v is not an *ArithmeticError", c.src, err)
			}
		})
	}
}

func TestEvalCircular(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		vars  map[string]string
		chain []string
	}{
		{"self", "x", map[string]string{"x": "x + 1"}, []string{"x", "x"}},
		{"pair", "a", map[string]string{"a": "b", "b": "a"}, []string{"a", "b", "a"}},
		{"inner", "c + 1", map[string]string{"c": "2 a", "a": "b", "b": "a"}, []string{"a", "b", "a"}},
		{"call", "floor x", map[string]string{"x": "y", "y": "floor x"}, []string{"x", "y", "x"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := ratexpr.NewContext()
			for k, v := range c.vars {
				e, err := ratexpr.ParseString(v)
				if err != nil {
					t.Fatalf("%q failed to parse: %v", v, err)
				}
				ctx.Set(k, e)
			}
			a, err := ratexpr.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := ctx.Eval(a)
			var ce *ratexpr.CircularReferenceError
			if !errors.As(err, &ce) {
				t.Fatalf("evaluating %q gave %v, %v; want *CircularReferenceError", c.src, r, err)
			}
			if diff := cmp.Diff(c.chain, ce.Chain); diff != "" {
				t.Errorf("wrong chain (-want +got):\n%s", diff)
			}
			// The context is usable after the error.
			r, err = ctx.Eval(ratexpr.BinaryExpr{Left: ratexpr.Int(1), Op: ratexpr.OpAdd, Right: ratexpr.Int(1)})
			if err != nil || r.String() != "2" {
				t.Errorf("evaluation after error gave %v, %v", r, err)
			}
		})
	}
}

func TestExec(t *testing.T) {
	type binding struct {
		name string
		want string
	}
	cases := []struct {
		name  string
		lines []string
		want  string
		binds []binding
	}{
		{"assign", []string{"y = 3", "x = 2 y"}, "6", []binding{{"x", "6"}, {"y", "3"}}},
		{"tuple", []string{"x = 1, y = x + 1"}, "1, 2", []binding{{"x", "1"}, {"y", "2"}}},
		{"reassign", []string{"x = 1", "x = x + 1"}, "2", []binding{{"x", "2"}}},
		{"symbolic", []string{"y = x + 1"}, "x + 1", []binding{{"y", "x + 1"}}},
		{"late", []string{"y = 2 x", "x = 4", "y"}, "8", []binding{{"y", "2 x"}, {"x", "4"}}},
		{"compare", []string{"3 = 3"}, "true", nil},
		{"comparesum", []string{"x = 2", "x + 1 = 3"}, "true", []binding{{"x", "2"}}},
		{"plain", []string{"1/3 + 1/3"}, "2/3", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := ratexpr.NewContext()
			var r ratexpr.Expr
			for _, line := range c.lines {
				a, err := ratexpr.ParseString(line)
				if err != nil {
					t.Fatalf("%q failed to parse: %v", line, err)
				}
				r, err = ctx.Exec(a)
				if err != nil {
					t.Fatalf("executing %q: %v", line, err)
				}
			}
			if got := r.String(); got != c.want {
				t.Errorf("wrong result: want %s, got %s", c.want, got)
			}
			for _, b := range c.binds {
				v, ok := ctx.Lookup(b.name)
				if !ok {
					t.Errorf("%s is not bound", b.name)
					continue
				}
				if v.String() != b.want {
					t.Errorf("%s is bound to %v, want %s", b.name, v, b.want)
				}
			}
		})
	}
}

func TestExecRejectsCircular(t *testing.T) {
	ctx := ratexpr.NewContext()
	a, err := ratexpr.ParseString("x = x + 1")
	if err != nil {
		t.Fatal(err)
	}
	r, err := ctx.Exec(a)
	var ce *ratexpr.CircularReferenceError
	if !errors.As(err, &ce) {
		t.Fatalf("want *CircularReferenceError, got %v, %v", r, err)
	}
	if ce.Name != "x" {
		t.Errorf("error names %q, not x", ce.Name)
	}
	if v, ok := ctx.Lookup("x"); ok {
		t.Errorf("x was bound to %v", v)
	}
}

func TestExecTupleStopsAtError(t *testing.T) {
	ctx := ratexpr.NewContext()
	a, err := ratexpr.ParseString("x = 1, 1/0, y = 2")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Exec(a); !errors.Is(err, ratexpr.ErrDivisionByZero) {
		t.Fatalf("want division by zero, got %v", err)
	}
	if _, ok := ctx.Lookup("x"); !ok {
		t.Error("x was not bound before the error")
	}
	if v, ok := ctx.Lookup("y"); ok {
		t.Errorf("y was bound to %v after the error", v)
	}
}

type double struct{}

func (double) Call(x *big.Rat) (*big.Rat, error) {
	return new(big.Rat).Add(x, x), nil
}

type recip struct{}

func (recip) Call(x *big.Rat) (*big.Rat, error) {
	if x.Sign() == 0 {
		return nil, &ratexpr.DomainError{X: ratexpr.NewNumber(x), Arg: 1, Func: "recip"}
	}
	return new(big.Rat).Inv(x), nil
}

func TestEvalFuncs(t *testing.T) {
	cases := []struct {
		name string
		src  string
		opts []ratexpr.ContextOption
		want string
	}{
		{"custom", "double 21", []ratexpr.ContextOption{ratexpr.SetFunc("double", double{})}, "42"},
		{"monadic", "neg 3", []ratexpr.ContextOption{ratexpr.SetFunc("neg", ratexpr.Monadic((*big.Rat).Neg))}, "-3"},
		{"nested", "double(double(1/4))", []ratexpr.ContextOption{ratexpr.SetFunc("double", double{})}, "1"},
		{"disabled", "floor 7.8", []ratexpr.ContextOption{ratexpr.DisableDefaultFuncs()}, "floor (39/5)"},
		{"removed", "floor 7.8", []ratexpr.ContextOption{ratexpr.SetFunc("floor", nil)}, "floor (39/5)"},
		{"kept", "ceil 7.8", []ratexpr.ContextOption{ratexpr.SetFunc("floor", nil)}, "8"},
		{"shadowed", "floor 7.8", []ratexpr.ContextOption{ratexpr.SetVar("floor", ratexpr.Int(2))}, "78/5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := ratexpr.EvalString(c.src, c.opts...)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			if got := r.String(); got != c.want {
				t.Errorf("wrong result for %q: want %s, got %s", c.src, c.want, got)
			}
		})
	}
}

func TestEvalFuncError(t *testing.T) {
	r, err := ratexpr.EvalString("1 + recip(1 - 1)", ratexpr.SetFunc("recip", recip{}))
	var de *ratexpr.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("want *DomainError, got %v, %v", r, err)
	}
	if de.Func != "recip" || de.Arg != 1 {
		t.Errorf("wrong error details: %#v", de)
	}
}
