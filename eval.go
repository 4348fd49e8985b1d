package ratexpr

import (
	"errors"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// Eval reduces an expression as far as possible. Variables bound in the
// context are substituted, operations on numbers are computed exactly, and
// functions are applied to numbers. Whatever cannot be reduced remains in the
// result, so the result of Eval may be evaluated again after binding more
// variables.
//
// Eval treats "=" as comparison. Use Exec to assign variables.
//
// Hard failures are errors: division by zero gives an *ArithmeticError, and a
// variable whose definition refers to itself gives a
// *CircularReferenceError. e itself is never modified.
func (ctx *Context) Eval(e Expr) (Expr, error) {
	ctx.reset()
	return ctx.eval(e)
}

// Exec evaluates a line of input as a statement. If e compares a bare name to
// an expression, as in "x = 2 y", Exec evaluates the right side and binds the
// name to the result, then returns the result. If e is a tuple, Exec executes
// each item in order; bindings made before an error remain. Any other
// expression is evaluated as by Eval.
//
// An assignment whose evaluated value still refers to the assigned name is
// rejected with a *CircularReferenceError and leaves the binding unchanged.
func (ctx *Context) Exec(e Expr) (Expr, error) {
	ctx.reset()
	t, ok := e.(Tuple)
	if !ok {
		return ctx.exec(e)
	}
	r := make(Tuple, 0, len(t))
	for _, x := range t {
		v, err := ctx.exec(x)
		if err != nil {
			return nil, err
		}
		r = append(r, v)
	}
	return r, nil
}

func (ctx *Context) exec(e Expr) (Expr, error) {
	a, ok := e.(BinaryExpr)
	if !ok || a.Op != OpEquals {
		return ctx.eval(e)
	}
	name, ok := a.Left.(Name)
	if !ok {
		return ctx.eval(e)
	}
	v, err := ctx.eval(a.Right)
	if err != nil {
		return nil, err
	}
	if refers(v, name) {
		return nil, &CircularReferenceError{Name: string(name), Chain: []string{string(name), string(name)}}
	}
	ctx.Set(string(name), v)
	return v, nil
}

// reset clears the state of the previous evaluation.
func (ctx *Context) reset() {
	ctx.notes = nil
	ctx.active = ctx.active[:0]
}

// refers reports whether e contains the name n.
func refers(e Expr, n Name) bool {
	switch e := e.(type) {
	case Name:
		return e == n
	case BinaryExpr:
		return refers(e.Left, n) || refers(e.Right, n)
	case Tuple:
		for _, x := range e {
			if refers(x, n) {
				return true
			}
		}
	}
	return false
}

// eval rewrites an expression bottom-up.
func (ctx *Context) eval(e Expr) (Expr, error) {
	switch e := e.(type) {
	case Number, Boolean:
		return e, nil
	case Name:
		v, ok := ctx.names[string(e)]
		if !ok {
			return e, nil
		}
		release, err := ctx.enter(string(e))
		if err != nil {
			return nil, err
		}
		defer release()
		return ctx.eval(v)
	case Tuple:
		r := make(Tuple, len(e))
		for i, x := range e {
			v, err := ctx.eval(x)
			if err != nil {
				return nil, err
			}
			r[i] = v
		}
		return r, nil
	case BinaryExpr:
		return ctx.evalBinary(e)
	case nil:
		panic("ratexpr: eval of nil expression")
	default:
		panic("ratexpr: invalid expression type " + e.String())
	}
}

func (ctx *Context) evalBinary(e BinaryExpr) (Expr, error) {
	l, err := ctx.eval(e.Left)
	if err != nil {
		return nil, err
	}
	r, err := ctx.eval(e.Right)
	if err != nil {
		return nil, err
	}
	switch l := l.(type) {
	case Number:
		if r, ok := r.(Number); ok {
			return ctx.arith(e.Op, l, r)
		}
	case Boolean:
		if r, ok := r.(Boolean); ok && e.Op == OpEquals {
			return Boolean(l == r), nil
		}
	case Name:
		if e.Op != OpAdjacent {
			break
		}
		fn := ctx.fn(string(l))
		x, ok := r.(Number)
		if fn == nil || !ok {
			break
		}
		v, err := fn.Call(x.Rat())
		if err != nil {
			return nil, err
		}
		return NewNumber(v), nil
	}
	return BinaryExpr{Left: l, Op: e.Op, Right: r}, nil
}

// arith applies an operator to two numbers.
func (ctx *Context) arith(op Op, x, y Number) (Expr, error) {
	a, b := x.rat(), y.rat()
	switch op {
	case OpAdd:
		return Number{r: new(big.Rat).Add(a, b)}, nil
	case OpSubtract:
		return Number{r: new(big.Rat).Sub(a, b)}, nil
	case OpMultiply, OpAdjacent:
		return Number{r: new(big.Rat).Mul(a, b)}, nil
	case OpDivide:
		if b.Sign() == 0 {
			return nil, &ArithmeticError{Op: op, Left: x, Right: y, Err: ErrDivisionByZero}
		}
		return Number{r: new(big.Rat).Quo(a, b)}, nil
	case OpModulus:
		if b.Sign() == 0 {
			return nil, &ArithmeticError{Op: op, Left: x, Right: y, Err: ErrDivisionByZero}
		}
		// a - b*trunc(a/b), so the result has the sign of a.
		q := new(big.Rat).Quo(a, b)
		trunc(q, q)
		q.Mul(q, b)
		return Number{r: q.Sub(a, q)}, nil
	case OpExponent:
		return ctx.pow(x, y)
	case OpEquals:
		return Boolean(a.Cmp(b) == 0), nil
	default:
		return BinaryExpr{Left: x, Op: op, Right: y}, nil
	}
}

// pow raises x to the power y exactly when y is an integer and the result is
// not too large. Otherwise the result is the unreduced expression, and the
// context gets a note explaining why.
func (ctx *Context) pow(x, y Number) (Expr, error) {
	unreduced := BinaryExpr{Left: x, Op: OpExponent, Right: y}
	if !y.IsInt() {
		ctx.note(unreduced, "non-integer exponents are not supported")
		return unreduced, nil
	}
	b, k := x.rat(), y.rat().Num()
	switch {
	case b.Sign() == 0:
		switch k.Sign() {
		case 0:
			return Int(1), nil
		case 1:
			return Int(0), nil
		}
		return nil, &ArithmeticError{Op: OpExponent, Left: x, Right: y, Err: ErrDivisionByZero}
	case k.Sign() == 0:
		return Int(1), nil
	case b.IsInt() && b.Num().CmpAbs(bigOne) == 0:
		// ±1 to any power, however large.
		if b.Sign() > 0 || k.Bit(0) == 0 {
			return Int(1), nil
		}
		return Int(-1), nil
	}
	if !k.IsInt64() {
		ctx.note(unreduced, "exponent out of range")
		return unreduced, nil
	}
	m := new(big.Int).Abs(k)
	limit := ctx.powlimit
	if limit == 0 {
		limit = DefaultPowLimit
	}
	if tooBig(b.Num(), m, limit) || tooBig(b.Denom(), m, limit) {
		ctx.note(unreduced, "result of exponentiation is too large")
		return unreduced, nil
	}
	n := new(big.Int).Exp(b.Num(), m, nil)
	d := new(big.Int).Exp(b.Denom(), m, nil)
	if k.Sign() < 0 {
		n, d = d, n
	}
	// SetFrac moves the sign of a negative base raised to a negative power
	// from the denominator to the numerator.
	return Number{r: new(big.Rat).SetFrac(n, d)}, nil
}

var bigOne = big.NewInt(1)

// tooBig reports whether v^m certainly has more than limit bits.
func tooBig(v, m *big.Int, limit uint64) bool {
	// v^m has more than (bitlen(v)-1)*m bits.
	l := uint64(v.BitLen())
	if l <= 1 {
		return false
	}
	return l-1 > limit/m.Uint64()
}

// Eval is a shortcut to parse an expression and evaluate it in a new context.
func Eval(src io.RuneScanner, opts ...ContextOption) (Expr, error) {
	ctx := NewContext(opts...)
	a, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return ctx.Eval(a)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (Expr, error) {
	return Eval(strings.NewReader(src), opts...)
}

// ErrDivisionByZero is the error wrapped by an *ArithmeticError for a division
// or remainder by zero.
var ErrDivisionByZero = errors.New("division by zero")

// ErrOverflow is the error wrapped by an *ArithmeticError from Approx for a
// result too large to represent.
var ErrOverflow = errors.New("result out of range")

// ArithmeticError is an error from an arithmetic operation on numbers.
// ArithmeticError unwraps to the cause, e.g. ErrDivisionByZero.
type ArithmeticError struct {
	// Op is the operator.
	Op Op
	// Left and Right are the operands.
	Left, Right Expr
	// Err is the cause.
	Err error
}

func (err *ArithmeticError) Error() string {
	return err.Err.Error() + " in " + BinaryExpr{Left: err.Left, Op: err.Op, Right: err.Right}.String()
}

func (err *ArithmeticError) Unwrap() error {
	return err.Err
}

// CircularReferenceError is an error from a variable whose value depends on
// itself.
type CircularReferenceError struct {
	// Name is the variable that was found in its own definition.
	Name string
	// Chain is the path of resolutions from Name back to itself.
	Chain []string
}

func (err *CircularReferenceError) Error() string {
	return "circular reference to " + strconv.Quote(err.Name) + ": " + strings.Join(err.Chain, " -> ")
}

// NameError is an error from a variable that has no value where one is
// required.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// ValueError is an error from an expression that is not a number where a
// number is required.
type ValueError struct {
	// X is the expression.
	X Expr
}

func (err *ValueError) Error() string {
	return "not a number: " + err.X.String()
}
