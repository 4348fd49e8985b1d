package ratexpr

import (
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// Approx computes a floating-point approximation of a numeric expression to
// the context's precision. It is meant for results of Eval that remain
// unreduced only because exact arithmetic cannot express them, like
// "2^(1/2)". Eval itself never approximates.
//
// Names are not looked up: a name that is not a function applied to a number
// gives a *NameError. Booleans and tuples give a *ValueError. A negative base
// with a non-integer exponent gives a *DomainError. A result too large for
// big.Float gives an *ArithmeticError wrapping ErrOverflow.
func (ctx *Context) Approx(e Expr) (*big.Float, error) {
	return ctx.approx(e)
}

func (ctx *Context) approx(e Expr) (*big.Float, error) {
	switch e := e.(type) {
	case Number:
		return new(big.Float).SetPrec(ctx.Prec()).SetRat(e.rat()), nil
	case Name:
		return nil, &NameError{Name: string(e)}
	case BinaryExpr:
		return ctx.approxBinary(e)
	default:
		return nil, &ValueError{X: e}
	}
}

func (ctx *Context) approxBinary(e BinaryExpr) (*big.Float, error) {
	if name, ok := e.Left.(Name); ok && e.Op == OpAdjacent {
		if fn := ctx.fn(string(name)); fn != nil {
			return ctx.approxCall(fn, e.Right)
		}
	}
	l, err := ctx.approx(e.Left)
	if err != nil {
		return nil, err
	}
	r, err := ctx.approx(e.Right)
	if err != nil {
		return nil, err
	}
	z, err := ctx.approxOp(e, l, r)
	if err != nil {
		return nil, err
	}
	// big.Float panics on operations like Inf - Inf, so no infinity may
	// escape to the next operation.
	if z.IsInf() {
		return nil, &ArithmeticError{Op: e.Op, Left: e.Left, Right: e.Right, Err: ErrOverflow}
	}
	return z, nil
}

// approxOp applies the operator of e to finite operands.
func (ctx *Context) approxOp(e BinaryExpr, l, r *big.Float) (*big.Float, error) {
	switch e.Op {
	case OpAdd:
		return l.Add(l, r), nil
	case OpSubtract:
		return l.Sub(l, r), nil
	case OpMultiply, OpAdjacent:
		return l.Mul(l, r), nil
	case OpDivide:
		if r.Sign() == 0 {
			return nil, &ArithmeticError{Op: e.Op, Left: e.Left, Right: e.Right, Err: ErrDivisionByZero}
		}
		return l.Quo(l, r), nil
	case OpModulus:
		if r.Sign() == 0 {
			return nil, &ArithmeticError{Op: e.Op, Left: e.Left, Right: e.Right, Err: ErrDivisionByZero}
		}
		// l - r*trunc(l/r)
		q := new(big.Float).SetPrec(ctx.Prec()).Quo(l, r)
		if q.IsInf() {
			return nil, &ArithmeticError{Op: e.Op, Left: e.Left, Right: e.Right, Err: ErrOverflow}
		}
		t, _ := q.Int(nil)
		q.SetInt(t).Mul(q, r)
		return l.Sub(l, q), nil
	case OpExponent:
		return ctx.approxPow(e, l, r)
	default:
		return nil, &ValueError{X: e}
	}
}

// approxCall applies a function to an approximated argument. The argument is
// converted exactly to a rational, so the function itself is exact.
func (ctx *Context) approxCall(fn Func, arg Expr) (*big.Float, error) {
	x, err := ctx.approx(arg)
	if err != nil {
		return nil, err
	}
	if x.IsInf() {
		return nil, &DomainError{X: arg, Arg: 1}
	}
	q, _ := x.Rat(nil)
	v, err := fn.Call(q)
	if err != nil {
		return nil, err
	}
	return new(big.Float).SetPrec(ctx.Prec()).SetRat(v), nil
}

func (ctx *Context) approxPow(e BinaryExpr, l, r *big.Float) (*big.Float, error) {
	switch l.Sign() {
	case 0:
		switch r.Sign() {
		case 0:
			return l.SetInt64(1), nil
		case 1:
			return l, nil
		}
		return nil, &ArithmeticError{Op: e.Op, Left: e.Left, Right: e.Right, Err: ErrDivisionByZero}
	case -1:
		// A negative base is only defined for integer exponents.
		if !r.IsInt() {
			return nil, &DomainError{X: e.Left, Func: "^"}
		}
		t, _ := r.Int(nil)
		l.Neg(l)
		bigfloat.Pow(l, l, r)
		if t.Bit(0) == 1 {
			l.Neg(l)
		}
		return l, nil
	}
	return bigfloat.Pow(l, l, r), nil
}
