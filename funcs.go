package ratexpr

import (
	"math/big"
	"strconv"
)

// Func is a function from rationals to rationals. Functions are applied by
// juxtaposition: "floor x" applies floor to the value of x once x reduces to
// a number.
type Func interface {
	// Call evaluates the function at x. Call must not modify x. If x is
	// outside the function's domain, Call returns a *DomainError.
	Call(x *big.Rat) (*big.Rat, error)
}

var globalfuncs = map[string]Func{
	"floor": Monadic(floor),
	"ceil":  Monadic(ceil),
	"round": Monadic(round),
	"trunc": Monadic(trunc),
	"fract": Monadic(fract),
	"abs":   Monadic((*big.Rat).Abs),
}

// Builtins returns the sorted names of the default functions.
func Builtins() []string {
	v := make([]string, 0, len(globalfuncs))
	for k := range globalfuncs {
		v = append(v, k)
	}
	sortstrs(v)
	return v
}

type monadic struct {
	f func(z, x *big.Rat) *big.Rat
}

func (m monadic) Call(x *big.Rat) (*big.Rat, error) {
	z := new(big.Rat)
	m.f(z, x)
	return z, nil
}

// Monadic wraps a total function of one variable into a Func. f must set z to
// its result without modifying x; its return value is ignored.
func Monadic(f func(z, x *big.Rat) *big.Rat) Func {
	return monadic{f}
}

// floor sets z to the greatest integer not greater than x.
func floor(z, x *big.Rat) *big.Rat {
	// Euclidean division rounds toward negative infinity for a positive
	// divisor, and Rat denominators are always positive.
	q := new(big.Int).Div(x.Num(), x.Denom())
	return z.SetInt(q)
}

// ceil sets z to the least integer not less than x.
func ceil(z, x *big.Rat) *big.Rat {
	n := new(big.Int).Neg(x.Num())
	q := n.Div(n, x.Denom())
	return z.SetInt(q.Neg(q))
}

// trunc sets z to the integer part of x, rounding toward zero.
func trunc(z, x *big.Rat) *big.Rat {
	q := new(big.Int).Quo(x.Num(), x.Denom())
	return z.SetInt(q)
}

// round sets z to the integer nearest x, rounding halves away from zero.
func round(z, x *big.Rat) *big.Rat {
	// trunc(x + sign(x)/2)
	h := big.NewRat(int64(x.Sign()), 2)
	h.Add(h, x)
	return trunc(z, h)
}

// fract sets z to the fractional part of x, which has the sign of x.
func fract(z, x *big.Rat) *big.Rat {
	var t big.Rat
	trunc(&t, x)
	return z.Sub(x, &t)
}

// DomainError is an error returned when a function is called on arguments
// outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X Expr
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}
