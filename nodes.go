package ratexpr

import (
	"math/big"
	"strconv"
	"strings"
)

// Expr is an expression tree. Expressions are immutable values: evaluation
// always builds new trees rather than modifying existing ones.
//
// The implementations of Expr are Number, Name, Boolean, BinaryExpr, and
// Tuple.
type Expr interface {
	// String formats the expression in infix notation. Parsing the result
	// of a Number, Name, or BinaryExpr of those gives an expression that
	// evaluates the same way as the original.
	String() string
	// Equal reports whether the expression is structurally equal to another.
	Equal(Expr) bool

	fmt(b *strings.Builder)
	prec() int8
}

// Number is an exact rational number.
type Number struct {
	// r is never modified after construction. A nil r is zero.
	r *big.Rat
}

// Name is an identifier, either an unbound variable or a function name.
type Name string

// Boolean is the result of a comparison.
type Boolean bool

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	Left  Expr
	Op    Op
	Right Expr
}

// Tuple is a fixed sequence of expressions.
type Tuple []Expr

// Op is a binary operator.
type Op int8

const (
	opNone Op = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus
	OpExponent
	OpEquals
	// OpAdjacent is the implicit operator between juxtaposed terms, as in
	// "2 x" or "floor x". It is multiplication unless the left operand is the
	// name of a function, in which case it is function application.
	OpAdjacent
)

var opNames = [...]string{
	opNone:     "None",
	OpAdd:      "Add",
	OpSubtract: "Subtract",
	OpMultiply: "Multiply",
	OpDivide:   "Divide",
	OpModulus:  "Modulus",
	OpExponent: "Exponent",
	OpEquals:   "Equals",
	OpAdjacent: "Adjacent",
}

var opSymbols = [...]string{
	OpAdd:      " + ",
	OpSubtract: " - ",
	OpMultiply: " * ",
	OpDivide:   " / ",
	OpModulus:  " % ",
	OpExponent: " ^ ",
	OpEquals:   " = ",
	OpAdjacent: " ",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
	return opNames[op]
}

// Symbol returns the operator as it is written in infix notation, or the
// empty string for Adjacent.
func (op Op) Symbol() string {
	if op <= opNone || int(op) >= len(opSymbols) {
		return ""
	}
	return strings.TrimSpace(opSymbols[op])
}

// NewNumber creates a Number with the value of r. Later changes to r do not
// affect the Number.
func NewNumber(r *big.Rat) Number {
	return Number{r: new(big.Rat).Set(r)}
}

// Int creates an integer Number.
func Int(x int64) Number {
	return Number{r: new(big.Rat).SetInt64(x)}
}

// Frac creates the Number a/b. Panics if b is zero.
func Frac(a, b int64) Number {
	return Number{r: big.NewRat(a, b)}
}

// zero is shared by all zero-valued Numbers and must not be modified.
var zero = new(big.Rat)

// rat returns the number's value without copying. The result must not be
// modified.
func (n Number) rat() *big.Rat {
	if n.r == nil {
		return zero
	}
	return n.r
}

// Rat returns a copy of the number's value.
func (n Number) Rat() *big.Rat {
	return new(big.Rat).Set(n.rat())
}

// IsInt reports whether the number is an integer.
func (n Number) IsInt() bool {
	return n.rat().IsInt()
}

// Sign returns -1, 0, or 1 according to the sign of n.
func (n Number) Sign() int {
	return n.rat().Sign()
}

// Precedence levels for printing. Higher binds tighter.
const (
	precTuple int8 = iota
	precEquals
	precAdd
	precMul
	precNeg
	precPow
	precAtom
)

// opprec gives the printing precedence of a binary operator.
func opprec(op Op) int8 {
	switch op {
	case OpEquals:
		return precEquals
	case OpAdd, OpSubtract:
		return precAdd
	case OpMultiply, OpDivide, OpModulus, OpAdjacent:
		return precMul
	case OpExponent:
		return precPow
	default:
		return precAtom
	}
}

func (n Number) String() string {
	return n.rat().RatString()
}

func (n Name) String() string {
	return string(n)
}

func (v Boolean) String() string {
	return strconv.FormatBool(bool(v))
}

func (e BinaryExpr) String() string {
	var b strings.Builder
	e.fmt(&b)
	return b.String()
}

func (t Tuple) String() string {
	var b strings.Builder
	t.fmt(&b)
	return b.String()
}

func (n Number) fmt(b *strings.Builder) { b.WriteString(n.String()) }
func (n Name) fmt(b *strings.Builder)   { b.WriteString(string(n)) }
func (v Boolean) fmt(b *strings.Builder) { b.WriteString(v.String()) }

func (e BinaryExpr) fmt(b *strings.Builder) {
	p := opprec(e.Op)
	// Left-associative operators need brackets on the right at equal
	// precedence, exponentiation on the left. Equality is non-associative.
	lp, rp := p, p+1
	switch e.Op {
	case OpExponent:
		lp, rp = p+1, p
	case OpEquals:
		lp, rp = p+1, p+1
	}
	fmtoperand(b, e.Left, lp)
	b.WriteString(opSymbols[e.Op])
	if e.Op == OpAdjacent && startsWithSign(e.Right) {
		// "x -1" would parse as a subtraction.
		rp = precAtom
	}
	fmtoperand(b, e.Right, rp)
}

func (t Tuple) fmt(b *strings.Builder) {
	for i, x := range t {
		if i > 0 {
			b.WriteString(", ")
		}
		fmtoperand(b, x, precEquals)
	}
}

// fmtoperand formats x, bracketing it if it binds less tightly than min.
func fmtoperand(b *strings.Builder, x Expr, min int8) {
	if x == nil {
		b.WriteString("<nil>")
		return
	}
	if x.prec() >= min {
		x.fmt(b)
		return
	}
	b.WriteByte('(')
	x.fmt(b)
	b.WriteByte(')')
}

// startsWithSign reports whether the formatted x begins with a minus sign.
func startsWithSign(x Expr) bool {
	switch x := x.(type) {
	case Number:
		return x.Sign() < 0
	case BinaryExpr:
		return x.Left.prec() >= opprec(x.Op) && startsWithSign(x.Left)
	}
	return false
}

func (n Number) prec() int8 {
	r := n.rat()
	switch {
	case !r.IsInt():
		// 1/3 prints as a division.
		return precMul
	case r.Sign() < 0:
		return precNeg
	default:
		return precAtom
	}
}

func (Name) prec() int8         { return precAtom }
func (Boolean) prec() int8      { return precAtom }
func (e BinaryExpr) prec() int8 { return opprec(e.Op) }
func (Tuple) prec() int8        { return precTuple }

// GoString formats the number structurally, e.g. Number(1/3).
func (n Number) GoString() string {
	return "Number(" + n.String() + ")"
}

func (n Name) GoString() string {
	return "Name(" + strconv.Quote(string(n)) + ")"
}

func (v Boolean) GoString() string {
	return "Boolean(" + v.String() + ")"
}

// GoString formats the expression structurally, e.g.
// BinaryExpr(Name("x"), Adjacent, Number(3)).
func (e BinaryExpr) GoString() string {
	return "BinaryExpr(" + gostring(e.Left) + ", " + e.Op.String() + ", " + gostring(e.Right) + ")"
}

func (t Tuple) GoString() string {
	var b strings.Builder
	b.WriteString("Tuple(")
	for i, x := range t {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(gostring(x))
	}
	b.WriteByte(')')
	return b.String()
}

func gostring(x Expr) string {
	if x == nil {
		return "nil"
	}
	if g, ok := x.(interface{ GoString() string }); ok {
		return g.GoString()
	}
	return x.String()
}

// Equal reports whether two expressions are structurally equal. Numbers are
// equal when their values are.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func (n Number) Equal(x Expr) bool {
	m, ok := x.(Number)
	return ok && n.rat().Cmp(m.rat()) == 0
}

func (n Name) Equal(x Expr) bool {
	m, ok := x.(Name)
	return ok && n == m
}

func (v Boolean) Equal(x Expr) bool {
	w, ok := x.(Boolean)
	return ok && v == w
}

func (e BinaryExpr) Equal(x Expr) bool {
	f, ok := x.(BinaryExpr)
	return ok && e.Op == f.Op && Equal(e.Left, f.Left) && Equal(e.Right, f.Right)
}

func (t Tuple) Equal(x Expr) bool {
	u, ok := x.(Tuple)
	if !ok || len(t) != len(u) {
		return false
	}
	for i := range t {
		if !Equal(t[i], u[i]) {
			return false
		}
	}
	return true
}

var (
	_ Expr = Number{}
	_ Expr = Name("")
	_ Expr = Boolean(false)
	_ Expr = BinaryExpr{}
	_ Expr = Tuple(nil)
)
