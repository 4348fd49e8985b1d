// Package ratexpr implements an exact rational calculator.
//
// The syntax of expressions is intended to be similar to math you'd write in
// your notes. "2 x y" is a product of three terms, and "floor x" applies the
// floor function to x. "-2^2^n" is the same as "-(2^(2^n))", where "a^b" is
// exponentiation. "a = b" compares a to b, or assigns b to a when executed as
// a statement. A comma-separated list of expressions is a tuple.
//
// Numbers are arbitrary-precision rationals, so "1/3 + 1/3 + 1/3" is exactly
// 1. Evaluation reduces what it can and leaves the rest: with x unbound,
// "2 + 3 + x" evaluates to "5 + x", which can be evaluated again once x has a
// value. Exponentiation is exact for integer exponents only, so "2^(1/2)"
// stays as it is. Context.Approx gives decimal approximations of such
// results.
package ratexpr
