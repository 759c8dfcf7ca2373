// Package mathexpr implements an arbitrary-precision expression evaluator.
//
// The syntax of expressions is intended to be similar to math you'd write in
// your notes, with maybe a few more spaces. "2 x y" is a multiplication of
// three terms. So is "{2}[x](y)" (although not "2 xy"). "-2^2^n" is the same
// as "-(2^(2^n))", where "a^b" is exponentiation.
//
// Beyond real numbers, expressions have booleans (true, false, comparisons,
// &&, ||, !), double-quoted strings, and tuples ("1, 2"). A name assigned
// with "=" or a compound operator like "+=" keeps its value in the context
// for later statements, and statements are separated by semicolons. The math
// constants pi, tau, e, phi, sqrt2, ln2, and ln10 are always defined and
// cannot be reassigned.
//
// The input "" evaluates to Empty, which formats as the empty string, as do
// assignments and a trailing semicolon. Division of a nonzero number by zero
// gives a signed infinity; 0/0 and inf/inf are domain errors. Function
// arguments are evaluated before the call, so if(false, 0/0, 1) is a domain
// error just like 0/0 alone. Format turns
// any evaluation result or error into the display text of a calculator.
//
// Variables let you parse an expression once and evaluate it for many inputs,
// or you can clone contexts for several expressions to use the same variable
// definitions everywhere.
package mathexpr
