package mathexpr

import (
	"math"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a function callable from expressions. Functions may but generally
// should not look up variables.
type Func interface {
	// Call evaluates the function. args has a length for which CanCall
	// returned true. Call must not modify the values passed in args, including
	// the *big.Float inside a Number. A nil result with a nil error is
	// treated as Empty.
	Call(ctx *Context, args []Value) (Value, error)

	// CanCall returns whether the function can be called with n arguments.
	// This controls how the expression parser handles instances of this
	// function:
	//
	// 	1.	If a bracketed list of n > 0 expressions follows a function, the
	//		parser treats it as an argument list if CanCall(n). (If n is 1 and
	//		!CanCall(1) and CanCall(0), then the list is a multiplication;
	//		otherwise, it is rejected.)
	//
	// 	2.	If a bare term follows a function and CanCall(1), then the parser
	//		treats the term as an argument to the function. E.g., "exp x" is
	//		parsed as "exp(x)". (If !CanCall(1), then it is a multiplication.)
	CanCall(n int) bool
}

var globalfuncs = map[string]Func{
	"exp":  Monadic(exp),
	"ln":   Monadic(ln),
	"log":  Builtin(1, 2, logb),
	"sqrt": Monadic((*big.Float).Sqrt),
	"cbrt": Float64Func(math.Cbrt),

	// Trig and hyperbolic functions are computed in float64.
	"sin":   Float64Func(math.Sin),
	"cos":   Float64Func(math.Cos),
	"tan":   Float64Func(math.Tan),
	"asin":  Float64Func(math.Asin),
	"acos":  Float64Func(math.Acos),
	"atan":  Float64Func(math.Atan),
	"sinh":  Float64Func(math.Sinh),
	"cosh":  Float64Func(math.Cosh),
	"tanh":  Float64Func(math.Tanh),
	"asinh": Float64Func(math.Asinh),
	"acosh": Float64Func(math.Acosh),
	"atanh": Float64Func(math.Atanh),
	"atan2": Builtin(2, 2, atan2),

	"abs":   Monadic((*big.Float).Abs),
	"floor": Monadic(floor),
	"ceil":  Monadic(ceil),
	"round": Monadic(round),
	"trunc": Monadic(trunc),
	"min":   Builtin(1, -1, extremum(-1)),
	"max":   Builtin(1, -1, extremum(1)),

	"if":       Builtin(3, 3, cond),
	"len":      Builtin(1, 1, length),
	"typeof":   Builtin(1, 1, typeof),
	"str":      Builtin(1, 1, str),
	"num":      Builtin(1, 1, num),
	"contains": Builtin(2, 2, contains),
	"upper":    Builtin(1, 1, strfn(strings.ToUpper)),
	"lower":    Builtin(1, 1, strfn(strings.ToLower)),
	"trim":     Builtin(1, 1, strfn(strings.TrimSpace)),
}

// DefaultFuncs returns the names of the functions available to every parse
// unless disabled.
func DefaultFuncs() []string {
	r := make([]string, 0, len(globalfuncs))
	for k := range globalfuncs {
		r = append(r, k)
	}
	sortstrs(r)
	return r
}

type monadic struct {
	f func(out, in *big.Float) *big.Float
}

func (m monadic) Call(ctx *Context, args []Value) (r Value, err error) {
	x, ok := args[0].(Number)
	if !ok {
		return nil, &ArgError{Arg: 1, Want: "a number", Got: args[0].Kind()}
	}
	in := x.val()
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		nan, ok := p.(big.ErrNaN)
		if !ok {
			panic(p)
		}
		r, err = nil, &DomainError{X: in, Arg: 1, Err: nan}
	}()
	out := ctx.newFloat()
	m.f(out, in)
	return Number{out}, nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one real variable into a Func. f must set out
// to its result at the precision out already has; its return value is always
// ignored. f must not modify in. If f is called on an argument outside its
// domain, it should panic with big.ErrNaN.
func Monadic(f func(out, in *big.Float) *big.Float) Func {
	return monadic{f}
}

type niladic struct {
	f func(out *big.Float) *big.Float
}

func (n niladic) Call(ctx *Context, args []Value) (Value, error) {
	out := ctx.newFloat()
	n.f(out)
	return Number{out}, nil
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a function of zero variables, generally a function which
// computes a constant, into a Func. f must set out to its result; its return
// value is always ignored. Unlike Monadic, the wrapped function is expected
// never to panic.
func Niladic(f func(out *big.Float) *big.Float) Func {
	return niladic{f}
}

type float64func struct {
	f func(float64) float64
}

func (g float64func) Call(ctx *Context, args []Value) (Value, error) {
	x, ok := args[0].(Number)
	if !ok {
		return nil, &ArgError{Arg: 1, Want: "a number", Got: args[0].Kind()}
	}
	r := g.f(x.Float64())
	if math.IsNaN(r) {
		return nil, &DomainError{X: x.val(), Arg: 1}
	}
	return Number{ctx.newFloat().SetFloat64(r)}, nil
}

func (g float64func) CanCall(n int) bool {
	return n == 1
}

// Float64Func wraps a function of one float64 into a Func. The argument is
// rounded to float64, and a NaN result becomes a DomainError.
func Float64Func(f func(float64) float64) Func {
	return float64func{f}
}

type builtin struct {
	min, max int
	f        func(ctx *Context, args []Value) (Value, error)
}

func (b builtin) Call(ctx *Context, args []Value) (Value, error) {
	return b.f(ctx, args)
}

func (b builtin) CanCall(n int) bool {
	return n >= b.min && (b.max < 0 || n <= b.max)
}

// Builtin wraps a function of any values into a Func. The function accepts
// between lo and hi arguments inclusive. If hi is negative, there is no
// upper limit.
func Builtin(lo, hi int, f func(ctx *Context, args []Value) (Value, error)) Func {
	return builtin{lo, hi, f}
}

// numArg gets argument i as a number.
func numArg(args []Value, i int) (*big.Float, error) {
	x, ok := args[i].(Number)
	if !ok {
		return nil, &ArgError{Arg: i + 1, Want: "a number", Got: args[i].Kind()}
	}
	return x.val(), nil
}

// expLimit bounds the magnitude of arguments to exp. Anything larger
// overflows or underflows the exponent range of big.Float.
var expLimit = new(big.Float).SetInt64(1 << 31)

// cmpAbs compares |x| and |y|.
func cmpAbs(x, y *big.Float) int {
	return new(big.Float).Abs(x).Cmp(new(big.Float).Abs(y))
}

func exp(out, in *big.Float) *big.Float {
	switch {
	case in.IsInf() && in.Signbit(), in.Sign() < 0 && cmpAbs(in, expLimit) > 0:
		return out.SetInt64(0)
	case in.IsInf(), cmpAbs(in, expLimit) > 0:
		return out.SetInf(false)
	}
	return bigfloat.Exp(out, in)
}

func ln(out, in *big.Float) *big.Float {
	switch {
	case in.Sign() < 0:
		panic(big.ErrNaN{})
	case in.Sign() == 0:
		return out.SetInf(true)
	case in.IsInf():
		return out.SetInf(false)
	}
	return bigfloat.Log(out, in)
}

func logb(ctx *Context, args []Value) (Value, error) {
	x, err := numArg(args, 0)
	if err != nil {
		return nil, err
	}
	if x.Sign() < 0 {
		return nil, &DomainError{X: x, Arg: 1}
	}
	b := ctx.newFloat().SetInt64(10)
	if len(args) == 2 {
		if b, err = numArg(args, 1); err != nil {
			return nil, err
		}
		if b.Sign() <= 0 || b.IsInf() || b.Cmp(big.NewFloat(1)) == 0 {
			return nil, &DomainError{X: b, Arg: 2}
		}
	}
	n := ln(ctx.newFloat(), x)
	d := ln(ctx.newFloat(), b)
	return Number{n.Quo(n, d)}, nil
}

func atan2(ctx *Context, args []Value) (Value, error) {
	y, err := numArg(args, 0)
	if err != nil {
		return nil, err
	}
	x, err := numArg(args, 1)
	if err != nil {
		return nil, err
	}
	fy, _ := y.Float64()
	fx, _ := x.Float64()
	return Number{ctx.newFloat().SetFloat64(math.Atan2(fy, fx))}, nil
}

func trunc(out, in *big.Float) *big.Float {
	if in.IsInf() || in.IsInt() {
		return out.Set(in)
	}
	i, _ := in.Int(nil)
	out.SetInt(i)
	if out.Sign() == 0 && in.Signbit() {
		out.Neg(out)
	}
	return out
}

func floor(out, in *big.Float) *big.Float {
	trunc(out, in)
	if in.Sign() < 0 && out.Cmp(in) != 0 {
		out.Sub(out, big.NewFloat(1))
	}
	return out
}

func ceil(out, in *big.Float) *big.Float {
	trunc(out, in)
	if in.Sign() > 0 && out.Cmp(in) != 0 {
		out.Add(out, big.NewFloat(1))
	}
	return out
}

var half = big.NewFloat(0.5)

// round rounds half away from zero.
func round(out, in *big.Float) *big.Float {
	if in.IsInf() || in.IsInt() {
		return out.Set(in)
	}
	trunc(out, in)
	frac := new(big.Float).SetPrec(in.Prec()).Sub(in, out)
	if cmpAbs(frac, half) >= 0 {
		if in.Sign() < 0 {
			out.Sub(out, big.NewFloat(1))
		} else {
			out.Add(out, big.NewFloat(1))
		}
	}
	return out
}

// extremum creates a min or max function over numbers. The arguments may be
// given directly or as a single tuple.
func extremum(sign int) func(*Context, []Value) (Value, error) {
	return func(ctx *Context, args []Value) (Value, error) {
		if len(args) == 1 {
			if t, ok := args[0].(Tuple); ok {
				if len(t) == 0 {
					return nil, &ArgError{Arg: 1, Want: "a non-empty tuple", Got: KindTuple}
				}
				args = t
			}
		}
		var r *big.Float
		for i := range args {
			x, err := numArg(args, i)
			if err != nil {
				return nil, err
			}
			if r == nil || x.Cmp(r)*sign > 0 {
				r = x
			}
		}
		return Number{r}, nil
	}
}

// cond selects args[1] or args[2] by the boolean args[0]. Like every Func, it
// receives its arguments already evaluated, so an error in the branch not
// taken still fails the call.
func cond(ctx *Context, args []Value) (Value, error) {
	c, ok := args[0].(Bool)
	if !ok {
		return nil, &ArgError{Arg: 1, Want: "a boolean", Got: args[0].Kind()}
	}
	if c {
		return args[1], nil
	}
	return args[2], nil
}

func length(ctx *Context, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case String:
		return Number{ctx.newFloat().SetInt64(int64(utf8.RuneCountInString(string(v))))}, nil
	case Tuple:
		return Number{ctx.newFloat().SetInt64(int64(len(v)))}, nil
	default:
		return nil, &ArgError{Arg: 1, Want: "a string or tuple", Got: v.Kind()}
	}
}

func typeof(ctx *Context, args []Value) (Value, error) {
	return String(args[0].Kind().String()), nil
}

func str(ctx *Context, args []Value) (Value, error) {
	if s, ok := args[0].(String); ok {
		return s, nil
	}
	return String(args[0].String()), nil
}

func num(ctx *Context, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case Number:
		return v, nil
	case String:
		s := strings.TrimSpace(string(v))
		switch s {
		case "inf", "+inf", "Inf", "+Inf", "∞":
			return Number{ctx.newFloat().SetInf(false)}, nil
		case "-inf", "-Inf", "-∞":
			return Number{ctx.newFloat().SetInf(true)}, nil
		}
		x, _, err := ctx.newFloat().Parse(s, 10)
		if err != nil {
			return nil, &ArgError{Arg: 1, Want: "a numeric string", Got: KindString}
		}
		return Number{x}, nil
	case Bool:
		if v {
			return Number{ctx.newFloat().SetInt64(1)}, nil
		}
		return Number{ctx.newFloat()}, nil
	default:
		return nil, &ArgError{Arg: 1, Want: "a string, number, or boolean", Got: v.Kind()}
	}
}

func contains(ctx *Context, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case String:
		sub, ok := args[1].(String)
		if !ok {
			return nil, &ArgError{Arg: 2, Want: "a string", Got: args[1].Kind()}
		}
		return Bool(strings.Contains(string(v), string(sub))), nil
	case Tuple:
		for _, x := range v {
			if Equal(x, args[1]) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	default:
		return nil, &ArgError{Arg: 1, Want: "a string or tuple", Got: v.Kind()}
	}
}

// strfn wraps a string transformation into a builtin.
func strfn(f func(string) string) func(*Context, []Value) (Value, error) {
	return func(ctx *Context, args []Value) (Value, error) {
		s, ok := args[0].(String)
		if !ok {
			return nil, &ArgError{Arg: 1, Want: "a string", Got: args[0].Kind()}
		}
		return String(f(string(s))), nil
	}
}
