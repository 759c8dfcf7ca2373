package mathexpr

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// Value is the result of evaluating an expression. It is one of Empty, Number,
// Bool, String, or Tuple. Values are immutable.
type Value interface {
	// Kind reports which kind of value this is.
	Kind() Kind
	// String formats the value for display.
	String() string

	value()
}

// Kind identifies the type of a Value.
type Kind int8

const (
	KindEmpty Kind = iota
	KindNumber
	KindBool
	KindString
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindString:
		return "string"
	case KindTuple:
		return "tuple"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Empty is the value of an empty expression, an assignment, or a statement
// chain ending in a semicolon. It formats as the empty string.
type Empty struct{}

func (Empty) Kind() Kind     { return KindEmpty }
func (Empty) String() string { return "" }
func (Empty) value()         {}

// Number is a real number. The zero value is 0.
type Number struct {
	x *big.Float
}

// NewNumber creates a Number holding a copy of x.
func NewNumber(x *big.Float) Number {
	return Number{new(big.Float).Copy(x)}
}

// Float64Number creates a Number from a float64 at 53 bits of precision.
// Panics if f is NaN.
func Float64Number(f float64) Number {
	return Number{new(big.Float).SetFloat64(f)}
}

func (Number) Kind() Kind { return KindNumber }
func (Number) value()     {}

// Big returns a copy of the number's value.
func (n Number) Big() *big.Float {
	return new(big.Float).Copy(n.val())
}

// Float64 returns the float64 nearest to the number.
func (n Number) Float64() float64 {
	f, _ := n.val().Float64()
	return f
}

func (n Number) val() *big.Float {
	if n.x == nil {
		return new(big.Float)
	}
	return n.x
}

var (
	fixedMax = new(big.Float).SetFloat64(1e21)
	fixedMin = new(big.Float).SetFloat64(1e-7)
)

// String formats the number with the fewest digits that identify it at its
// precision. Magnitudes in [1e-7, 1e21) use plain decimal notation; others use
// exponent notation. Infinities are inf and -inf.
func (n Number) String() string {
	x := n.val()
	if x.IsInf() {
		if x.Signbit() {
			return "-inf"
		}
		return "inf"
	}
	if x.Sign() == 0 {
		// Negative zero keeps its sign for arithmetic like 1/-0 but displays
		// as plain zero.
		return "0"
	}
	a := new(big.Float).Abs(x)
	if a.Cmp(fixedMin) >= 0 && a.Cmp(fixedMax) < 0 {
		return x.Text('f', -1)
	}
	return gtext(x, -1)
}

// hugeExp is the binary exponent beyond which gtext scales by a power of ten
// before formatting. big.Float.Text expands the exact decimal value, which
// takes time proportional to the exponent.
const hugeExp = 4096

// gtext formats x like x.Text('g', digits), taking time independent of the
// size of x's exponent. For huge exponents, digits < 0 means as many digits as
// x's precision determines rather than the shortest exact representation.
func gtext(x *big.Float, digits int) string {
	if x.IsInf() || x.Sign() == 0 {
		return x.Text('g', digits)
	}
	if e := x.MantExp(nil); -hugeExp <= e && e <= hugeExp {
		return x.Text('g', digits)
	}
	// x = y * 10^k with 1 <= y < 10.
	prec := x.Prec() + 64
	a := new(big.Float).SetPrec(prec).Abs(x)
	ln10 := bigfloat.Log(new(big.Float).SetPrec(prec), big.NewFloat(10))
	l := bigfloat.Log(new(big.Float).SetPrec(prec), a)
	l.Quo(l, ln10)
	k, _ := l.Int64()
	if l.Sign() < 0 && !l.IsInt() {
		k--
	}
	s := new(big.Float).SetPrec(prec).SetInt64(-k)
	s.Mul(s, ln10)
	s = bigfloat.Exp(new(big.Float).SetPrec(prec), s)
	y := s.Mul(s, a)
	ten := big.NewFloat(10)
	switch {
	case y.Cmp(ten) >= 0:
		y.Quo(y, ten)
		k++
	case y.Cmp(big.NewFloat(1)) < 0:
		y.Mul(y, ten)
		k--
	}
	if digits < 0 {
		digits = max(int(float64(x.Prec())*math.Log10(2)), 1)
	}
	m := y.Text('g', digits)
	if strings.HasPrefix(m, "10") {
		// The mantissa rounded up to 10.
		m = "1"
		k++
	}
	var b strings.Builder
	if x.Signbit() {
		b.WriteByte('-')
	}
	b.WriteString(m)
	b.WriteString("e")
	if k < 0 {
		b.WriteByte('-')
		k = -k
	} else {
		b.WriteByte('+')
	}
	if k < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(k, 10))
	return b.String()
}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) value()     {}

func (b Bool) String() string {
	return strconv.FormatBool(bool(b))
}

// String is a string value. It formats as a quoted string literal which
// parses back to the same string.
type String string

func (String) Kind() Kind { return KindString }
func (String) value()     {}

func (s String) String() string {
	return quote(string(s))
}

// quote formats a string literal using only the escapes the lexer accepts.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Tuple is an ordered sequence of values.
type Tuple []Value

func (Tuple) Kind() Kind { return KindTuple }
func (Tuple) value()     {}

func (t Tuple) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range t {
		if i > 0 {
			b.WriteString(", ")
		}
		if v.Kind() == KindEmpty {
			b.WriteString("()")
			continue
		}
		b.WriteString(v.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Equal reports whether two values are the same kind and have the same
// contents. Numbers are equal if they compare equal regardless of precision.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Empty:
		return b.Kind() == KindEmpty
	case Number:
		b, ok := b.(Number)
		return ok && a.val().Cmp(b.val()) == 0
	case Bool:
		b, ok := b.(Bool)
		return ok && a == b
	case String:
		b, ok := b.(String)
		return ok && a == b
	case Tuple:
		b, ok := b.(Tuple)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Format converts the result of an evaluation to display text. An error
// formats as its message, and Empty as the empty string.
func Format(v Value, err error) string {
	if err != nil {
		return err.Error()
	}
	if v == nil {
		return ""
	}
	return v.String()
}
