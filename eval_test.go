package mathexpr_test

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/zephyrtronium/mathexpr"
)

func TestEvalNumbers(t *testing.T) {
	type vv struct {
		n string
		v float64
	}
	type vc struct {
		vars []vv
		r    float64
	}
	cases := []struct {
		name string
		src  string
		r    []vc
	}{
		{"num", "1", []vc{{nil, 1}}},
		{"ident", "x", []vc{
			{[]vv{{"x", 4}}, 4},
			{[]vv{{"x", 5}}, 5},
			{[]vv{{"x", 6}}, 6},
		}},
		{"plus", "+x", []vc{
			{[]vv{{"x", 4}}, 4},
			{[]vv{{"x", 5}}, 5},
		}},
		{"neg", "-x", []vc{
			{[]vv{{"x", 4}}, -4},
			{[]vv{{"x", 5}}, -5},
		}},
		{"add", "4+5+6", []vc{{nil, 4 + 5 + 6}}},
		{"sub", "4-5-6", []vc{{nil, 4 - 5 - 6}}},
		{"mul", "4*5*6", []vc{{nil, 4 * 5 * 6}}},
		{"div", "4/5/6", []vc{{nil, 4.0 / 5.0 / 6.0}}},
		{"pow", "4^3^2", []vc{{nil, 262144}}},
		{"pow-neg-base-odd", "(-2)^3", []vc{{nil, -8}}},
		{"pow-neg-base-even", "(-2)^2", []vc{{nil, 4}}},
		{"pow-neg-base-one", "(-2)^1", []vc{{nil, -2}}},
		{"pow-neg-base-overflow", "(-2)^(2^40+1)", []vc{{nil, math.Inf(-1)}}},
		{"pow-overflow", "2^(2^40)", []vc{{nil, math.Inf(1)}}},
		{"neg-pow", "-2^2", []vc{{nil, -4}}},
		{"pow-neg-exp", "2^-1", []vc{{nil, 0.5}}},
		{"pow-zero-base", "0^2", []vc{{nil, 0}}},
		{"pow-zero-exp", "0^0", []vc{{nil, 1}}},
		{"mod", "7 % 3", []vc{{nil, 1}}},
		{"mod-neg", "-7 % 3", []vc{{nil, -1}}},
		{"mod-frac", "7.5 % 2", []vc{{nil, 1.5}}},
		{"mod-inf", "5 % inf", []vc{{nil, 5}}},
		{"implicit", "2 x", []vc{{[]vv{{"x", 3}}, 6}}},
		{"implicit-brackets", "2(3)[4]", []vc{{nil, 24}}},
		{"pi", "pi", []vc{{nil, math.Pi}}},
		{"pi-greek", "π", []vc{{nil, math.Pi}}},
		{"tau", "tau", []vc{{nil, 2 * math.Pi}}},
		{"e", "e", []vc{{nil, math.E}}},
		{"phi", "phi", []vc{{nil, math.Phi}}},
		{"sqrt2", "sqrt2", []vc{{nil, math.Sqrt2}}},
		{"ln2", "ln2", []vc{{nil, math.Ln2}}},
		{"ln10", "ln10", []vc{{nil, math.Ln10}}},
		{"exp", "exp 1", []vc{{nil, math.E}}},
		{"exp-huge", "exp(1e10)", []vc{{nil, math.Inf(1)}}},
		{"exp-tiny", "exp(-1e10)", []vc{{nil, 0}}},
		{"inf1", "inf", []vc{{nil, math.Inf(0)}}},
		{"inf2", "Inf", []vc{{nil, math.Inf(0)}}},
		{"inf3", "∞", []vc{{nil, math.Inf(0)}}},
		{"div-zero", "1/0", []vc{{nil, math.Inf(1)}}},
		{"div-neg-zero", "-1/0", []vc{{nil, math.Inf(-1)}}},
		{"log", "log 1000", []vc{{nil, 3}}},
		{"log-base", "log(8, 2)", []vc{{nil, 3}}},
		{"ln-zero", "ln 0", []vc{{nil, math.Inf(-1)}}},
		{"chain", "a = 3; a * 2", []vc{{nil, 6}}},
		{"compound", "a = 3; a += 4; a", []vc{{nil, 7}}},
		{"compound-pow", "a = 3; a ^= 2; a", []vc{{nil, 9}}},
		{"assign-var", "a = 2; b = a; a + b", []vc{{nil, 4}}},
	}
	ctx := mathexpr.NewContext(mathexpr.Prec(64))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := mathexpr.Parse(strings.NewReader(c.src))
			if err != nil {
				t.Fatal(c.src, "failed to parse:", err)
			}
			for _, v := range c.r {
				ctx := ctx.Clone()
				for _, x := range v.vars {
					ctx.Set(x.n, mathexpr.Float64Number(x.v))
				}
				r, err := a.Eval(ctx)
				if err != nil {
					t.Fatal("evaluation error:", err)
				}
				if ctx.Err() != nil {
					t.Error("context has error after success:", ctx.Err())
				}
				n, ok := r.(mathexpr.Number)
				if !ok {
					t.Fatalf("result %v is %v, not number", r, r.Kind())
				}
				if f := n.Float64(); f != v.r {
					t.Errorf("wrong result: want %g, got %v", v.r, r)
				}
			}
		})
	}
}

func TestEvalFormat(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"blank-lines", "\n\t\n", ""},
		{"add", "1 + 1", "2"},
		{"frac", "0.1", "0.1"},
		{"neg", "-2.5", "-2.5"},
		{"big", "1e21", "1e+21"},
		{"below-big", "123456789012345678", "123456789012345678"},
		{"small", "1e-8", "1e-08"},
		{"inf", "1/0", "inf"},
		{"neg-inf", "-1/0", "-inf"},
		{"neg-zero", "-0", "0"},
		{"neg-zero-mod", "-4 % 2", "0"},
		{"neg-zero-div", "1/-0", "-inf"},
		{"true", "true", "true"},
		{"and", "true && false", "false"},
		{"or", "false || true", "true"},
		{"not", "!false", "true"},
		{"lt", "1 < 2", "true"},
		{"le", "2 <= 2", "true"},
		{"gt", "1 > 2", "false"},
		{"ge", "1 >= 2", "false"},
		{"eq", "1 == 1.0", "true"},
		{"ne", "1 != 1", "false"},
		{"eq-kinds", "1 == \"1\"", "false"},
		{"string", `"hello"`, `"hello"`},
		{"string-escape", `"a\"b"`, `"a\"b"`},
		{"concat", `"a" + "b"`, `"ab"`},
		{"string-lt", `"a" < "b"`, "true"},
		{"tuple", "1, 2", "(1, 2)"},
		{"tuple-bracket", "(1, \"x\", true)", `(1, "x", true)`},
		{"tuple-eq", "(1, 2) == (1, 2)", "true"},
		{"assign", "a = 1", ""},
		{"assign-tuple", "a = 1, 2", "((), 2)"},
		{"chain-empty", "1;", ""},
		{"chain", "1; 2", "2"},
		{"empty-brackets", "()", ""},
		{"nested-chain", "(a = 2; a) * 3", "6"},
		{"short-circuit-and", "false && x", "false"},
		{"short-circuit-or", "true || x", "true"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := mathexpr.EvalString(c.src)
			if err != nil {
				t.Fatalf("%q gave error %v", c.src, err)
			}
			if got := mathexpr.Format(r, err); got != c.want {
				t.Errorf("%q gave wrong result: want %q, got %q", c.src, c.want, got)
			}
		})
	}
}

func TestEvalEmpty(t *testing.T) {
	for _, src := range []string{"", " ", "\t\n"} {
		r, err := mathexpr.EvalString(src)
		if err != nil {
			t.Errorf("%q gave error %v", src, err)
		}
		if _, ok := r.(mathexpr.Empty); !ok {
			t.Errorf("%q gave %#v, not Empty", src, r)
		}
	}
}

func TestEvalIdempotent(t *testing.T) {
	srcs := []string{"", "1 + 1", "pi", "1/0", "true && false", "1 +", "x", "a = 2; a^10"}
	for _, src := range srcs {
		first := mathexpr.Format(mathexpr.EvalString(src))
		for i := 0; i < 3; i++ {
			if again := mathexpr.Format(mathexpr.EvalString(src)); again != first {
				t.Errorf("%q changed result from %q to %q", src, first, again)
			}
		}
	}
}

func TestEvalParseErrorMessage(t *testing.T) {
	for _, src := range []string{"1 +", "(1", "1)", "* 2", ",", "1 ,", "f(", "\"abc"} {
		r, err := mathexpr.EvalString(src)
		if err == nil {
			t.Errorf("%q gave no error, result %v", src, r)
			continue
		}
		if r != nil {
			t.Errorf("%q gave non-nil result %v with error", src, r)
		}
		var ie mathexpr.InputError
		if !errors.As(err, &ie) {
			t.Errorf("%q gave %#v, not an InputError", src, err)
		}
		if mathexpr.Format(r, err) == "" {
			t.Errorf("%q gave error with empty message", src)
		}
	}
}

func TestEvalUndefNames(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    []string
	}{
		{"x", "x", []string{"x"}},
		{"plus", "+x", []string{"x"}},
		{"neg", "-x", []string{"x"}},
		{"add-lhs", "x+1", []string{"x"}},
		{"add-rhs", "1+x", []string{"x"}},
		{"sub-lhs", "x-1", []string{"x"}},
		{"sub-rhs", "1-x", []string{"x"}},
		{"mul-lhs", "x*1", []string{"x"}},
		{"mul-rhs", "1*x", []string{"x"}},
		{"div-lhs", "x/1", []string{"x"}},
		{"div-rhs", "1/x", []string{"x"}},
		{"pow-lhs", "x^1", []string{"x"}},
		{"pow-rhs", "1^x", []string{"x"}},
		{"call", "exp(x)", []string{"x"}},
		{"compound", "x += 1", []string{"x"}},
		{"tuple", "1, x", []string{"x"}},
	}
	ure := regexp.MustCompile(`(?i)\bundef`)
	vre := regexp.MustCompile(`(?i)\bvar`)
	ctx := mathexpr.NewContext(mathexpr.Prec(64))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := mathexpr.Parse(strings.NewReader(c.src))
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			if v := a.Vars(); !reflect.DeepEqual(c.r, v) {
				t.Errorf("%q gave wrong variables: want %q, got %q", c.src, c.r, v)
			}
			r, err := a.Eval(ctx)
			if r != nil {
				t.Errorf("evaluating %q gave non-nil result %v", c.src, r)
			}
			if err == nil {
				t.Fatalf("evaluating %q gave no error", c.src)
			}
			if ctx.Err() != err {
				t.Errorf("context error %v differs from returned error %v", ctx.Err(), err)
			}
			u, ok := err.(*mathexpr.NameError)
			if !ok {
				t.Fatalf("error was %#v, not NameError", err)
			}
			msg := err.Error()
			if !ure.MatchString(msg) {
				t.Errorf(`%q doesn't mention "undef"`, msg)
			}
			if !vre.MatchString(msg) {
				t.Errorf(`%q doesn't mention "var"`, msg)
			}
			for _, v := range c.r {
				if v == u.Name {
					xre := regexp.MustCompile(`\b` + v + `\b`)
					if !xre.MatchString(msg) {
						t.Errorf(`%q doesn't mention %q`, msg, v)
					}
					return
				}
			}
			t.Errorf("NameError on %q, not in %q", u.Name, c.r)
		})
	}
}

func TestEvalFuncError(t *testing.T) {
	cases := []struct {
		name string
		src  string
		fn   string
	}{
		{"sqrt", "sqrt(-1)", "sqrt"},
		{"ln", "ln(-1)", "ln"},
		{"log", "log(-1)", "log"},
		{"log-base", "log(1, -1)", "log"},
		{"log-base-one", "log(8, 1)", "log"},
		{"asin", "asin 2", "asin"},
		{"acosh", "acosh 0", "acosh"},
	}
	ctx := mathexpr.NewContext(mathexpr.Prec(64))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := ctx.Clone()
			a, err := mathexpr.Parse(strings.NewReader(c.src))
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := a.Eval(ctx)
			if r != nil {
				t.Errorf("evaluating %q gave non-nil result %v", c.src, r)
			}
			if err == nil {
				t.Fatalf("evaluating %q gave no error", c.src)
			}
			var de *mathexpr.DomainError
			if !errors.As(err, &de) {
				t.Fatalf("%#v is not *mathexpr.DomainError", err)
			}
			if de.Func != c.fn {
				t.Errorf("wrong function name in %q: want %q, got %q", err, c.fn, de.Func)
			}
			if !errors.As(err, new(big.ErrNaN)) {
				t.Errorf("%#v does not unwrap to big.ErrNaN", err)
			}
		})
	}
}

func TestEvalOpError(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"div-zero", "0/0"},
		{"div-inf", "inf/inf"},
		{"div-alt-zero", "0÷0"},
		{"div-alt-inf", "inf÷inf"},
		{"sub-inf", "inf-inf"},
		{"mul-inf", "0*inf"},
		{"mod-zero", "5 % 0"},
		{"mod-inf", "inf % 2"},
		{"pow-neg", "(-1)^0.5"},
		// Function arguments are all evaluated before the call, even for if.
		{"if-eager", "if(false, 0/0, 1)"},
	}
	ctx := mathexpr.NewContext()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := ctx.Clone()
			a, err := mathexpr.Parse(strings.NewReader(c.src))
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := a.Eval(ctx)
			if r != nil {
				t.Errorf("evaluating %q gave non-nil result %v", c.src, r)
			}
			if err == nil {
				t.Fatalf("evaluating %q gave no error", c.src)
			}
			if _, ok := err.(*mathexpr.DomainError); !ok {
				t.Errorf("%#v is not *mathexpr.DomainError", err)
			}
		})
	}
}

func TestEvalTypeError(t *testing.T) {
	cases := []struct {
		name string
		src  string
		msg  string
	}{
		{"add-bool", "1 + true", "cannot apply + to number and boolean"},
		{"sub-string", `"a" - "b"`, "cannot apply - to string and string"},
		{"neg-string", `-"a"`, "cannot apply unary - to string"},
		{"not-number", "!1", "cannot apply unary ! to number"},
		{"and-number", "1 && true", "cannot apply && to number"},
		{"or-rhs", "false || 1", "cannot apply || to boolean and number"},
		{"lt-mixed", `1 < "a"`, "cannot apply < to number and string"},
		{"mul-tuple", "(1, 2) * 2", "cannot apply * to tuple and number"},
		{"empty", "() + 1", "cannot apply + to empty and number"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := mathexpr.EvalString(c.src)
			var te *mathexpr.TypeError
			if !errors.As(err, &te) {
				t.Fatalf("%q gave %#v, not TypeError", c.src, err)
			}
			if err.Error() != c.msg {
				t.Errorf("%q gave wrong message: want %q, got %q", c.src, c.msg, err.Error())
			}
		})
	}
}

func TestAssignConstant(t *testing.T) {
	ctx := mathexpr.NewContext()
	_, err := ctx.EvalString("pi = 3")
	var ae *mathexpr.AssignError
	if !errors.As(err, &ae) {
		t.Fatalf("assigning pi gave %#v, not AssignError", err)
	}
	if ae.Name != "pi" {
		t.Errorf("wrong name in AssignError: want pi, got %q", ae.Name)
	}
	r, err := ctx.EvalString("pi")
	if err != nil {
		t.Fatal(err)
	}
	if f := r.(mathexpr.Number).Float64(); f != math.Pi {
		t.Errorf("pi changed to %v", r)
	}

	ctx = mathexpr.NewContext(mathexpr.WithoutConstants())
	r, err = ctx.EvalString("pi = 3; pi")
	if err != nil {
		t.Fatal(err)
	}
	if s := r.String(); s != "3" {
		t.Errorf("pi without constants: want 3, got %s", s)
	}
	if c := ctx.Constants(); len(c) != 0 {
		t.Errorf("context without constants has %q", c)
	}
}

func TestSetConstantPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("no panic setting e")
		}
	}()
	mathexpr.NewContext().Set("e", mathexpr.Float64Number(3))
}

func TestContextVars(t *testing.T) {
	zero := mathexpr.Float64Number(0)
	one := mathexpr.Float64Number(1)
	ctx := mathexpr.NewContext(mathexpr.Prec(64), mathexpr.SetVar("x", zero))
	if x := ctx.Lookup("x"); x == nil || !mathexpr.Equal(x, zero) {
		t.Errorf("x should be %v but is %v", zero, x)
	}
	if y := ctx.Lookup("y"); y != nil {
		t.Errorf("context has y: %v", y)
	}
	ctx.Set("y", one)
	if x := ctx.Lookup("x"); x == nil || !mathexpr.Equal(x, zero) {
		t.Errorf("x should be %v but is %v", zero, x)
	}
	if y := ctx.Lookup("y"); y == nil || !mathexpr.Equal(y, one) {
		t.Errorf("y should be %v but is %v", one, y)
	}
	ctx.Set("x", one)
	if x := ctx.Lookup("x"); x == nil || !mathexpr.Equal(x, one) {
		t.Errorf("x should be %v but is %v", one, x)
	}
	if v := ctx.Vars(); !reflect.DeepEqual(v, []string{"x", "y"}) {
		t.Errorf("wrong vars: want [x y], got %q", v)
	}
	want := []string{"e", "ln10", "ln2", "phi", "pi", "sqrt2", "tau", "π", "τ", "φ"}
	if c := ctx.Constants(); !reflect.DeepEqual(c, want) {
		t.Errorf("wrong constants:\n\twant %q\n\tgot  %q", want, c)
	}
}

func TestContextPersists(t *testing.T) {
	ctx := mathexpr.NewContext()
	for _, src := range []string{"a = 2", "b = a * 3", "s = \"x\""} {
		if _, err := ctx.EvalString(src); err != nil {
			t.Fatalf("%q: %v", src, err)
		}
	}
	r, err := ctx.EvalString("a + b")
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "8" {
		t.Errorf("a + b: want 8, got %v", r)
	}
	if v := ctx.Vars(); !reflect.DeepEqual(v, []string{"a", "b", "s"}) {
		t.Errorf("wrong vars: %q", v)
	}
}

func TestContextClone(t *testing.T) {
	ctx := mathexpr.NewContext(mathexpr.SetVar("x", mathexpr.Float64Number(1)))
	c := ctx.Clone(mathexpr.SetVar("y", mathexpr.Float64Number(2)))
	c.Set("x", mathexpr.Float64Number(3))
	if x := ctx.Lookup("x"); x.String() != "1" {
		t.Errorf("clone modified original x to %v", x)
	}
	if y := ctx.Lookup("y"); y != nil {
		t.Errorf("clone added y to original: %v", y)
	}
	if x := c.Lookup("x"); x.String() != "3" {
		t.Errorf("clone x should be 3 but is %v", x)
	}
}

func TestContextPrec(t *testing.T) {
	const digits = "3.14159265358979323846264338327950288419716939937510"
	ctx := mathexpr.NewContext(mathexpr.Prec(256))
	if p := ctx.Prec(); p != 256 {
		t.Errorf("wrong precision: want 256, got %d", p)
	}
	r, err := ctx.EvalString("pi")
	if err != nil {
		t.Fatal(err)
	}
	if s := r.(mathexpr.Number).Big().Text('f', 60); !strings.HasPrefix(s, digits) {
		t.Errorf("pi at 256 bits is %s", s)
	}
	// Changing precision recomputes constants rather than rounding the
	// old ones.
	lo := mathexpr.NewContext(mathexpr.Prec(32)).Clone(mathexpr.Prec(256))
	r, err = lo.EvalString("pi")
	if err != nil {
		t.Fatal(err)
	}
	if s := r.(mathexpr.Number).Big().Text('f', 60); !strings.HasPrefix(s, digits) {
		t.Errorf("pi after raising precision is %s", s)
	}
	if p := mathexpr.NewContext(mathexpr.Prec(0)).Prec(); p != mathexpr.DefaultPrec {
		t.Errorf("Prec(0) gave precision %d", p)
	}
}

func TestEvalFuncs(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"abs", "abs(-3)", "3"},
		{"floor", "floor(-1.5)", "-2"},
		{"ceil", "ceil(1.2)", "2"},
		{"round-up", "round(2.5)", "3"},
		{"round-down", "round(2.4)", "2"},
		{"round-neg", "round(-2.5)", "-3"},
		{"trunc", "trunc(-2.7)", "-2"},
		{"sqrt", "sqrt 16", "4"},
		{"min", "min(3, 1, 2)", "1"},
		{"max-tuple", "max((3, 1, 2))", "3"},
		{"if-true", `if(1 < 2, "yes", "no")`, `"yes"`},
		{"if-false", `if(1 > 2, "yes", "no")`, `"no"`},
		{"len-string", `len("héllo")`, "5"},
		{"len-tuple", "len((1, 2, 3))", "3"},
		{"typeof", "typeof(1)", `"number"`},
		{"typeof-tuple", "typeof((1, 2))", `"tuple"`},
		{"str", "str(12)", `"12"`},
		{"num", `num("2.5")`, "2.5"},
		{"num-bool", "num(true)", "1"},
		{"contains-tuple", "contains((1, 2), 2)", "true"},
		{"contains-string", `contains("abc", "bc")`, "true"},
		{"upper", `upper("abc")`, `"ABC"`},
		{"lower", `lower("ABC")`, `"abc"`},
		{"trim", `trim("  a ")`, `"a"`},
		{"call-pow", "sqrt^2 9", "9"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := mathexpr.EvalString(c.src)
			if err != nil {
				t.Fatalf("%q gave error %v", c.src, err)
			}
			if got := r.String(); got != c.want {
				t.Errorf("%q: want %s, got %s", c.src, c.want, got)
			}
		})
	}
}

func TestEvalFuncArgError(t *testing.T) {
	cases := []struct {
		name string
		src  string
		fn   string
	}{
		{"sqrt", `sqrt "a"`, "sqrt"},
		{"sin", "sin(true)", "sin"},
		{"if", "if(1, 2, 3)", "if"},
		{"len", "len(1)", "len"},
		{"num", `num("abc")`, "num"},
		{"max", `max(1, "a")`, "max"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := mathexpr.EvalString(c.src)
			var ae *mathexpr.ArgError
			if !errors.As(err, &ae) {
				t.Fatalf("%q gave %#v, not ArgError", c.src, err)
			}
			if ae.Func != c.fn {
				t.Errorf("wrong function name: want %q, got %q", c.fn, ae.Func)
			}
		})
	}
}

func TestVars(t *testing.T) {
	cases := []struct {
		name string
		src  string
		vars []string
	}{
		{"none", "1+2+3", nil},
		{"one", "1+2+x", []string{"x"}},
		{"sort", "z+y+x+w+v+u+t+s+r+q+p+o+n+m+l+k+j+i+h+g+f+e+d+c+b+a", strings.Fields("a b c d e f g h i j k l m n o p q r s t u v w x y z")},
		{"reuse", "a+b+c+b+a", []string{"a", "b", "c"}},
		{"empty", "", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := mathexpr.Parse(strings.NewReader(c.src), mathexpr.DisableDefaultFuncs())
			if err != nil {
				t.Fatalf("%q didn't parse: %v", c.src, err)
			}
			vars := a.Vars()
			if !reflect.DeepEqual(vars, c.vars) {
				t.Errorf("%q gave wrong variable names:\n\twant %q\n\tgot  %q", c.src, c.vars, vars)
			}
		})
	}
}

func BenchmarkEval(b *testing.B) {
	vars := map[string]mathexpr.Value{
		"x": mathexpr.Float64Number(2),
		"y": mathexpr.Float64Number(3),
		"z": mathexpr.Float64Number(4),
	}
	b.Run("nums", func(b *testing.B) {
		b.ReportAllocs()
		ctx := mathexpr.NewContext(mathexpr.Prec(64))
		a, err := mathexpr.Parse(strings.NewReader("2+3+4"))
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			a.Eval(ctx.Clone())
		}
	})
	b.Run("vars", func(b *testing.B) {
		b.ReportAllocs()
		ctx := mathexpr.NewContext(mathexpr.SetVars(vars), mathexpr.Prec(64))
		a, err := mathexpr.Parse(strings.NewReader("x+y+z"))
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			a.Eval(ctx.Clone())
		}
	})
}

func Example() {
	ctx := mathexpr.NewContext(mathexpr.Prec(64))
	a, _ := mathexpr.ParseString("x^3/2 - x")
	b, _ := mathexpr.ParseString("3 x^2/2 - 1")
	c, _ := mathexpr.ParseString("3 x")

	for i := 0; i < 4; i++ {
		ctx.Set("x", mathexpr.Float64Number(float64(i)))
		y, _ := a.Eval(ctx)
		yp, _ := b.Eval(ctx)
		ypp, _ := c.Eval(ctx)
		fmt.Printf("x = %d   y = %-4v  y' = %-4v  y'' = %v\n", i, y, yp, ypp)
	}

	// Output:
	// x = 0   y = 0     y' = -1    y'' = 0
	// x = 1   y = -0.5  y' = 0.5   y'' = 3
	// x = 2   y = 2     y' = 5     y'' = 6
	// x = 3   y = 10.5  y' = 12.5  y'' = 9
}

func ExampleEvalString() {
	for _, src := range []string{"", "1 + 1", "1/0", "true && false", `"a" + "b"`, "1 +"} {
		fmt.Printf("%q => %q\n", src, mathexpr.Format(mathexpr.EvalString(src)))
	}

	// Output:
	// "" => ""
	// "1 + 1" => "2"
	// "1/0" => "inf"
	// "true && false" => "false"
	// "\"a\" + \"b\"" => "\"ab\""
	// "1 +" => "4: empty expression at end of input"
}

func TestEvalNiladicExponent(t *testing.T) {
	two := mathexpr.Niladic(func(out *big.Float) *big.Float { return out.SetInt64(2) })
	cases := []struct {
		src  string
		want string
	}{
		{"two^two(3)^2", "36"},
		{"two^two(3)", "12"},
		{"two(3)^2", "18"},
		{"two(1 + two(2))", "10"},
		{"two^two(0)^0", "4"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			a, err := mathexpr.Parse(strings.NewReader(c.src), mathexpr.ParseFunc("two", two))
			if err != nil {
				t.Fatal("parse error:", err)
			}
			r, err := a.Eval(mathexpr.NewContext())
			if err != nil {
				t.Fatal("evaluation error:", err)
			}
			if got := r.String(); got != c.want {
				t.Errorf("wrong result: want %s, got %s", c.want, got)
			}
		})
	}
}
