package mathexpr_test

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/zephyrtronium/mathexpr"
)

func TestValueString(t *testing.T) {
	cases := []struct {
		name string
		v    mathexpr.Value
		want string
	}{
		{"empty", mathexpr.Empty{}, ""},
		{"zero", mathexpr.Number{}, "0"},
		{"int", mathexpr.Float64Number(42), "42"},
		{"frac", mathexpr.Float64Number(0.25), "0.25"},
		{"neg", mathexpr.Float64Number(-1.5), "-1.5"},
		{"large", mathexpr.Float64Number(1e20), "100000000000000000000"},
		{"huge", mathexpr.Float64Number(1e21), "1e+21"},
		{"tiny", mathexpr.Float64Number(1e-7), "0.0000001"},
		{"tinier", mathexpr.Float64Number(1e-8), "1e-08"},
		{"inf", mathexpr.Float64Number(math.Inf(1)), "inf"},
		{"neg-inf", mathexpr.Float64Number(math.Inf(-1)), "-inf"},
		{"true", mathexpr.Bool(true), "true"},
		{"false", mathexpr.Bool(false), "false"},
		{"string", mathexpr.String("abc"), `"abc"`},
		{"string-escapes", mathexpr.String("a\"b\\c\nd"), `"a\"b\\c\nd"`},
		{"string-unicode", mathexpr.String("π"), `"π"`},
		{"tuple", mathexpr.Tuple{mathexpr.Float64Number(1), mathexpr.String("x")}, `(1, "x")`},
		{"tuple-empty-elem", mathexpr.Tuple{mathexpr.Empty{}, mathexpr.Bool(true)}, "((), true)"},
		{"tuple-nested", mathexpr.Tuple{mathexpr.Tuple{mathexpr.Float64Number(1)}, mathexpr.Float64Number(2)}, "((1), 2)"},
		{"tuple-none", mathexpr.Tuple{}, "()"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.String(); got != c.want {
				t.Errorf("wrong string: want %q, got %q", c.want, got)
			}
		})
	}
}

func TestValueKind(t *testing.T) {
	cases := []struct {
		v    mathexpr.Value
		kind mathexpr.Kind
		name string
	}{
		{mathexpr.Empty{}, mathexpr.KindEmpty, "empty"},
		{mathexpr.Number{}, mathexpr.KindNumber, "number"},
		{mathexpr.Bool(false), mathexpr.KindBool, "boolean"},
		{mathexpr.String(""), mathexpr.KindString, "string"},
		{mathexpr.Tuple{}, mathexpr.KindTuple, "tuple"},
	}
	for _, c := range cases {
		if k := c.v.Kind(); k != c.kind {
			t.Errorf("%#v has kind %v, want %v", c.v, k, c.kind)
		}
		if s := c.kind.String(); s != c.name {
			t.Errorf("kind %d has name %q, want %q", c.kind, s, c.name)
		}
	}
}

func TestEqual(t *testing.T) {
	one := mathexpr.Float64Number(1)
	hiprec := mathexpr.NewNumber(new(big.Float).SetPrec(512).SetInt64(1))
	cases := []struct {
		name string
		a, b mathexpr.Value
		want bool
	}{
		{"empty", mathexpr.Empty{}, mathexpr.Empty{}, true},
		{"num", one, mathexpr.Float64Number(1), true},
		{"num-prec", one, hiprec, true},
		{"num-ne", one, mathexpr.Float64Number(2), false},
		{"num-bool", one, mathexpr.Bool(true), false},
		{"str", mathexpr.String("a"), mathexpr.String("a"), true},
		{"str-ne", mathexpr.String("a"), mathexpr.String("b"), false},
		{"tuple", mathexpr.Tuple{one, mathexpr.String("a")}, mathexpr.Tuple{hiprec, mathexpr.String("a")}, true},
		{"tuple-len", mathexpr.Tuple{one}, mathexpr.Tuple{one, one}, false},
		{"empty-tuple", mathexpr.Empty{}, mathexpr.Tuple{}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := mathexpr.Equal(c.a, c.b); got != c.want {
				t.Errorf("Equal(%v, %v) = %t", c.a, c.b, got)
			}
			if got := mathexpr.Equal(c.b, c.a); got != c.want {
				t.Errorf("Equal(%v, %v) = %t", c.b, c.a, got)
			}
		})
	}
}

func TestNumberCopies(t *testing.T) {
	x := big.NewFloat(2)
	n := mathexpr.NewNumber(x)
	x.SetInt64(3)
	if s := n.String(); s != "2" {
		t.Errorf("NewNumber didn't copy: got %s", s)
	}
	n.Big().SetInt64(4)
	if s := n.String(); s != "2" {
		t.Errorf("Big didn't copy: got %s", s)
	}
}

func TestFormat(t *testing.T) {
	if s := mathexpr.Format(nil, errors.New("oops")); s != "oops" {
		t.Errorf("error formatted as %q", s)
	}
	if s := mathexpr.Format(mathexpr.Empty{}, nil); s != "" {
		t.Errorf("Empty formatted as %q", s)
	}
	if s := mathexpr.Format(nil, nil); s != "" {
		t.Errorf("nil formatted as %q", s)
	}
	if s := mathexpr.Format(mathexpr.Float64Number(2), nil); s != "2" {
		t.Errorf("2 formatted as %q", s)
	}
}

// within runs f and fails the test if it does not return within d.
func within(t *testing.T, d time.Duration, f func() string) string {
	t.Helper()
	done := make(chan string, 1)
	go func() { done <- f() }()
	select {
	case s := <-done:
		return s
	case <-time.After(d):
		t.Fatalf("did not finish in %v", d)
		return ""
	}
}

func TestNumberStringHugeExponent(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1e100000000", "1e+100000000"},
		{"-2.5e100000000", "-2.5e+100000000"},
		{"1e-100000000", "1e-100000000"},
		{"3e5000", "3e+5000"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			v, err := mathexpr.EvalString(c.src)
			if err != nil {
				t.Fatal(err)
			}
			got := within(t, 10*time.Second, v.String)
			if got != c.want {
				t.Errorf("wrong text: want %s, got %s", c.want, got)
			}
		})
	}
	v, err := mathexpr.EvalString("-1e100000000")
	if err != nil {
		t.Fatal(err)
	}
	derr := &mathexpr.DomainError{X: v.(mathexpr.Number).Big(), Func: "ln"}
	got := within(t, 10*time.Second, derr.Error)
	if !strings.HasPrefix(got, "-1e+100000000 outside domain") {
		t.Errorf("wrong error text: %s", got)
	}
}
