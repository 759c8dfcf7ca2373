package mathexpr

import (
	"math/big"
	"sync"

	"github.com/zephyrtronium/bigfloat"
)

// constants caches the math constants by precision.
var constants struct {
	sync.Mutex
	m map[uint]map[string]Number
}

// mathConsts returns the math constants computed to prec bits. The result is
// shared and must not be modified.
func mathConsts(prec uint) map[string]Number {
	constants.Lock()
	defer constants.Unlock()
	if r := constants.m[prec]; r != nil {
		return r
	}
	if constants.m == nil {
		constants.m = make(map[uint]map[string]Number)
	}
	// Compute with guard bits, then round.
	wp := prec + 32
	f := func() *big.Float { return new(big.Float).SetPrec(wp) }
	one := f().SetInt64(1)
	two := f().SetInt64(2)
	ten := f().SetInt64(10)
	pi := bigfloat.Pi(f())
	tau := f().Mul(pi, two)
	e := bigfloat.Exp(f(), one)
	sqrt2 := f().Sqrt(two)
	sqrt5 := f().Sqrt(f().SetInt64(5))
	phi := f().Add(one, sqrt5)
	phi.Quo(phi, two)
	ln2 := bigfloat.Log(f(), two)
	ln10 := bigfloat.Log(f(), ten)
	round := func(x *big.Float) Number {
		return Number{new(big.Float).SetPrec(prec).Set(x)}
	}
	r := map[string]Number{
		"pi":    round(pi),
		"π":     round(pi),
		"tau":   round(tau),
		"τ":     round(tau),
		"e":     round(e),
		"phi":   round(phi),
		"φ":     round(phi),
		"sqrt2": round(sqrt2),
		"ln2":   round(ln2),
		"ln10":  round(ln10),
	}
	constants.m[prec] = r
	return r
}
