package mathexpr

import (
	"io"
	"math"
	"math/big"
	"strings"

	"github.com/google/btree"
	"github.com/zephyrtronium/bigfloat"
)

// DefaultPrec is the precision of a context created without the Prec option.
const DefaultPrec = 64

// Context is a context for evaluating expressions. It holds variables and the
// read-only math constants. It is not safe to use a Context concurrently.
type Context struct {
	vars *btree.BTreeG[binding]
	nums map[string]*big.Float
	prec uint
	err  error
}

// binding is a named value in a context.
type binding struct {
	name  string
	val   Value
	konst bool
}

func lessBindings(a, b binding) bool {
	return a.name < b.name
}

func newBindings() *btree.BTreeG[binding] {
	return btree.NewG[binding](8, lessBindings)
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  Value
	}
	varsopt    map[string]Value
	precopt    uint
	noconstopt struct{}
)

func (varopt) ctxOption()     {}
func (varsopt) ctxOption()    {}
func (precopt) ctxOption()    {}
func (noconstopt) ctxOption() {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val Value) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]Value) ContextOption {
	return varsopt(vars)
}

// Prec sets the precision of calculations in bits. A precision of 0 selects
// the default of 64.
func Prec(prec uint) ContextOption {
	if prec == 0 {
		prec = DefaultPrec
	}
	return precopt(prec)
}

// WithoutConstants removes the math constants from the context, so that their
// names may be used as ordinary variables.
func WithoutConstants() ContextOption {
	return noconstopt{}
}

// NewContext creates a new evaluation context holding the math constants. If
// no precision is given, the default is 64.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{vars: newBindings(), nums: make(map[string]*big.Float), prec: DefaultPrec}
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			ctx.prec = uint(p)
			break
		}
	}
	for name, val := range mathConsts(ctx.prec) {
		ctx.vars.ReplaceOrInsert(binding{name: name, val: val, konst: true})
	}
	return ctx.Clone(opts...)
}

// Eval evaluates an expression and returns the result. An empty expression
// evaluates to Empty. If an error occurs, e.g. a missing variable definition
// or an argument to a function is outside the function's domain, then the
// result is nil and the error is also available from ctx.Err.
func (ctx *Context) Eval(e *Expr) (Value, error) {
	if e.n == nil {
		ctx.err = nil
		return Empty{}, nil
	}
	r, err := e.n.eval(ctx)
	ctx.err = err
	if err != nil {
		return nil, err
	}
	return r, nil
}

// EvalString parses and evaluates an expression using ctx. Assignments in the
// expression persist in ctx.
func (ctx *Context) EvalString(src string) (Value, error) {
	a, err := Parse(strings.NewReader(src))
	if err != nil {
		ctx.err = err
		return nil, err
	}
	return ctx.Eval(a)
}

// Eval is a shortcut for ctx.Eval(e).
func (e *Expr) Eval(ctx *Context) (Value, error) {
	return ctx.Eval(e)
}

// Err returns the error from the last evaluation with ctx, if any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Set sets the value of a variable. Returns ctx for chaining. Numbers are
// rounded to the context's precision. Panics if name is a constant.
func (ctx *Context) Set(name string, value Value) *Context {
	if b, ok := ctx.vars.Get(binding{name: name}); ok && b.konst {
		panic("mathexpr: Set on constant " + name)
	}
	ctx.vars.ReplaceOrInsert(binding{name: name, val: ctx.round(value)})
	return ctx
}

// Lookup returns the value of a variable or constant. If there is no such
// name in the context, then the result is nil.
func (ctx *Context) Lookup(name string) Value {
	b, ok := ctx.vars.Get(binding{name: name})
	if !ok {
		return nil
	}
	return b.val
}

// Vars returns the names of the variables set in the context in sorted order.
// Constants are not included.
func (ctx *Context) Vars() []string {
	return ctx.names(false)
}

// Constants returns the names of the constants in the context in sorted
// order.
func (ctx *Context) Constants() []string {
	return ctx.names(true)
}

func (ctx *Context) names(konst bool) []string {
	var r []string
	ctx.vars.Ascend(func(b binding) bool {
		if b.konst == konst {
			r = append(r, b.name)
		}
		return true
	})
	return r
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Clone creates a copy of a context and applies options to it. Changes to
// the variables of either context do not affect the other.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		nums: make(map[string]*big.Float, len(ctx.nums)),
		prec: ctx.prec,
	}
	// First, check for a precision setting. Loop backward so we apply the last
	// precision.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			n.prec = uint(p)
			break
		}
	}
	// Copy numbers only if the new precision is no higher than the old, so
	// that we always use the precision we need.
	if n.prec <= ctx.prec {
		for k, v := range ctx.nums {
			n.nums[k] = new(big.Float).SetPrec(n.prec).Set(v)
		}
	}
	// The tree is copy-on-write, so if we have the same precision, we can
	// just clone it.
	if n.prec == ctx.prec {
		n.vars = ctx.vars.Clone()
	} else {
		n.vars = newBindings()
		var consts map[string]Number
		ctx.vars.Ascend(func(b binding) bool {
			if b.konst {
				if consts == nil {
					consts = mathConsts(n.prec)
				}
				b.val = consts[b.name]
			} else {
				b.val = n.round(b.val)
			}
			n.vars.ReplaceOrInsert(b)
			return true
		})
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.Set(opt.name, opt.val)
		case varsopt:
			for k, v := range opt {
				n.Set(k, v)
			}
		case noconstopt:
			for _, name := range n.Constants() {
				n.vars.Delete(binding{name: name})
			}
		case precopt:
			// Already done. Do nothing.
		default:
			panic("mathexpr: unknown option type")
		}
	}
	return &n
}

// round rounds numbers in v to the context's precision.
func (ctx *Context) round(v Value) Value {
	switch v := v.(type) {
	case Number:
		if v.x != nil && v.x.Prec() == ctx.prec {
			return v
		}
		return Number{new(big.Float).SetPrec(ctx.prec).Set(v.val())}
	case Tuple:
		t := make(Tuple, len(v))
		for i, x := range v {
			t[i] = ctx.round(x)
		}
		return t
	case nil:
		return Empty{}
	default:
		return v
	}
}

// assign stores a value to a variable from within an expression.
func (ctx *Context) assign(name string, v Value) error {
	if b, ok := ctx.vars.Get(binding{name: name}); ok && b.konst {
		return &AssignError{Name: name}
	}
	ctx.vars.ReplaceOrInsert(binding{name: name, val: v})
	return nil
}

// newFloat creates a float at the context's precision.
func (ctx *Context) newFloat() *big.Float {
	return new(big.Float).SetPrec(ctx.prec)
}

// num gets a possibly cached number from its text.
func (ctx *Context) num(s string) *big.Float {
	if r := ctx.nums[s]; r != nil {
		return r
	}
	t := s
	if t == "∞" {
		t = "inf"
	}
	r, _, err := ctx.newFloat().Parse(t, 0)
	switch {
	case err == nil: // do nothing
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// There isn't realistically any better way to detect this error.
		// N.B. t is non-empty, otherwise we couldn't overflow.
		r = ctx.newFloat().SetInf(t[0] == '-')
	default:
		panic("mathexpr: invalid number: " + s + " (" + err.Error() + ")")
	}
	ctx.nums[s] = r
	return r
}

// eval evaluates the node.
func (n *node) eval(ctx *Context) (Value, error) {
	switch n.kind {
	case nodeNum:
		return Number{ctx.num(n.name)}, nil
	case nodeStr:
		return String(n.name), nil
	case nodeBool:
		return Bool(n.name == "true"), nil
	case nodeEmpty:
		return Empty{}, nil
	case nodeName:
		b, ok := ctx.vars.Get(binding{name: n.name})
		if !ok {
			return nil, &NameError{Name: n.name}
		}
		return b.val, nil
	case nodeCall:
		var args []Value
		for l := n.right; l != nil; l = l.right {
			v, err := l.left.eval(ctx)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		r, err := n.fn.Call(ctx, args)
		if err != nil {
			return nil, nameCallError(err, n.name)
		}
		if r == nil {
			return Empty{}, nil
		}
		return ctx.round(r), nil
	case nodeArg:
		panic("mathexpr: eval on nodeArg")
	case nodeTuple:
		var t Tuple
		for l := n; l != nil; l = l.right {
			v, err := l.left.eval(ctx)
			if err != nil {
				return nil, err
			}
			t = append(t, v)
		}
		return t, nil
	case nodeChain:
		if _, err := n.left.eval(ctx); err != nil {
			return nil, err
		}
		return n.right.eval(ctx)
	case nodeAssign:
		v, err := n.left.eval(ctx)
		if err != nil {
			return nil, err
		}
		if n.op != nodeNone {
			b, ok := ctx.vars.Get(binding{name: n.name})
			if !ok {
				return nil, &NameError{Name: n.name}
			}
			v, err = binary(ctx, n.op, b.val, v)
			if err != nil {
				return nil, err
			}
		}
		if err := ctx.assign(n.name, v); err != nil {
			return nil, err
		}
		return Empty{}, nil
	case nodeNeg, nodeNop, nodeNot:
		v, err := n.left.eval(ctx)
		if err != nil {
			return nil, err
		}
		return unary(ctx, n.kind, v)
	case nodeAnd, nodeOr:
		l, err := n.left.eval(ctx)
		if err != nil {
			return nil, err
		}
		lb, ok := l.(Bool)
		if !ok {
			return nil, &TypeError{Op: optext(n.kind, false), Kinds: []Kind{l.Kind()}}
		}
		// Short circuit.
		if n.kind == nodeAnd && !bool(lb) || n.kind == nodeOr && bool(lb) {
			return lb, nil
		}
		r, err := n.right.eval(ctx)
		if err != nil {
			return nil, err
		}
		rb, ok := r.(Bool)
		if !ok {
			return nil, &TypeError{Op: optext(n.kind, false), Kinds: []Kind{l.Kind(), r.Kind()}}
		}
		return rb, nil
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodeMod, nodePow,
		nodeEq, nodeNe, nodeLt, nodeLe, nodeGt, nodeGe:
		l, err := n.left.eval(ctx)
		if err != nil {
			return nil, err
		}
		r, err := n.right.eval(ctx)
		if err != nil {
			return nil, err
		}
		return binary(ctx, n.kind, l, r)
	default:
		panic("mathexpr: invalid AST node " + n.kind.String())
	}
}

// unary applies a unary operator.
func unary(ctx *Context, op nodeKind, v Value) (Value, error) {
	switch op {
	case nodeNeg:
		if x, ok := v.(Number); ok {
			return Number{ctx.newFloat().Neg(x.val())}, nil
		}
	case nodeNop:
		if _, ok := v.(Number); ok {
			return v, nil
		}
	case nodeNot:
		if b, ok := v.(Bool); ok {
			return !b, nil
		}
	default:
		panic("mathexpr: invalid unary operator " + op.String())
	}
	return nil, &TypeError{Op: optext(op, false), Kinds: []Kind{v.Kind()}, Unary: true}
}

// binary applies a binary operator to two evaluated operands.
func binary(ctx *Context, op nodeKind, l, r Value) (Value, error) {
	switch op {
	case nodeEq:
		return Bool(Equal(l, r)), nil
	case nodeNe:
		return Bool(!Equal(l, r)), nil
	case nodeLt, nodeLe, nodeGt, nodeGe:
		c, ok := compare(l, r)
		if !ok {
			break
		}
		switch op {
		case nodeLt:
			return Bool(c < 0), nil
		case nodeLe:
			return Bool(c <= 0), nil
		case nodeGt:
			return Bool(c > 0), nil
		default:
			return Bool(c >= 0), nil
		}
	case nodeAnd, nodeOr:
		// Only reachable through compound assignment, which evaluates both
		// sides.
		lb, lok := l.(Bool)
		rb, rok := r.(Bool)
		if !lok || !rok {
			break
		}
		if op == nodeAnd {
			return lb && rb, nil
		}
		return lb || rb, nil
	case nodeAdd:
		if ls, ok := l.(String); ok {
			if rs, ok := r.(String); ok {
				return ls + rs, nil
			}
			break
		}
		fallthrough
	default:
		x, lok := l.(Number)
		y, rok := r.(Number)
		if !lok || !rok {
			break
		}
		z, err := arith(ctx, op, x.val(), y.val())
		if err != nil {
			return nil, err
		}
		return Number{z}, nil
	}
	return nil, &TypeError{Op: optext(op, false), Kinds: []Kind{l.Kind(), r.Kind()}}
}

// compare orders two numbers or two strings.
func compare(l, r Value) (int, bool) {
	switch l := l.(type) {
	case Number:
		if r, ok := r.(Number); ok {
			return l.val().Cmp(r.val()), true
		}
	case String:
		if r, ok := r.(String); ok {
			return strings.Compare(string(l), string(r)), true
		}
	}
	return 0, false
}

// arith performs arithmetic on two numbers at the context's precision.
func arith(ctx *Context, op nodeKind, x, y *big.Float) (z *big.Float, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		nan, ok := r.(big.ErrNaN)
		if !ok {
			panic(r)
		}
		z, err = nil, &DomainError{X: y, Func: optext(op, false), Err: nan}
	}()
	z = ctx.newFloat()
	switch op {
	case nodeAdd:
		z.Add(x, y)
	case nodeSub:
		z.Sub(x, y)
	case nodeMul:
		z.Mul(x, y)
	case nodeDiv:
		// Guard against invalid divisions, 0/0 or inf/inf. Any other division
		// by zero is an infinity.
		if x.Sign() == 0 && y.Sign() == 0 || x.IsInf() && y.IsInf() {
			return nil, &DomainError{X: y, Func: "/"}
		}
		z.Quo(x, y)
	case nodeMod:
		return rem(z, x, y)
	case nodePow:
		return pow(z, x, y)
	default:
		panic("mathexpr: invalid arithmetic operator " + op.String())
	}
	return z, nil
}

// rem sets z to the remainder of x/y truncated toward zero, so that the result
// has the sign of x.
func rem(z, x, y *big.Float) (*big.Float, error) {
	if y.Sign() == 0 || x.IsInf() {
		return nil, &DomainError{X: y, Func: "%"}
	}
	if y.IsInf() {
		return z.Set(x), nil
	}
	if x.IsInt() && y.IsInt() {
		a, _ := x.Int(nil)
		b, _ := y.Int(nil)
		neg := x.Signbit()
		z.SetInt(a.Rem(a, b))
		if neg && z.Sign() == 0 {
			z.Neg(z)
		}
		return z, nil
	}
	q := new(big.Float).SetPrec(z.Prec()).Quo(x, y)
	t, _ := q.Int(nil)
	q.SetInt(t)
	q.Mul(q, y)
	return z.Sub(x, q), nil
}

// pow sets z to x^y.
func pow(z, x, y *big.Float) (*big.Float, error) {
	if x.IsInf() || y.IsInf() {
		// Infinities follow IEEE 754 pow, which is exact for them.
		fx, _ := x.Float64()
		fy, _ := y.Float64()
		r := math.Pow(fx, fy)
		if math.IsNaN(r) {
			return nil, &DomainError{X: x, Func: "^"}
		}
		return z.SetFloat64(r), nil
	}
	switch {
	case y.Sign() == 0:
		return z.SetInt64(1), nil
	case x.Sign() == 0:
		if y.Sign() < 0 {
			return z.SetInf(false), nil
		}
		return z.SetInt64(0), nil
	case x.Sign() < 0:
		// A negative base is allowed only with an integer exponent.
		if !y.IsInt() {
			return nil, &DomainError{X: x, Func: "^"}
		}
		a := new(big.Float).SetPrec(z.Prec()).Neg(x)
		z = bigfloat.Pow(z, a, y)
		k, _ := y.Int(nil)
		if k.Bit(0) == 1 {
			z.Neg(z)
		}
		return z, nil
	}
	return bigfloat.Pow(z, x, y), nil
}

// Eval is a shortcut to parse an expression and return its result using the
// default functions and a fresh context with the math constants.
func Eval(src io.RuneScanner, opts ...ContextOption) (Value, error) {
	ctx := NewContext(opts...)
	a, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return ctx.Eval(a)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (Value, error) {
	return Eval(strings.NewReader(src), opts...)
}
