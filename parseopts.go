package mathexpr

import (
	"maps"
	"slices"
	"strconv"
	"unicode"
)

// ParseOption changes how Parse reads an expression.
type ParseOption interface {
	parseOption(*parsectx)
}

// optfunc is a ParseOption that edits the parser state directly.
type optfunc func(*parsectx)

func (f optfunc) parseOption(p *parsectx) { f(p) }

// parsectx is the state of one call to Parse.
type parsectx struct {
	// names collects the variable names the expression reads or assigns.
	names map[string]bool
	// funcs maps names to the functions they call. A nil entry makes the
	// name an ordinary variable.
	funcs map[string]Func
	// shared is set when funcs belongs to a preset and must be copied before
	// any change.
	shared bool
	// nodefaults is set when funcs already says everything about the default
	// functions, so Parse need not merge them in.
	nodefaults bool
	// resv holds the bracketed term of a call like f(x). If f turns out to be
	// niladic, the parser uses it as the right operand of an implicit
	// multiplication instead.
	resv *node
	// wseof lists whitespace runes that the lexer turns into EOF.
	wseof string
	// seof is set when a top-level semicolon ends the input rather than
	// starting another statement.
	seof bool
}

// setFuncs binds each name in fns, copying a shared table first.
func (p *parsectx) setFuncs(fns map[string]Func) {
	switch {
	case p.funcs == nil:
		p.funcs = make(map[string]Func, len(fns))
	case p.shared:
		p.funcs = maps.Clone(p.funcs)
		p.shared = false
	}
	maps.Copy(p.funcs, fns)
	if !p.nodefaults {
		// Once every default name has an entry, nothing is left to merge.
		n := 0
		for k := range globalfuncs {
			if _, ok := p.funcs[k]; ok {
				n++
			}
		}
		p.nodefaults = n == len(globalfuncs)
	}
}

// ParseFunc makes name call fn. A nil fn makes name a variable, which is how
// to hide a default function.
func ParseFunc(name string, fn Func) ParseOption {
	return optfunc(func(p *parsectx) {
		p.setFuncs(map[string]Func{name: fn})
	})
}

// ParseFuncs is ParseFunc for every entry of fns.
func ParseFuncs(fns map[string]Func) ParseOption {
	fns = maps.Clone(fns)
	return optfunc(func(p *parsectx) {
		p.setFuncs(fns)
	})
}

// DisableDefaultFuncs makes every default function name parse as a variable.
// Functions added by other options are unaffected when they come later.
func DisableDefaultFuncs() ParseOption {
	return optfunc(func(p *parsectx) {
		p.setFuncs(nofuncs)
	})
}

// nofuncs maps every default function name to nil.
var nofuncs = func() map[string]Func {
	m := make(map[string]Func, len(globalfuncs))
	for k := range globalfuncs {
		m[k] = nil
	}
	return m
}()

// StopOn makes Parse end the expression at any of the given runes instead of
// reading to EOF, which lets a caller evaluate a stream one line or one
// statement at a time. Each rune must be ';' or whitespace.
//
// Whitespace only stops the parser where an expression could end. Where a term
// is still expected, as at the start of the input or after an operator, open
// bracket, comma, or function name taking arguments, it is skipped like any
// other space. A semicolon stops the parser only outside brackets.
//
// The last StopOn among the options wins, presets included. StopOn with no
// runes restores reading to EOF.
func StopOn(chars ...rune) ParseOption {
	var (
		semi bool
		ws   []rune
	)
	for _, r := range chars {
		switch {
		case r == ';':
			semi = true
		case unicode.IsSpace(r):
			if !slices.Contains(ws, r) {
				ws = append(ws, r)
			}
		default:
			panic("mathexpr: cannot stop on " + strconv.QuoteRune(r))
		}
	}
	s := string(ws)
	return optfunc(func(p *parsectx) {
		p.seof = semi
		p.wseof = s
	})
}

// ParsingPreset bundles options for reuse across many calls to Parse. The
// preset resolves the function table once, so applying it is cheap. It must be
// the first option that changes anything, or it panics; options after it are
// fine.
func ParsingPreset(opts ...ParseOption) ParseOption {
	var p parsectx
	for _, opt := range opts {
		opt.parseOption(&p)
	}
	if p.funcs != nil && !p.nodefaults {
		for k, v := range globalfuncs {
			if _, ok := p.funcs[k]; !ok {
				p.funcs[k] = v
			}
		}
		p.nodefaults = true
	}
	return &preset{funcs: p.funcs, wseof: p.wseof, seof: p.seof}
}

// preset is the ParseOption made by ParsingPreset.
type preset struct {
	funcs map[string]Func
	wseof string
	seof  bool
}

func (o *preset) parseOption(p *parsectx) {
	if p.funcs != nil || p.wseof != "" || p.seof {
		panic("mathexpr: preset applied to non-default parse config")
	}
	if o.funcs != nil {
		p.funcs = o.funcs
		p.shared = true
		p.nodefaults = true
	}
	p.wseof = o.wseof
	p.seof = o.seof
}
