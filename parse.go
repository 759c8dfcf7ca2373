package mathexpr

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Chain  = [ Expr ] { ';' [ Expr ] }
// Expr   = num | string | bool | name | Call | Tuple | Assign | Unary | Binary | '(' Chain ')' | '[' Chain ']' | '{' Chain '}'
// Call   = funcname | funcname Expr | funcname ArgList
// ArgList = '(' Expr { ',' Expr } ')' | '[' Expr { ',' Expr } ']' | '{' Expr { ',' Expr } '}'
// Tuple  = Expr ',' Expr { ',' Expr }
// Assign = name ( '=' | '+=' | '-=' | '*=' | '/=' | '%=' | '^=' | '&&=' | '||=' ) Expr
// Unary  = ( '-' | '+' | '!' ) Expr
// Binary = Expr op Expr | Expr Expr

// Expr is a parsed expression that can be evaluated with a context.
type Expr struct {
	// n is the root node of the expression. It is nil for an empty
	// expression.
	n *node
	// names is the list of variable names used in the expression.
	names []string
}

// Parse parses an expression so it can be evaluated with a context. The given
// options are applied in order. An input containing only whitespace parses
// successfully to an expression which evaluates to Empty.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	scan := lex(src)
	p := parsectx{
		names: make(map[string]bool),
	}
	for _, opt := range opts {
		opt.parseOption(&p)
	}
	if p.funcs == nil {
		p.funcs = globalfuncs
	} else if !p.nodefaults {
		// Only set default functions that aren't already set.
		for k, v := range globalfuncs {
			if _, ok := p.funcs[k]; !ok {
				p.funcs[k] = v
			}
		}
	}
	n, err := parsechain(scan, &p, true)
	if err != nil {
		return nil, err
	}
	switch tok := scan.must(); tok.kind {
	case tokenEOF:
	case tokenSep:
		if !p.seof || tok.text != ";" {
			return nil, itShouldNotHaveEndedThisWay(tok, -1)
		}
	default:
		return nil, itShouldNotHaveEndedThisWay(tok, -1)
	}
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	sortstrs(ex.names)
	if len(ex.names) == 0 {
		ex.names = nil
	}
	return &ex, nil
}

// ParseString is a shortcut to parse a string expression.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// parsechain parses a sequence of statements separated by semicolons. Empty
// statements are allowed; an empty final statement makes the chain evaluate to
// Empty. If the whole chain is empty, the result is nil. parsechain pushes the
// token that ends the chain. If top is set and the parser stops on
// semicolons, then the first semicolon ends the chain.
func parsechain(scan *lexer, p *parsectx, top bool) (*node, error) {
	var n *node
	for first := true; ; first = false {
		tok, err := scan.next("")
		if err != nil {
			return nil, err
		}
		scan.push(tok)
		var stmt *node
		switch {
		case tok.kind == tokenEOF, tok.kind == tokenClose:
			// Empty final statement.
		case tok.kind == tokenSep && tok.text == ";":
			// Empty statement.
		default:
			stmt, err = parseterm(scan, p, exprprec)
			if err != nil {
				return nil, err
			}
		}
		if first {
			n = stmt
		} else {
			if n == nil {
				n = &node{kind: nodeEmpty}
			}
			if stmt == nil {
				stmt = &node{kind: nodeEmpty}
			}
			n = &node{kind: nodeChain, left: n, right: stmt}
		}
		end := scan.must()
		if end.kind != tokenSep || end.text != ";" || top && p.seof {
			scan.push(end)
			return n, nil
		}
	}
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, p *parsectx, until operator) (*node, error) {
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	return parsetail(scan, p, n, until)
}

// parsetail parses the operators and operands following an already parsed
// lhs n until reaching an operator no more binding than until.
func parsetail(scan *lexer, p *parsectx, n *node, until operator) (*node, error) {
	// tup is the last element link of a tuple whose head is n.
	var tup *node
	for {
		if p.resv != nil {
			// A niladic function followed by a parenthesized term was parsed
			// somewhere in n. The parsing here is as if we encountered an open
			// bracket, except that the contents are already parsed and valid.
			// The bracketed term can still take operators that bind more
			// than multiplication: zero(x)^y -> zero*(x^y).
			if !termprec.moreBinding(until) {
				return n, nil
			}
			r := p.resv
			p.resv = nil
			rhs, err := parsetail(scan, p, r, termprec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeMul, left: n, right: rhs}
			tup = nil
		}
		tok, err := scan.next(p.wseof)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent, tokenString:
			// (parsed) x -> (parsed) * (x)
			// (parsed) x^(expr) -> (parsed) * (x^(expr))
			// a^(parsed) x -> (a^(parsed)) * (x)
			scan.push(tok)
			prec := termprec
			if !prec.moreBinding(until) {
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeMul, left: n, right: rhs}
			tup = nil
		case tokenOp:
			// Binary operator.
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			if prec.op == nodeAssign && n.kind != nodeName {
				return nil, &TargetError{Col: tok.pos, Operator: tok.text}
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, emptyOperand(scan)
			}
			if prec.op == nodeAssign {
				n = &node{kind: nodeAssign, name: n.name, op: assignop(tok.text), left: rhs}
			} else {
				n = &node{kind: prec.op, left: n, right: rhs}
			}
			tup = nil
		case tokenOpen:
			// Since parselhs parses functions aggressively, this is a
			// multiplication by a parenthesized term: 2 (expr) -> (2) * (expr).
			prec := termprec
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, end, err := parsebracket(scan, p, tok)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			n = &node{kind: nodeMul, left: n, right: rhs}
			tup = nil
		case tokenSep:
			if tok.text != "," || !tupleprec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			// (parsed), x -> tuple
			// (tuple), x -> tuple with one more element
			rhs, err := parseterm(scan, p, tupleprec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, emptyOperand(scan)
			}
			link := &node{kind: nodeTuple, left: rhs}
			if tup == nil {
				n = &node{kind: nodeTuple, left: n, right: link}
			} else {
				tup.right = link
			}
			tup = link
		case tokenClose, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("mathexpr: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary,
// any encountered token must be valid as the start of a subexpression, and
// whitespace normally lexed as EOF is ignored.
func parselhs(scan *lexer, p *parsectx, until operator) (*node, error) {
	// Don't use EOF whitespace for LHS.
	tok, err := scan.next("")
	if err != nil {
		return nil, err
	}
	var n *node
	switch tok.kind {
	case tokenNum:
		n = &node{kind: nodeNum, name: tok.text}
	case tokenString:
		n = &node{kind: nodeStr, name: tok.text}
	case tokenIdent:
		if tok.text == "true" || tok.text == "false" {
			n = &node{kind: nodeBool, name: tok.text}
			break
		}
		fn := p.funcs[tok.text]
		if fn == nil {
			p.names[tok.text] = true
			n = &node{kind: nodeName, name: tok.text}
		} else {
			rhs, exp, err := parsecall(scan, p, until, fn, tok.text)
			if err != nil {
				return nil, err
			}
			// If fn is niladic and the call is like fn(a), then the result
			// from parsecall is nil, nil, and p.resv is non-nil.
			n = &node{kind: nodeCall, name: tok.text, fn: fn, right: rhs}
			if exp != nil {
				exp.left = n
				n = exp
			}
		}
	case tokenOp:
		// unary operator
		prec := unop(tok.text)
		if prec.op == nodeNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, emptyOperand(scan)
		}
		n = &node{kind: prec.op, left: rhs}
	case tokenOpen:
		rhs, _, err := parsebracket(scan, p, tok)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			rhs = &node{kind: nodeEmpty}
		}
		n = rhs
	case tokenClose:
		// This might be part of niladic func(), so just let the caller decide
		// what to do.
		scan.push(tok)
		return nil, nil
	case tokenSep:
		switch tok.text {
		case ",":
			return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
		case ";":
			// The statement ends here. The caller decides whether that's
			// allowed.
			scan.push(tok)
			return nil, nil
		default:
			panic("mathexpr: invalid separator " + strconv.Quote(tok.text))
		}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("mathexpr: unknown token: " + tok.String())
	}
	return n, nil
}

// parsebracket parses a bracketed chain following the open bracket tok. The
// result is nil if the brackets are empty. The second result is the closing
// bracket.
func parsebracket(scan *lexer, p *parsectx, tok lexToken) (*node, lexToken, error) {
	match := rightbracket(tok.text)
	n, err := parsechain(scan, p, false)
	if err != nil {
		// Reporting the unclosed bracket is more helpful than the empty
		// expression at the end of the input.
		if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
			err = &BracketError{Col: ee.Col, Left: tok.text}
		}
		return nil, lexToken{}, err
	}
	end := scan.must()
	if end.kind != tokenClose || end.text != closebrackets[match] {
		return nil, end, itShouldNotHaveEndedThisWay(end, match)
	}
	return n, end, nil
}

// parsecall parses the arguments to a call of a given Func. The second result,
// if non-nil, is a node that the function call is lhs to.
func parsecall(scan *lexer, p *parsectx, until operator, fn Func, name string) (*node, *node, error) {
	// We respect whitespace here so that sqrt\nx doesn't string
	// together expressions.
	tok, err := scan.next(p.wseof)
	if err != nil {
		return nil, nil, err
	}
	switch tok.kind {
	case tokenOp:
		// Check for e.g. ^2 in cos^2 x. Must be an exponentiation or higher.
		// Note that the fact that exponentiation is important here:
		// func^x^y(z) parses as [func(z)]^(x^y).
		if prec := binop(tok.text); prec.moreBinding(powprec) {
			up, err := parseterm(scan, p, powprec)
			if err != nil {
				return nil, nil, err
			}
			if up == nil {
				return nil, nil, emptyOperand(scan)
			}
			// The caller fills in up.left.
			exp := &node{kind: nodePow, right: up}
			if p.resv != nil {
				// The exponent ended in a niladic call with a bracketed term,
				// as in f^zero(x). That term is the argument to f if f takes
				// one. Otherwise it stays reserved for implicit multiplication.
				switch {
				case fn.CanCall(1):
					args := &node{kind: nodeArg, left: p.resv}
					p.resv = nil
					return args, exp, nil
				case fn.CanCall(0):
					return nil, exp, nil
				default:
					p.resv = nil
					return nil, nil, &CallError{Col: tok.pos, Func: name, Len: 1}
				}
			}
			args, ee, err := parsecall(scan, p, until, fn, name)
			if err != nil {
				return nil, nil, err
			}
			if ee != nil {
				// The exponent is right-associative and absorbs any further
				// exponent, so a second one is malformed input.
				return nil, nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			return args, exp, nil
		}
		// Other than exponentiations, finding an operator is the same as
		// finding a number or identifier.
		fallthrough
	case tokenNum, tokenIdent, tokenString:
		switch {
		case fn.CanCall(1):
			// Single argument. exp x -> exp(x)
			scan.push(tok)
			if termprec.moreBinding(until) {
				until = termprec
			}
			rhs, err := parseterm(scan, p, until)
			if err != nil {
				return nil, nil, err
			}
			if rhs == nil {
				return nil, nil, emptyOperand(scan)
			}
			return &node{kind: nodeArg, left: rhs}, nil, nil
		case fn.CanCall(0):
			// No argument. f x -> (f) * (x)
			scan.push(tok)
		default:
			// Any other number of arguments requires brackets.
			return nil, nil, &CallError{Col: tok.pos, Func: name, Len: 1}
		}
	case tokenOpen:
		match := rightbracket(tok.text)
		n, len, err := parsearglist(scan, p, tok.text)
		if err != nil {
			return nil, nil, err
		}
		end := scan.must()
		if end.kind != tokenClose {
			panic("mathexpr: parsearglist ended on " + end.String() + " instead of close bracket")
		}
		if end.text != closebrackets[match] {
			return nil, nil, &BracketError{Col: end.pos, Left: tok.text, Right: end.text}
		}
		if !fn.CanCall(len) {
			if p.resv != nil && fn.CanCall(0) {
				// If fn is niladic, convert from fn(a) to fn()*a.
				return nil, nil, nil
			}
			p.resv = nil
			return nil, nil, &CallError{Col: tok.pos, Func: name, Len: len}
		}
		p.resv = nil
		return n, nil, nil
	case tokenClose, tokenSep, tokenEOF:
		if !fn.CanCall(0) {
			return nil, nil, &CallError{Col: tok.pos, Func: name}
		}
		scan.push(tok)
	default:
		panic("mathexpr: unknown token: " + tok.String())
	}
	return nil, nil, nil
}

// parsearglist parses a bracketed list of zero or more args.
func parsearglist(scan *lexer, p *parsectx, open string) (*node, int, error) {
	var n node
	l := &n
	len := 0
	for {
		rhs, err := parseterm(scan, p, tupleprec)
		if err != nil {
			// As a special case, reporting mismatched brackets is more helpful
			// than empty expression, if that's what we'd do here.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: open}
			}
			return nil, 0, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			// Caller checks that brackets match.
			scan.push(end)
			if rhs == nil {
				// No expression parsed.
				// func() is allowed, but func(a,) isn't.
				if len != 0 {
					return nil, 0, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, 0, nil
			}
			l.right = &node{kind: nodeArg, left: rhs}
			if len == 0 {
				// func(a). If func is niladic, then this is an implicit
				// multiplication. Reserve the rhs so that the parser can
				// convert from a function call.
				p.resv = rhs
			}
			return n.right, len + 1, nil
		case tokenSep:
			if end.text != "," || rhs == nil {
				return nil, 0, &SeparatorError{Col: end.pos, Sep: end.text}
			}
			len++
			l.right = &node{kind: nodeArg, left: rhs}
			l = l.right
		case tokenEOF:
			return nil, 0, &BracketError{Col: end.pos, Left: open, Right: ""}
		default:
			panic("mathexpr: parseterm ended on non-end token " + end.String())
		}
	}
}

// emptyOperand creates an error for a missing operand ending at the pushed
// token. The token remains pushed.
func emptyOperand(scan *lexer) error {
	end := scan.must()
	scan.push(end)
	return &EmptyExpressionError{Col: end.pos, End: end.text}
}

// rightbracket gets the closing bracket index for an opening bracket.
func rightbracket(left string) int {
	r, sz := utf8.DecodeRuneInString(left)
	k := strings.IndexRune(OpenBrackets, r)
	if k < 0 || sz != len(left) {
		panic("mathexpr: invalid bracket " + strconv.Quote(left))
	}
	return k
}

// leftbracket gets the opening bracket matching right. If right is no bracket,
// then the result is the empty string.
func leftbracket(right int) string {
	if right == -1 {
		return ""
	}
	return openbrackets[right]
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. match is the bracket rune index that
// the expression should have matched, or -1 if none.
func itShouldNotHaveEndedThisWay(tok lexToken, match int) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: ""}
	case tokenClose:
		// A bracket could be the wrong bracket for the opening brace or any
		// bracket at the end of an input.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: tok.text}
	case tokenSep:
		// Separator that couldn't continue a statement or tuple.
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	default:
		panic("mathexpr: it really should not have ended this way: " + tok.String())
	}
}

// Vars returns the variable names used when evaluating the expression,
// including any constants it refers to.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term. The result parses
// to the same expression.
func (e *Expr) String() string {
	if e.n == nil {
		return ""
	}
	var b strings.Builder
	e.n.fmt(&b, false, true)
	return b.String()
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "=", "+=", "-=", "*=", "/=", "%=", "^=", "&&=", "||=":
		return operator{3, true, nodeAssign}
	case "||":
		return operator{4, false, nodeOr}
	case "&&":
		return operator{5, false, nodeAnd}
	case "==":
		return operator{6, false, nodeEq}
	case "!=":
		return operator{6, false, nodeNe}
	case "<":
		return operator{6, false, nodeLt}
	case "<=":
		return operator{6, false, nodeLe}
	case ">":
		return operator{6, false, nodeGt}
	case ">=":
		return operator{6, false, nodeGe}
	case "+":
		return operator{7, false, nodeAdd}
	case "-":
		return operator{7, false, nodeSub}
	case "*", "×":
		return operator{8, false, nodeMul}
	case "/", "÷":
		return operator{8, false, nodeDiv}
	case "%":
		return operator{8, false, nodeMod}
	case "^":
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, nodeNop}
	case "-":
		return operator{10, true, nodeNeg}
	case "!":
		return operator{10, true, nodeNot}
	default:
		return operator{}
	}
}

// assignop gets the arithmetic performed by an assignment operator.
func assignop(text string) nodeKind {
	switch text {
	case "+=":
		return nodeAdd
	case "-=":
		return nodeSub
	case "*=":
		return nodeMul
	case "/=":
		return nodeDiv
	case "%=":
		return nodeMod
	case "^=":
		return nodePow
	case "&&=":
		return nodeAnd
	case "||=":
		return nodeOr
	default:
		return nodeNone
	}
}

var (
	// termprec is the default precedence for parsing terms. Its prec
	// should match that of multiplication.
	termprec = operator{8, true, nodeMul}
	// tupleprec is the precedence of the tuple separator, the least binding
	// operator within a statement.
	tupleprec = operator{2, false, nodeTuple}
	// powprec is the precedence of exponentiation.
	powprec = binop("^")
	// exprprec is the precedence required to parse an entire statement.
	exprprec = operator{-128, true, nodeNone}
)
