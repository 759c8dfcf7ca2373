package mathexpr

import "strconv"

// InputError is an error with position information. Every error that Parse
// returns for malformed input implements InputError, and so does every error
// Eval returns from parsing.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

// errpos prefixes msg with a rune position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// OperatorError reports an operator used where it has no meaning, like * at
// the start of an expression or ! between two operands.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the offending token.
	Operator string
	// Unary is set when the operator appeared where a prefix operator was
	// expected.
	Unary bool
}

func (err *OperatorError) Error() string {
	kind := " is not a binary operator"
	if err.Unary {
		kind = " is not a unary operator"
	}
	return errpos(err.Col, strconv.Quote(err.Operator)+kind)
}

func (err *OperatorError) Pos() int { return err.Col }

// BracketError reports a bracket without a matching partner.
type BracketError struct {
	// Col is the position of the bracket that could not be matched, or of
	// the end of input if Right is empty.
	Col int
	// Left is the opening bracket, or empty for a stray closing bracket.
	Left string
	// Right is the closing bracket, or empty for an unclosed bracket.
	Right string
}

func (err *BracketError) Error() string {
	switch {
	case err.Left == "":
		return errpos(err.Col, "close bracket "+err.Right+" was never opened")
	case err.Right == "":
		return errpos(err.Col, "open bracket "+err.Left+" was never closed")
	default:
		return errpos(err.Col, "bracket "+err.Left+" closed by "+err.Right)
	}
}

func (err *BracketError) Pos() int { return err.Col }

// SeparatorError reports a comma or semicolon with nothing before it to
// separate, or a semicolon inside a function's argument list.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "unexpected separator "+strconv.Quote(err.Sep))
}

func (err *SeparatorError) Pos() int { return err.Col }

// CallError reports a function given a number of arguments it does not
// accept.
type CallError struct {
	// Col is the position where the argument list starts or should start.
	Col int
	// Func is the name of the function.
	Func string
	// Len is the number of arguments the call supplies.
	Len int
}

func (err *CallError) Error() string {
	args := " arguments"
	if err.Len == 1 {
		args = " argument"
	}
	return errpos(err.Col, "cannot call "+err.Func+" with "+strconv.Itoa(err.Len)+args)
}

func (err *CallError) Pos() int { return err.Col }

// EmptyExpressionError reports a missing operand or bracketed term.
type EmptyExpressionError struct {
	// Col is the position of the token where the expression was expected.
	Col int
	// End is that token, or empty at the end of input.
	End string
}

func (err *EmptyExpressionError) Error() string {
	switch {
	case err.End != "":
		return errpos(err.Col, "empty expression before "+strconv.Quote(err.End))
	case err.Col <= 1:
		return errpos(err.Col, "empty expression")
	default:
		return errpos(err.Col, "empty expression at end of input")
	}
}

func (err *EmptyExpressionError) Pos() int { return err.Col }

// TargetError reports an assignment whose left side is not a variable name,
// as in 1 = x or f() += 2.
type TargetError struct {
	// Col is the position of the assignment operator.
	Col int
	// Operator is the assignment operator.
	Operator string
}

func (err *TargetError) Error() string {
	return errpos(err.Col, "cannot assign with "+strconv.Quote(err.Operator)+" to anything but a variable")
}

func (err *TargetError) Pos() int { return err.Col }

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*TargetError)(nil)
	_ InputError = (*LexError)(nil)
)
