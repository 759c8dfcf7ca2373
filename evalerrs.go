package mathexpr

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
)

// NameError is an error indicating a variable that has no value in the
// evaluation context.
type NameError struct {
	// Name is the undefined variable.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable " + strconv.Quote(err.Name)
}

// TypeError is an error indicating an operator applied to values of kinds it
// does not support.
type TypeError struct {
	// Op is the operator text.
	Op string
	// Kinds are the kinds of the operands.
	Kinds []Kind
	// Unary is whether the operator was applied as a unary operator.
	Unary bool
}

func (err *TypeError) Error() string {
	s := make([]string, len(err.Kinds))
	for i, k := range err.Kinds {
		s[i] = k.String()
	}
	if err.Unary {
		return "cannot apply unary " + err.Op + " to " + strings.Join(s, " and ")
	}
	return "cannot apply " + err.Op + " to " + strings.Join(s, " and ")
}

// ArgError is an error indicating a function argument of the wrong kind.
type ArgError struct {
	// Func is the name of the function.
	Func string
	// Arg is the 1-based index of the argument.
	Arg int
	// Want describes what the function expected.
	Want string
	// Got is the kind of the argument actually passed.
	Got Kind
}

func (err *ArgError) Error() string {
	r := "argument " + strconv.Itoa(err.Arg)
	if err.Func != "" {
		r += " of " + err.Func
	}
	return r + " must be " + err.Want + ", not " + err.Got.String()
}

// AssignError is an error indicating an assignment to a constant.
type AssignError struct {
	// Name is the constant's name.
	Name string
}

func (err *AssignError) Error() string {
	return "cannot assign to constant " + strconv.Quote(err.Name)
}

// DomainError is an error returned when a function or operator is applied to
// arguments outside its domain. DomainError unwraps to big.ErrNaN.
type DomainError struct {
	// X is the out-of-domain argument. It may be nil if the problem is the
	// combination of arguments.
	X *big.Float
	// Arg is the 1-based index of the argument, or 0 if unknown.
	Arg int
	// Func is a name identifying the function or operator.
	Func string
	// Err is the underlying error, if any.
	Err error
}

func (err *DomainError) Error() string {
	r := "outside domain"
	if err.X != nil {
		r = gtext(err.X, 10) + " " + r
	}
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func (err *DomainError) Unwrap() error {
	if err.Err != nil {
		return err.Err
	}
	return big.ErrNaN{}
}

// nameCallError attaches a function name to errors returned from a call that
// did not name the function themselves.
func nameCallError(err error, name string) error {
	var de *DomainError
	if errors.As(err, &de) && de.Func == "" {
		de.Func = name
		return err
	}
	var ae *ArgError
	if errors.As(err, &ae) && ae.Func == "" {
		ae.Func = name
		return err
	}
	var nan big.ErrNaN
	if errors.As(err, &nan) {
		return &DomainError{Func: name, Err: nan}
	}
	return err
}
