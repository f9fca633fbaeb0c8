package toy

import "fmt"

type Location struct {
	Filename string
	Line     int
	Column   int
}

func (l *Location) String() string {
	if l == nil {
		return "<unknown>"
	}

	if l.Filename == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}

	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Line, l.Column)
}

// CompileError is a failure of a single top-level unit. The driver records it
// and applies the configured recovery policy.
type CompileError interface {
	error
	Location() *Location
}

type ParseError struct {
	Loc *Location
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}

func (e *ParseError) Location() *Location {
	return e.Loc
}

type UndefinedError struct {
	Loc  *Location
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("%s: undefined: %s", e.Loc, e.Name)
}

func (e *UndefinedError) Location() *Location {
	return e.Loc
}

type UndefinedFuncError struct {
	Loc  *Location
	Name string
}

func (e *UndefinedFuncError) Error() string {
	return fmt.Sprintf("%s: call to undefined function: %s", e.Loc, e.Name)
}

func (e *UndefinedFuncError) Location() *Location {
	return e.Loc
}

type UnknownOperatorError struct {
	Loc *Location
	Op  BinaryOp
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("%s: invalid binary operator '%s'", e.Loc, e.Op)
}

func (e *UnknownOperatorError) Location() *Location {
	return e.Loc
}

type RedefinitionError struct {
	Loc  *Location
	Name string
}

func (e *RedefinitionError) Error() string {
	return fmt.Sprintf("%s: redefinition of function %s", e.Loc, e.Name)
}

func (e *RedefinitionError) Location() *Location {
	return e.Loc
}

type SignatureMismatchError struct {
	Loc  *Location
	Name string
	Want int
	Got  int
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("%s: redeclaration of %s with %d parameters, previously declared with %d", e.Loc, e.Name, e.Got, e.Want)
}

func (e *SignatureMismatchError) Location() *Location {
	return e.Loc
}

type ArityError struct {
	Loc  *Location
	Name string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: %s expects %d arguments, got %d", e.Loc, e.Name, e.Want, e.Got)
}

func (e *ArityError) Location() *Location {
	return e.Loc
}

type VerifyError struct {
	Loc  *Location
	Func string
	Msg  string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s: invalid function %s: %s", e.Loc, e.Func, e.Msg)
}

func (e *VerifyError) Location() *Location {
	return e.Loc
}
