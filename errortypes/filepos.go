package errortypes

import (
	"errors"
	"fmt"
)

// ErrFilePos extends the error interface to add details on the file position where the error occurred.
type ErrFilePos interface {
	error
	File() string
	Line() int
	Col() int
}

// Kind classifies a compilation failure.
type Kind int

const (
	Unknown Kind = iota
	LexError
	SyntaxError
	DuplicateDefinitionError
	UnresolvedReferenceError
	UndefinedVariableError
	CyclicImportError
	ImportNotFoundError
	CustomStyleMismatchError
	RecursiveTemplateError
	ScriptSyntaxError
	SpecializationError
)

var kindNames = [...]string{
	"Error",
	"LexError",
	"SyntaxError",
	"DuplicateDefinitionError",
	"UnresolvedReferenceError",
	"UndefinedVariableError",
	"CyclicImportError",
	"ImportNotFoundError",
	"CustomStyleMismatchError",
	"RecursiveTemplateError",
	"ScriptSyntaxError",
	"SpecializationError",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a fatal diagnostic for one compilation.  Line and Col are 1-based;
// zero means the position is unknown.
type Error struct {
	Kind Kind
	Msg  string
	file string
	line int
	col  int
}

var _ ErrFilePos = &Error{}

// Errorf creates an Error of the given kind at the given position.
func Errorf(kind Kind, file string, line, col int, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		file: file,
		line: line,
		col:  col,
	}
}

// NewErrFilePosf creates an error conforming to the ErrFilePos interface.
func NewErrFilePosf(file string, line, col int, format string, args ...interface{}) error {
	return Errorf(Unknown, file, line, col, format, args...)
}

func (e *Error) Error() string {
	var loc string
	switch {
	case e.file != "" && e.line > 0:
		loc = fmt.Sprintf("%s:%d:%d: ", e.file, e.line, e.col)
	case e.file != "":
		loc = e.file + ": "
	}
	return loc + e.Kind.String() + ": " + e.Msg
}

func (e *Error) File() string {
	return e.file
}

func (e *Error) Line() int {
	return e.line
}

func (e *Error) Col() int {
	return e.col
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsErrFilePos identifies whethere or not the root cause of the provided error is of the ErrFilePos type.
// Wrapped errors are unwrapped via the Cause() function or errors.Unwrap.
func IsErrFilePos(err error) bool {
	if err == nil {
		return false
	}
	err = rootCause(err)

	_, isErrFilePos := err.(ErrFilePos)
	return isErrFilePos
}

// ToErrFilePos converts the input error to an ErrFilePos if possible, or nil if not.
// If IsErrFilePos returns true, this will not return nil.
func ToErrFilePos(err error) ErrFilePos {
	if err == nil {
		return nil
	}
	err = rootCause(err)
	if out, isErrFilePos := err.(ErrFilePos); isErrFilePos {
		return out
	}
	return nil
}

func rootCause(err error) error {
	type causer interface {
		Cause() error
	}

	for {
		if e, ok := err.(causer); ok {
			err = e.Cause()
		} else if next := errors.Unwrap(err); next != nil {
			err = next
		} else {
			return err
		}
	}
}
