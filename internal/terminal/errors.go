package terminal

import (
	"errors"
)

// Failure kinds. Errors returned by this package match at least one of these with errors.Is.
var (
	ErrTerminalQuery     = errors.New("terminal attribute query failed")
	ErrTerminalSet       = errors.New("terminal attribute update failed")
	ErrGeometryDetection = errors.New("terminal size detection failed")
	ErrGeometryParse     = errors.New("malformed cursor position report")
	ErrInputRead         = errors.New("terminal read failed")
	ErrOutputWrite       = errors.New("terminal write failed")
)

// Error records the operation that failed, the kind of failure and its cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind error, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}
