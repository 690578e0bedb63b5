package rxprops

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the sentinel wrapped by every configuration-time error.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError describes a parameter that failed its type contract.
//
// ArgumentError is only ever returned while configuring the engine
// (composing, building actions, making selectors), never mid-stream.
type ArgumentError struct {
	// Op is the operation that rejected the argument, e.g. "compose".
	Op string

	// Param names the rejected parameter.
	Param string

	// Expected is a human-readable description of what was accepted.
	Expected string

	// Got is the rejected value.
	Got any
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("%s: [%s] %s", e.Op, e.Param, e.Expected)
	}
	return fmt.Sprintf("%s: [%s] %s (got %T)", e.Op, e.Param, e.Expected, e.Got)
}

// Unwrap returns ErrInvalidArgument so errors.Is matches every ArgumentError.
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// NewArgumentError creates an ArgumentError.
func NewArgumentError(op, param, expected string, got any) *ArgumentError {
	return &ArgumentError{
		Op:       op,
		Param:    param,
		Expected: expected,
		Got:      got,
	}
}

// IsInvalidArgument returns true if err is or wraps ErrInvalidArgument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
