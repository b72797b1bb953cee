package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle reports an operation on a released or foreign
	// Runtime, Context, Value, or CString.
	ErrInvalidHandle = errors.New("invalid or released handle")

	// ErrDoubleRelease reports a second release of the same resource.
	ErrDoubleRelease = errors.New("resource already released")

	// ErrConversionFailed reports a value coercion that threw.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrEvalFailed reports script source that raised an exception.
	ErrEvalFailed = errors.New("evaluation failed")
)

// EvalError carries the string form of a script exception. It unwraps to
// ErrEvalFailed.
type EvalError struct {
	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluation failed: %s", e.Message)
}

func (e *EvalError) Unwrap() error { return ErrEvalFailed }
