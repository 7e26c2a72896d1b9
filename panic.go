package gostreams

import (
	"fmt"
	"runtime"
)

// PanicError is the cause a consumed queue is canceled with when a sink panics.
// The panic itself is re-raised.
type PanicError struct {
	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace of the panicking goroutine.
	Stack string
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

func newPanicError(v any) *PanicError {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)

	return &PanicError{
		Value: v,
		Stack: string(buf[:n]),
	}
}
