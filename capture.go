package workrange

import (
	"fmt"
	"runtime/debug"
)

// PanicError is a panic recovered from a setup or range callback.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return fmt.Sprintf("%s: %v", ErrCallbackPanicked, err)
	}
	return fmt.Sprintf("%s: %v", ErrCallbackPanicked, e.Value)
}

// Unwrap returns the value passed to panic, or nil if panic was called with something other
// than an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Is reports every PanicError as ErrCallbackPanicked.
func (e *PanicError) Is(target error) bool { return target == ErrCallbackPanicked }

// capture runs call and converts a panic into a *PanicError. With enabled == false the call
// runs bare and a panic unwinds normally.
func capture(enabled bool, call func() error) (err error) {
	if !enabled {
		return call()
	}
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return call()
}
