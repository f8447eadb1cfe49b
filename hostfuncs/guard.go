package hostfuncs

import (
	"fmt"
)

// PanicError is a recovered panic from a host adapter.
type PanicError struct {
	Value any
	Op    string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.Op, e.Value)
}

// Guard runs fn and converts a panic into a *PanicError, so an adapter fault
// never unwinds into the guest call that triggered it.
func Guard(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Op: op, Value: r}
		}
	}()
	fn()
	return nil
}
