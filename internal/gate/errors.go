package gate

import "fmt"

// PanicError records a panic raised by the init function.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("init panicked: %v", e.Value)
}
