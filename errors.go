package withdefer

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for input-contract violations. Match them with errors.Is;
// the concrete error carrying them is always a *MisuseError.
var (
	// ErrNilWork indicates Run or Do was called with a nil work function.
	ErrNilWork = errors.New("run expects a function")

	// ErrNilCleanup indicates a cleanup was registered with a nil function.
	ErrNilCleanup = errors.New("defer expects a function")

	// ErrScopeSettled indicates a cleanup was registered after the scope's
	// work function already returned. Such a cleanup would never run.
	ErrScopeSettled = errors.New("scope already settled")
)

// MisuseError reports an input-contract violation on Run, Do, or one of the
// Scope registration methods. A nil work function is returned directly from
// Run or Do; registration misuse panics at the call site and is recovered
// and aggregated by the coordinator like any other work-function failure.
type MisuseError struct {
	// Op is the operation that was misused ("Run", "Defer", ...).
	Op string

	// Err is the sentinel identifying the violation.
	Err error

	// Hint suggests the correct usage, when there is one.
	Hint string
}

// Error returns the violation message.
func (e *MisuseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("withdefer: %s: %v (%s)", e.Op, e.Err, e.Hint)
	}
	return fmt.Sprintf("withdefer: %s: %v", e.Op, e.Err)
}

// Unwrap returns the sentinel so errors.Is can match it.
func (e *MisuseError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic recovered from a work function or a cleanup
// action, together with the stack at the point of the panic.
type PanicError struct {
	// Value is the value the panic was raised with.
	Value any

	// Stack is the goroutine stack captured during recovery.
	Stack []byte
}

// Error returns the panic message.
func (e *PanicError) Error() string {
	return fmt.Sprintf("withdefer: recovered panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error, so errors.Is and
// errors.As can keep walking the chain. It returns nil otherwise.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// TeardownError aggregates every failure from one coordinator invocation:
// the work function's failure first, if any, followed by each cleanup
// action's failure in execution (reverse-registration) order. Run and Do
// return it whenever at least one failure occurred, even a single one.
type TeardownError struct {
	errs []error
}

// Error summarizes the aggregated failures in order.
func (e *TeardownError) Error() string {
	if len(e.errs) == 1 {
		return fmt.Sprintf("withdefer: 1 error occurred: %v", e.errs[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "withdefer: %d errors occurred:", len(e.errs))
	for _, err := range e.errs {
		fmt.Fprintf(&b, "\n\t* %v", err)
	}
	return b.String()
}

// Errors returns a copy of the underlying failures in the order they were
// recorded.
func (e *TeardownError) Errors() []error {
	out := make([]error, len(e.errs))
	copy(out, e.errs)
	return out
}

// Unwrap exposes the underlying failures to errors.Is and errors.As.
func (e *TeardownError) Unwrap() []error {
	return e.errs
}
