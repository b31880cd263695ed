package withdefer

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// Run invokes work with a fresh Scope and guarantees that every cleanup
// action registered on the scope executes after work settles, in reverse
// registration order, whether work returned normally, returned an error, or
// panicked.
//
// On success Run returns the work function's value. If the work function or
// any cleanup action failed, Run returns the zero value and a
// *TeardownError wrapping every failure in the order it occurred. A nil
// work function fails fast with a *MisuseError wrapping ErrNilWork, before
// any scope is created; that error is returned directly, never aggregated.
//
// Each invocation owns its own scope and error collection; nested Run calls
// are independent, and an inner scope drains completely before control
// returns to the outer work function.
func Run[T any](ctx context.Context, work func(ctx context.Context, s *Scope) (T, error), opts ...Option) (T, error) {
	var zero T
	if work == nil {
		return zero, &MisuseError{Op: "Run", Err: ErrNilWork}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	scope := &Scope{id: uuid.New().String(), name: cfg.name}
	report := Report{ScopeID: scope.id, Name: cfg.name}
	cfg.observer.ScopeStarted(report)
	start := time.Now()

	var errs []error
	value, err := invokeWork(ctx, scope, work)
	if err != nil {
		errs = append(errs, err)
	}

	// Teardown is unconditional and strictly sequential: one action must
	// fully return before the next one starts, and a failing or panicking
	// action never halts the drain.
	actions := scope.settle()
	for i := len(actions) - 1; i >= 0; i-- {
		res := invokeAction(ctx, scope.id, i, actions[i])
		report.Actions = append(report.Actions, res)
		cfg.observer.ActionSettled(res)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}

	report.TotalDuration = time.Since(start)
	if len(errs) > 0 {
		report.Err = &TeardownError{errs: errs}
	}
	cfg.observer.ScopeSettled(report)

	if report.Err != nil {
		return zero, report.Err
	}
	return value, nil
}

// Do is Run for work functions that produce no value.
func Do(ctx context.Context, work func(ctx context.Context, s *Scope) error, opts ...Option) error {
	if work == nil {
		return &MisuseError{Op: "Do", Err: ErrNilWork}
	}
	_, err := Run(ctx, func(ctx context.Context, s *Scope) (struct{}, error) {
		return struct{}{}, work(ctx, s)
	}, opts...)
	return err
}

// invokeWork runs the work function, converting a panic into a *PanicError.
func invokeWork[T any](ctx context.Context, s *Scope, work func(context.Context, *Scope) (T, error)) (value T, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return work(ctx, s)
}

// invokeAction runs one cleanup action, converting a panic into a
// *PanicError.
func invokeAction(ctx context.Context, scopeID string, index int, a action) ActionResult {
	res := ActionResult{ScopeID: scopeID, Name: a.name, Index: index}
	if res.Name == "" {
		res.Name = fmt.Sprintf("cleanup[%d]", index)
	}

	start := time.Now()
	func() {
		defer func() {
			if v := recover(); v != nil {
				res.Err = &PanicError{Value: v, Stack: debug.Stack()}
			}
		}()
		res.Err = a.fn(ctx)
	}()
	res.Duration = time.Since(start)
	return res
}
