package withdefer

import (
	"context"
	"sync"
)

// CleanupFunc is a cleanup action. It receives the context passed to Run or
// Do unchanged; the coordinator never cancels that context to abort
// teardown. Whatever the action computes is discarded — only its error
// matters.
type CleanupFunc func(ctx context.Context) error

// Scope is the registration handle passed to a work function. Cleanup
// actions registered on it run after the work function settles, in reverse
// registration order.
//
// Registration is safe from goroutines the work function spawns, but the
// scope settles the moment the work function returns; registering on a
// settled scope panics with a *MisuseError wrapping ErrScopeSettled.
type Scope struct {
	id   string
	name string

	mu      sync.Mutex
	actions []action
	settled bool
}

type action struct {
	name string
	fn   CleanupFunc
}

// ID returns the unique identifier of this invocation, for correlating
// reports, logs and traces.
func (s *Scope) ID() string {
	return s.id
}

// Defer registers fn to run after the work function settles. Actions run in
// reverse registration order, strictly one at a time. A nil fn panics with
// a *MisuseError wrapping ErrNilCleanup.
func (s *Scope) Defer(fn CleanupFunc) {
	s.register("Defer", "", fn)
}

// DeferNamed registers fn like Defer, under a name used in reports, logs
// and traces.
func (s *Scope) DeferNamed(name string, fn CleanupFunc) {
	s.register("DeferNamed", name, fn)
}

// DeferFunc registers a cleanup that needs neither the context nor an error
// return.
func (s *Scope) DeferFunc(fn func()) {
	if fn == nil {
		panic(&MisuseError{Op: "DeferFunc", Err: ErrNilCleanup})
	}
	s.register("DeferFunc", "", func(context.Context) error {
		fn()
		return nil
	})
}

func (s *Scope) register(op, name string, fn CleanupFunc) {
	if fn == nil {
		panic(&MisuseError{Op: op, Err: ErrNilCleanup})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settled {
		panic(&MisuseError{
			Op:   op,
			Err:  ErrScopeSettled,
			Hint: "register cleanups before the work function returns",
		})
	}
	s.actions = append(s.actions, action{name: name, fn: fn})
}

// settle closes the scope for registration and returns the pending actions
// in registration order.
func (s *Scope) settle() []action {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settled = true
	return s.actions
}
