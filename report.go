package withdefer

import "time"

// ActionResult records the outcome of one cleanup action.
type ActionResult struct {
	// ScopeID identifies the invocation the action belonged to.
	ScopeID string

	// Name of the action. Actions registered without a name are reported
	// as "cleanup[i]" where i is the registration index.
	Name string

	// Index is the registration index (0 = first registered, so the
	// highest index settles first).
	Index int

	// Duration is how long the action took to settle.
	Duration time.Duration

	// Err is the action's failure, nil on success. A recovered panic is
	// reported as a *PanicError.
	Err error
}

// Report describes one coordinator invocation.
type Report struct {
	// ScopeID uniquely identifies the invocation.
	ScopeID string

	// Name is the optional scope name set with WithName.
	Name string

	// Actions holds per-action results in execution order. Populated only
	// once the scope has settled.
	Actions []ActionResult

	// TotalDuration covers the work function plus the full teardown.
	TotalDuration time.Duration

	// Err is the aggregate error, nil when everything succeeded.
	Err error
}

// Failed reports whether the invocation produced any failure.
func (r *Report) Failed() bool {
	return r.Err != nil
}

// FailedActions returns the names of cleanup actions that failed, in
// execution order.
func (r *Report) FailedActions() []string {
	var failed []string
	for _, a := range r.Actions {
		if a.Err != nil {
			failed = append(failed, a.Name)
		}
	}
	return failed
}

// Observer receives lifecycle events from a coordinator invocation. Install
// one with WithObserver. Implementations must be safe for use by multiple
// concurrent invocations sharing the same observer.
type Observer interface {
	// ScopeStarted is called before the work function runs. Only ScopeID
	// and Name are populated at this point.
	ScopeStarted(r Report)

	// ActionSettled is called after each cleanup action returns, in
	// execution order.
	ActionSettled(r ActionResult)

	// ScopeSettled is called once teardown is complete, with the full
	// report. The report's Err equals the error Run or Do returns.
	ScopeSettled(r Report)
}

// NopObserver is an Observer that ignores every event.
type NopObserver struct{}

// ScopeStarted implements Observer.
func (NopObserver) ScopeStarted(Report) {}

// ActionSettled implements Observer.
func (NopObserver) ActionSettled(ActionResult) {}

// ScopeSettled implements Observer.
func (NopObserver) ScopeSettled(Report) {}
