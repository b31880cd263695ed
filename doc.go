// Package withdefer provides scoped deferred execution: a work function runs
// inside a managed scope that collects cleanup actions registered during the
// work and guarantees their execution, in reverse registration order, no
// matter how the work ends (normal return, error, or panic).
//
// # Overview
//
// Go's defer statement ties cleanup to the enclosing function. This package
// ties cleanup to a scope value instead, so cleanup can be registered from
// helpers the work function calls, every failure from the work and from
// every cleanup is collected into a single aggregate error, and a panicking
// cleanup never prevents the remaining ones from running.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                       Run / Do                              │
//	├─────────────────────────────────────────────────────────────┤
//	│  work(ctx, scope)                                           │
//	│     scope.Defer(a) → scope.Defer(b) → scope.Defer(c)        │
//	│                                                             │
//	│  teardown (unconditional, strictly sequential):             │
//	│     c → b → a                                               │
//	│                                                             │
//	│  outcome: work value, or *TeardownError wrapping every      │
//	│  failure in the order it occurred                           │
//	└─────────────────────────────────────────────────────────────┘
//
// # Usage
//
// Basic usage:
//
//	value, err := withdefer.Run(ctx, func(ctx context.Context, s *withdefer.Scope) (string, error) {
//	    conn, err := dial(ctx)
//	    if err != nil {
//	        return "", err
//	    }
//	    s.Defer(func(ctx context.Context) error {
//	        return conn.Close()
//	    })
//
//	    tmp, err := os.MkdirTemp("", "job")
//	    if err != nil {
//	        return "", err
//	    }
//	    s.DeferFunc(func() { os.RemoveAll(tmp) })
//
//	    return process(ctx, conn, tmp) // tmp is removed first, then conn closes
//	})
//
// When only an error matters, use [Do]:
//
//	err := withdefer.Do(ctx, func(ctx context.Context, s *withdefer.Scope) error {
//	    s.DeferNamed("db", db.Close)
//	    return migrate(ctx, db)
//	})
//
// # Error aggregation
//
// Failures are never swallowed and never halt teardown. Whenever anything
// failed — the work function, any cleanup action, or both — Run and Do
// return a [*TeardownError] wrapping every failure in the order it occurred:
// the work function's failure first, then each cleanup failure in execution
// (reverse-registration) order. The wrapper is applied uniformly, so callers
// must expect a *TeardownError even when only one thing went wrong.
// errors.Is and errors.As see through it to the underlying errors.
//
// # Misuse detection
//
// A nil work function fails fast with [ErrNilWork] before any scope is
// created. A nil cleanup panics at the registration site with a
// [*MisuseError] wrapping [ErrNilCleanup]; since registration happens inside
// the work function, the coordinator recovers it and reports it through the
// aggregate like any other work-function failure.
//
// A scope settles the moment its work function returns or panics. Calling
// Defer on a settled scope — typically a handle that escaped into a
// goroutine outliving the work function — panics with a *MisuseError
// wrapping [ErrScopeSettled], because a cleanup registered after teardown
// would be silently lost. Register cleanups before the work function
// returns, and wait for any goroutine that registers them.
//
// # Concurrency
//
// Teardown is strictly sequential on the calling goroutine: a cleanup action
// must fully return before the next one starts, and no cleanup is ever
// cancelled or timed out once teardown begins. Registration is safe from
// goroutines the work function spawns, but the work function must not return
// until they are done registering.
//
// # Observability
//
// Instrumentation is kept out of this package. Install an [Observer] with
// [WithObserver] to receive lifecycle events; the deferlog subpackage logs
// them with zerolog and the defertrace subpackage records OpenTelemetry
// spans.
package withdefer
