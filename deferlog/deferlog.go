// Package deferlog provides real-time log output for scope teardown. The
// aggregate error returned by Run or Do is the authoritative record; this
// package adds optional structured progress logging for monitoring, kept
// out of the core package so applications that do not want a logging
// dependency can exclude it.
package deferlog

import (
	"github.com/rs/zerolog"

	withdefer "github.com/RibbtDev/with-defer"
)

// Observer logs scope lifecycle events with zerolog.
type Observer struct {
	log zerolog.Logger
}

var _ withdefer.Observer = (*Observer)(nil)

// New returns an Observer writing lifecycle events to log. Pass it to
// withdefer.WithObserver; one Observer may be shared by concurrent scopes.
func New(log zerolog.Logger) *Observer {
	return &Observer{log: log}
}

// ScopeStarted implements withdefer.Observer.
func (o *Observer) ScopeStarted(r withdefer.Report) {
	logger := o.scoped(r)
	logger.Debug().Msg("scope started")
}

// ActionSettled implements withdefer.Observer.
func (o *Observer) ActionSettled(r withdefer.ActionResult) {
	evt := o.log.Debug()
	if r.Err != nil {
		evt = o.log.Error().Err(r.Err)
	}
	evt.
		Str("scope_id", r.ScopeID).
		Str("action", r.Name).
		Int("index", r.Index).
		Dur("duration", r.Duration).
		Msg("cleanup action settled")
}

// ScopeSettled implements withdefer.Observer.
func (o *Observer) ScopeSettled(r withdefer.Report) {
	logger := o.scoped(r)
	if r.Err != nil {
		logger.Error().
			Err(r.Err).
			Strs("failed_actions", r.FailedActions()).
			Int("actions", len(r.Actions)).
			Dur("duration", r.TotalDuration).
			Msg("scope settled with errors")
		return
	}
	logger.Info().
		Int("actions", len(r.Actions)).
		Dur("duration", r.TotalDuration).
		Msg("scope settled")
}

func (o *Observer) scoped(r withdefer.Report) zerolog.Logger {
	ctx := o.log.With().Str("scope_id", r.ScopeID)
	if r.Name != "" {
		ctx = ctx.Str("scope", r.Name)
	}
	return ctx.Logger()
}
