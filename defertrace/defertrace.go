// Package defertrace integrates OpenTelemetry tracing with scope teardown.
// All instrumentation is kept in a separate package so that applications
// which do not require tracing can exclude it from their build.
//
// The observer records one span per scope and one child span per cleanup
// action. Cleanup actions are recorded after they settle, so their spans
// are backdated by the measured duration.
package defertrace

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	withdefer "github.com/RibbtDev/with-defer"
)

// Observer records scope lifecycle events as OpenTelemetry spans.
type Observer struct {
	tracer trace.Tracer

	mu     sync.Mutex
	scopes map[string]spanState
}

type spanState struct {
	ctx  context.Context
	span trace.Span
}

var _ withdefer.Observer = (*Observer)(nil)

// New returns an Observer recording spans with tracer. One Observer may be
// shared by concurrent scopes; spans are correlated by scope ID.
func New(tracer trace.Tracer) *Observer {
	return &Observer{
		tracer: tracer,
		scopes: make(map[string]spanState),
	}
}

// ScopeStarted implements withdefer.Observer.
func (o *Observer) ScopeStarted(r withdefer.Report) {
	name := r.Name
	if name == "" {
		name = "withdefer.scope"
	}
	ctx, span := o.tracer.Start(context.Background(), name,
		trace.WithAttributes(attribute.String("withdefer.scope_id", r.ScopeID)))

	o.mu.Lock()
	o.scopes[r.ScopeID] = spanState{ctx: ctx, span: span}
	o.mu.Unlock()
}

// ActionSettled implements withdefer.Observer.
func (o *Observer) ActionSettled(r withdefer.ActionResult) {
	o.mu.Lock()
	st, ok := o.scopes[r.ScopeID]
	o.mu.Unlock()
	if !ok {
		return
	}

	end := time.Now()
	_, span := o.tracer.Start(st.ctx, r.Name,
		trace.WithTimestamp(end.Add(-r.Duration)),
		trace.WithAttributes(attribute.Int("withdefer.index", r.Index)))
	if r.Err != nil {
		span.RecordError(r.Err)
		span.SetStatus(codes.Error, r.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(end))
}

// ScopeSettled implements withdefer.Observer.
func (o *Observer) ScopeSettled(r withdefer.Report) {
	o.mu.Lock()
	st, ok := o.scopes[r.ScopeID]
	delete(o.scopes, r.ScopeID)
	o.mu.Unlock()
	if !ok {
		return
	}

	st.span.SetAttributes(attribute.Int("withdefer.actions", len(r.Actions)))
	if r.Err != nil {
		st.span.RecordError(r.Err)
		st.span.SetStatus(codes.Error, r.Err.Error())
	} else {
		st.span.SetStatus(codes.Ok, "")
	}
	st.span.End()
}
