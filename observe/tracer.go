package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/challengeauth/auth"
)

// StrategyMeta describes an instrumented strategy for telemetry purposes.
type StrategyMeta struct {
	Name  string // Strategy name (required)
	Realm string // Grouping for strategies mounted in several places (optional)
	Route string // Request path the attempt was made against (optional)
}

// SpanName returns the deterministic span name for this strategy.
// Format: auth.attempt.<realm>.<name> or auth.attempt.<name>
func (m StrategyMeta) SpanName() string {
	return "auth.attempt." + m.StrategyID()
}

// StrategyID returns the realm-qualified strategy name.
func (m StrategyMeta) StrategyID() string {
	if m.Realm != "" {
		return m.Realm + "." + m.Name
	}
	return m.Name
}

// Validate reports whether the metadata is usable.
func (m StrategyMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingStrategyName
	}
	return nil
}

func (m StrategyMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("auth.strategy.id", m.StrategyID()),
		attribute.String("auth.strategy", m.Name),
	}
	if m.Realm != "" {
		attrs = append(attrs, attribute.String("auth.realm", m.Realm))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with per-attempt span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for one authentication attempt.
	StartSpan(ctx context.Context, meta StrategyMeta) (context.Context, trace.Span)

	// EndSpan records the outcome and ends the span. Only OutcomeError marks
	// the span as failed; rejected credentials are a normal result.
	EndSpan(span trace.Span, outcome auth.Outcome, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta StrategyMeta) (context.Context, trace.Span) {
	attrs := meta.attributes()
	if meta.Route != "" {
		attrs = append(attrs, attribute.String("auth.route", meta.Route))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, outcome auth.Outcome, err error) {
	span.SetAttributes(attribute.String("auth.outcome", outcome.String()))

	if outcome == auth.OutcomeError {
		msg := "authentication error"
		if err != nil {
			msg = err.Error()
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, msg)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta StrategyMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, outcome auth.Outcome, err error) {
	span.End()
}
