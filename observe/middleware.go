package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/challengeauth/auth"
)

// Middleware wraps authentication strategies with tracing, metrics and
// logging.
//
// Contract:
//   - Concurrency: wrapped strategies are safe for concurrent use when the
//     inner strategy is.
//   - Context: the attempt span is carried in the context passed to the inner
//     strategy.
//   - Errors: results and errors from the inner strategy are returned
//     unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware from its components. Nil components
// are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Wrap instruments a under its own name.
func (m *Middleware) Wrap(a auth.Authenticator) auth.Authenticator {
	if a == nil {
		return nil
	}
	return &instrumented{inner: a, meta: StrategyMeta{Name: a.Name()}, mw: m}
}

// WrapWithMeta instruments a under the given metadata. An empty Name
// defaults to a.Name().
func (m *Middleware) WrapWithMeta(a auth.Authenticator, meta StrategyMeta) (auth.Authenticator, error) {
	if a == nil {
		return nil, ErrNilAuthenticator
	}
	if meta.Name == "" {
		meta.Name = a.Name()
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &instrumented{inner: a, meta: meta, mw: m}, nil
}

type instrumented struct {
	inner auth.Authenticator
	meta  StrategyMeta
	mw    *Middleware
}

func (i *instrumented) Name() string {
	return i.inner.Name()
}

func (i *instrumented) Supports(ctx context.Context, req *auth.AuthRequest) bool {
	return i.inner.Supports(ctx, req)
}

func (i *instrumented) Authenticate(ctx context.Context, req *auth.AuthRequest) (*auth.AuthResult, error) {
	meta := i.meta
	if meta.Route == "" && req != nil {
		meta.Route = req.Resource
	}

	ctx, span := i.mw.tracer.StartSpan(ctx, meta)
	start := time.Now()

	result, err := i.inner.Authenticate(ctx, req)

	duration := time.Since(start)
	outcome := auth.Classify(result, err)

	if outcome == auth.OutcomeFailure && result.StatusCode != 0 {
		span.SetAttributes(attribute.Int("auth.status_code", result.StatusCode))
	}
	i.mw.tracer.EndSpan(span, outcome, err)
	i.mw.metrics.RecordAttempt(ctx, meta, outcome, duration, err)
	i.log(ctx, span, meta, outcome, result, err, duration)

	return result, err
}

func (i *instrumented) log(ctx context.Context, span trace.Span, meta StrategyMeta, outcome auth.Outcome, result *auth.AuthResult, err error, duration time.Duration) {
	logger := i.mw.logger.WithStrategy(meta)
	fields := []Field{
		{Key: "duration_ms", Value: float64(duration) / float64(time.Millisecond)},
		{Key: "auth.outcome", Value: outcome.String()},
	}
	if sc := span.SpanContext(); sc.HasTraceID() {
		fields = append(fields, Field{Key: "trace_id", Value: sc.TraceID().String()})
	}

	switch outcome {
	case auth.OutcomeSuccess:
		if result.Identity != nil {
			fields = append(fields, Field{Key: "auth.principal", Value: result.Identity.Principal})
		}
		logger.Info(ctx, "authentication succeeded", fields...)
	case auth.OutcomeFailure:
		if result.StatusCode != 0 {
			fields = append(fields, Field{Key: "status_code", Value: result.StatusCode})
		}
		if msg := result.Message(); msg != "" {
			fields = append(fields, Field{Key: "message", Value: msg})
		}
		logger.Warn(ctx, "authentication failed", fields...)
	default:
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
		}
		logger.Error(ctx, "authentication error", fields...)
	}
}

var _ auth.Authenticator = (*instrumented)(nil)
