package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/challengeauth/auth"
)

// Metrics records authentication attempt metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordAttempt records one attempt with its outcome and duration.
	RecordAttempt(ctx context.Context, meta StrategyMeta, outcome auth.Outcome, duration time.Duration, err error)
}

type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	failureCount metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"auth.attempt.total",
		metric.WithDescription("Total number of authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	failureCount, err := meter.Int64Counter(
		"auth.attempt.failures",
		metric.WithDescription("Authentication attempts rejected as failures"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"auth.attempt.errors",
		metric.WithDescription("Authentication attempts that ended in an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"auth.attempt.duration_ms",
		metric.WithDescription("Authentication attempt duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		failureCount: failureCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordAttempt(ctx context.Context, meta StrategyMeta, outcome auth.Outcome, duration time.Duration, err error) {
	// Route stays off metric attributes to keep cardinality bounded.
	attrs := append(meta.attributes(), attribute.String("auth.outcome", outcome.String()))
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)

	switch outcome {
	case auth.OutcomeFailure:
		m.failureCount.Add(ctx, 1, opt)
	case auth.OutcomeError:
		m.errorCount.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

type noopMetrics struct{}

func (m *noopMetrics) RecordAttempt(ctx context.Context, meta StrategyMeta, outcome auth.Outcome, duration time.Duration, err error) {
}
